package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// DefaultSocketPath is the default Unix socket path for mpv IPC.
	DefaultSocketPath = "/tmp/trimcrop-mpv.sock"
	// commandTimeout bounds how long a command waits for its reply.
	commandTimeout = 3 * time.Second
)

var (
	// ErrNotConnected is returned when attempting operations on a disconnected client.
	ErrNotConnected = errors.New("mpv: not connected")
	// ErrSocketNotFound is returned when the socket file doesn't exist.
	ErrSocketNotFound = errors.New("mpv: socket not found - is mpv running with --input-ipc-server?")
	// ErrTimeout is returned when mpv does not answer a command in time.
	ErrTimeout = errors.New("mpv: command timed out")
	// requestID is a global counter for generating unique request IDs.
	requestID uint64
)

// ipcRequest represents a JSON IPC request to mpv.
type ipcRequest struct {
	Command   []interface{} `json:"command"`
	RequestID uint64        `json:"request_id"`
}

// ipcMessage is any line mpv writes: a command reply (request_id set) or an event.
type ipcMessage struct {
	Event     string      `json:"event"`
	ID        uint64      `json:"id"`
	Name      string      `json:"name"`
	Data      interface{} `json:"data"`
	RequestID uint64      `json:"request_id"`
	Error     string      `json:"error"`
}

// Event is an asynchronous notification pushed by mpv, e.g. "property-change".
type Event struct {
	// Name is the mpv event name.
	Name string
	// ObserverID is the id passed to ObserveProperty, for property-change events.
	ObserverID uint64
	// Property is the observed property name, for property-change events.
	Property string
	// Data is the decoded property value (nil when unavailable).
	Data interface{}
}

// Client is an mpv IPC client that communicates via Unix socket.
//
// A reader goroutine routes replies to waiting commands and queues events; a separate
// dispatcher goroutine hands events to the handler, so handlers may issue commands.
type Client struct {
	socketPath string

	mu       sync.Mutex
	conn     net.Conn
	pending  map[uint64]chan ipcMessage
	handler  func(Event)
	queue    []Event
	notify   chan struct{}
	readDone chan struct{}
	stop     chan struct{}
	wg       sync.WaitGroup
}

// NewClient creates a new mpv IPC client.
// If socketPath is empty, DefaultSocketPath is used.
func NewClient(socketPath string) *Client {
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}
	return &Client{
		socketPath: socketPath,
	}
}

// OnEvent registers the handler that receives pushed events. Set it before Connect.
func (c *Client) OnEvent(handler func(Event)) {
	c.mu.Lock()
	c.handler = handler
	c.mu.Unlock()
}

// Connect establishes a connection to the mpv IPC socket.
// Returns an error if the socket doesn't exist or connection fails.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil // Already connected
	}

	conn, err := net.Dial("unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSocketNotFound, err)
	}

	c.conn = conn
	c.pending = make(map[uint64]chan ipcMessage)
	c.queue = nil
	c.notify = make(chan struct{}, 1)
	c.readDone = make(chan struct{})
	c.stop = make(chan struct{})

	c.wg.Add(2)
	go c.readLoop(conn, c.readDone)
	go c.dispatchLoop(c.notify, c.stop)
	return nil
}

// ConnectWithRetry keeps dialling until mpv has created its socket, the attempts run
// out, or ctx is cancelled.
func (c *Client) ConnectWithRetry(ctx context.Context, attempts int, interval time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = c.Connect(); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
	return err
}

// Close closes the connection to mpv and waits for the reader and dispatcher to exit.
// No event handler runs after Close returns.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.conn == nil {
		c.mu.Unlock()
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	close(c.stop)
	c.mu.Unlock()

	c.wg.Wait()
	return err
}

// IsConnected returns true if the client is connected to mpv.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// SocketPath returns the socket path this client is configured to use.
func (c *Client) SocketPath() string {
	return c.socketPath
}

// readLoop decodes newline-delimited JSON until the connection fails.
func (c *Client) readLoop(conn net.Conn, done chan struct{}) {
	defer c.wg.Done()
	defer close(done)

	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			return
		}

		var msg ipcMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			// Skip malformed lines
			continue
		}

		if msg.Event != "" {
			c.enqueue(Event{
				Name:       msg.Event,
				ObserverID: msg.ID,
				Property:   msg.Name,
				Data:       msg.Data,
			})
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[msg.RequestID]
		delete(c.pending, msg.RequestID)
		c.mu.Unlock()
		if ok {
			ch <- msg
		}
	}
}

func (c *Client) enqueue(ev Event) {
	c.mu.Lock()
	c.queue = append(c.queue, ev)
	notify := c.notify
	c.mu.Unlock()

	select {
	case notify <- struct{}{}:
	default:
	}
}

// dispatchLoop delivers queued events in arrival order.
func (c *Client) dispatchLoop(notify chan struct{}, stop chan struct{}) {
	defer c.wg.Done()
	for {
		select {
		case <-stop:
			return
		case <-notify:
		}

		for {
			c.mu.Lock()
			if len(c.queue) == 0 {
				c.mu.Unlock()
				break
			}
			ev := c.queue[0]
			c.queue = c.queue[1:]
			handler := c.handler
			c.mu.Unlock()

			select {
			case <-stop:
				return
			default:
			}
			if handler != nil {
				handler(ev)
			}
		}
	}
}

// GetProperty retrieves the value of an mpv property.
// The property name should be the mpv property name (e.g., "time-pos", "duration", "pause").
func (c *Client) GetProperty(name string) (interface{}, error) {
	return c.sendCommand("get_property", name)
}

// SetProperty sets the value of an mpv property.
// The property name should be the mpv property name (e.g., "pause", "volume").
func (c *Client) SetProperty(name string, value interface{}) error {
	_, err := c.sendCommand("set_property", name, value)
	return err
}

// ObserveProperty asks mpv to push a property-change event whenever name changes.
// mpv also pushes the current value immediately.
func (c *Client) ObserveProperty(id uint64, name string) error {
	_, err := c.sendCommand("observe_property", id, name)
	return err
}

// GetTimePos returns the current playback position in seconds.
func (c *Client) GetTimePos() (float64, error) {
	result, err := c.GetProperty("time-pos")
	if err != nil {
		return 0, err
	}
	return ToFloat64(result)
}

// GetDuration returns the total duration of the video in seconds.
func (c *Client) GetDuration() (float64, error) {
	result, err := c.GetProperty("duration")
	if err != nil {
		return 0, err
	}
	return ToFloat64(result)
}

// GetPaused returns true if playback is paused.
func (c *Client) GetPaused() (bool, error) {
	result, err := c.GetProperty("pause")
	if err != nil {
		return false, err
	}
	paused, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("mpv: unexpected pause value type: %T", result)
	}
	return paused, nil
}

// GetEOFReached reports whether playback stopped at the end of the file. With
// --keep-open mpv holds the last frame and time-pos stays below duration.
func (c *Client) GetEOFReached() (bool, error) {
	result, err := c.GetProperty("eof-reached")
	if err != nil {
		return false, err
	}
	eof, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("mpv: unexpected eof-reached value type: %T", result)
	}
	return eof, nil
}

// Play resumes playback.
func (c *Client) Play() error {
	return c.SetProperty("pause", false)
}

// Pause pauses playback.
func (c *Client) Pause() error {
	return c.SetProperty("pause", true)
}

// Seek jumps to an absolute position in seconds.
func (c *Client) Seek(seconds float64) error {
	_, err := c.sendCommand("seek", seconds, "absolute+exact")
	return err
}

// SetVolume sets the mpv volume (0-100).
func (c *Client) SetVolume(volume int) error {
	return c.SetProperty("volume", volume)
}

// GetMute returns true if audio is muted.
func (c *Client) GetMute() (bool, error) {
	result, err := c.GetProperty("mute")
	if err != nil {
		return false, err
	}
	muted, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("mpv: unexpected mute value type: %T", result)
	}
	return muted, nil
}

// SetMute mutes or unmutes audio.
func (c *Client) SetMute(muted bool) error {
	return c.SetProperty("mute", muted)
}

// Quit asks mpv to exit.
func (c *Client) Quit() error {
	_, err := c.sendCommand("quit")
	return err
}

// ToFloat64 converts an interface{} to float64.
// JSON numbers from mpv are typically decoded as float64.
func ToFloat64(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("mpv: unexpected numeric value type: %T", v)
	}
}

// sendCommand sends a JSON IPC command to mpv and waits for the matching reply.
// The command is formatted as {"command": [command, args...], "request_id": <id>}
// and sent as newline-terminated JSON over the socket.
func (c *Client) sendCommand(command string, args ...interface{}) (interface{}, error) {
	// Build command array: [command, arg1, arg2, ...]
	cmdArray := make([]interface{}, 0, len(args)+1)
	cmdArray = append(cmdArray, command)
	cmdArray = append(cmdArray, args...)

	reqID := atomic.AddUint64(&requestID, 1)
	data, err := json.Marshal(ipcRequest{Command: cmdArray, RequestID: reqID})
	if err != nil {
		return nil, fmt.Errorf("mpv: failed to marshal command: %w", err)
	}
	data = append(data, '\n')

	reply := make(chan ipcMessage, 1)

	c.mu.Lock()
	if c.conn == nil {
		c.mu.Unlock()
		return nil, ErrNotConnected
	}
	conn := c.conn
	readDone := c.readDone
	c.pending[reqID] = reply
	_, err = conn.Write(data)
	if err != nil {
		delete(c.pending, reqID)
	}
	c.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("mpv: failed to send command: %w", err)
	}

	timer := time.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case resp := <-reply:
		if resp.Error != "" && resp.Error != "success" {
			return nil, fmt.Errorf("mpv: %s", resp.Error)
		}
		return resp.Data, nil
	case <-readDone:
		return nil, ErrNotConnected
	case <-timer.C:
		c.mu.Lock()
		delete(c.pending, reqID)
		c.mu.Unlock()
		return nil, ErrTimeout
	}
}
