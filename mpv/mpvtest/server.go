// Package mpvtest provides an in-process fake of mpv's JSON IPC socket for tests.
package mpvtest

import (
	"bufio"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// Server answers get/set/observe/seek commands from an in-memory property table and
// pushes property-change events for observed properties.
type Server struct {
	SocketPath string

	listener net.Listener
	mu       sync.Mutex
	conns    []net.Conn
	props    map[string]interface{}
	observed map[string]uint64
	commands [][]interface{}
	wg       sync.WaitGroup
}

// NewServer starts a fake mpv listening on a fresh socket. It is closed with t.Cleanup.
func NewServer(t testing.TB, props map[string]interface{}) *Server {
	t.Helper()

	// Unix socket paths are length limited, so avoid the long t.TempDir paths.
	dir, err := os.MkdirTemp("", "mpvt")
	if err != nil {
		t.Fatalf("mkdir temp: %v", err)
	}
	path := filepath.Join(dir, "ipc.sock")

	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	s := &Server{
		SocketPath: path,
		listener:   ln,
		props:      map[string]interface{}{},
		observed:   map[string]uint64{},
	}
	for k, v := range props {
		s.props[k] = v
	}

	s.wg.Add(1)
	go s.acceptLoop()

	t.Cleanup(func() {
		s.Close()
		os.RemoveAll(dir)
	})
	return s
}

// Close stops accepting and drops all connections.
func (s *Server) Close() {
	s.listener.Close()
	s.mu.Lock()
	for _, c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns = append(s.conns, conn)
		s.mu.Unlock()

		s.wg.Add(1)
		go s.serve(conn)
	}
}

type request struct {
	Command   []interface{} `json:"command"`
	RequestID uint64        `json:"request_id"`
}

func (s *Server) serve(conn net.Conn) {
	defer s.wg.Done()
	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			return
		}
		var req request
		if err := json.Unmarshal(line, &req); err != nil || len(req.Command) == 0 {
			continue
		}
		s.handle(conn, req)
	}
}

func (s *Server) handle(conn net.Conn, req request) {
	s.mu.Lock()
	s.commands = append(s.commands, req.Command)
	s.mu.Unlock()

	name, _ := req.Command[0].(string)
	var data interface{}
	errStr := "success"
	var events []map[string]interface{}

	switch name {
	case "get_property":
		prop, _ := req.Command[1].(string)
		s.mu.Lock()
		v, ok := s.props[prop]
		s.mu.Unlock()
		if !ok {
			errStr = "property unavailable"
		}
		data = v
	case "set_property":
		prop, _ := req.Command[1].(string)
		events = s.set(prop, req.Command[2])
	case "observe_property":
		id, _ := req.Command[1].(float64)
		prop, _ := req.Command[2].(string)
		s.mu.Lock()
		s.observed[prop] = uint64(id)
		v := s.props[prop]
		s.mu.Unlock()
		events = append(events, propertyChange(uint64(id), prop, v))
	case "seek":
		events = append(events, map[string]interface{}{"event": "seek"})
		events = append(events, s.set("time-pos", req.Command[1])...)
	case "quit":
	default:
		errStr = "invalid parameter"
	}

	reply := map[string]interface{}{"request_id": req.RequestID, "error": errStr, "data": data}
	s.write(conn, append([]map[string]interface{}{reply}, events...)...)
}

func (s *Server) set(prop string, v interface{}) []map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.props[prop] = v
	if id, ok := s.observed[prop]; ok {
		return []map[string]interface{}{propertyChange(id, prop, v)}
	}
	return nil
}

func propertyChange(id uint64, prop string, v interface{}) map[string]interface{} {
	return map[string]interface{}{"event": "property-change", "id": id, "name": prop, "data": v}
}

// write sends msgs in a single write so a reply and the events it caused stay together.
func (s *Server) write(conn net.Conn, msgs ...map[string]interface{}) {
	var data []byte
	for _, msg := range msgs {
		line, _ := json.Marshal(msg)
		data = append(data, line...)
		data = append(data, '\n')
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = conn.Write(data)
}

// SetProperty changes a property as if playback moved it, pushing an event to every
// connection observing it.
func (s *Server) SetProperty(prop string, v interface{}) {
	events := s.set(prop, v)
	s.mu.Lock()
	conns := append([]net.Conn(nil), s.conns...)
	s.mu.Unlock()
	for _, c := range conns {
		s.write(c, events...)
	}
}

// Property returns the current value of a property.
func (s *Server) Property(prop string) interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.props[prop]
}

// Commands returns the names of all commands received so far.
func (s *Server) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.commands))
	for _, c := range s.commands {
		if n, ok := c[0].(string); ok {
			names = append(names, n)
		}
	}
	return names
}
