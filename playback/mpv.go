package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/user/trimcrop-cli/media"
	"github.com/user/trimcrop-cli/mpv"
)

const (
	// DefaultPollInterval is how often the embedded backend samples the position.
	DefaultPollInterval = 100 * time.Millisecond

	defaultConnectAttempts = 50
	defaultConnectInterval = 100 * time.Millisecond
)

// stopper is a running player process.
type stopper interface {
	Stop() error
}

// MpvFactory creates mpv-backed players. Local files get a push-driven backend; stream
// URLs get a polled backend that needs the shared yt-dlp helper first.
type MpvFactory struct {
	// Binary is the mpv executable; "mpv" when empty.
	Binary string
	// PollInterval for the embedded backend; DefaultPollInterval when zero.
	PollInterval time.Duration
	// Helper resolves yt-dlp for stream playback; SharedStreamHelper("yt-dlp") when nil.
	Helper *Loader
	Logger *slog.Logger

	connectAttempts int
	connectInterval time.Duration
	launch          func(mpv.LaunchOptions) (stopper, error)
}

// Create launches mpv with its IPC socket at mount and connects to it.
func (f *MpvFactory) Create(ctx context.Context, meta media.VideoMetadata, mount string, sink Sink) (Backend, error) {
	switch meta.Source {
	case media.SourceEmbedded:
		return f.createEmbedded(ctx, meta, mount, sink)
	case media.SourceLocal, "":
		return f.createLocal(ctx, meta, mount, sink)
	default:
		return nil, fmt.Errorf("unknown video source %q", meta.Source)
	}
}

func (f *MpvFactory) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}

// start launches the process and connects a client whose events go to handler.
func (f *MpvFactory) start(ctx context.Context, opts mpv.LaunchOptions, handler func(mpv.Event)) (stopper, *mpv.Client, error) {
	launch := f.launch
	if launch == nil {
		launch = func(o mpv.LaunchOptions) (stopper, error) { return mpv.Launch(o) }
	}
	attempts, interval := f.connectAttempts, f.connectInterval
	if attempts == 0 {
		attempts = defaultConnectAttempts
	}
	if interval == 0 {
		interval = defaultConnectInterval
	}

	opts.Binary = f.Binary
	opts.Paused = true
	proc, err := launch(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("launch mpv: %w", err)
	}

	client := mpv.NewClient(opts.SocketPath)
	if handler != nil {
		client.OnEvent(handler)
	}
	if err := client.ConnectWithRetry(ctx, attempts, interval); err != nil {
		_ = proc.Stop()
		return nil, nil, fmt.Errorf("connect to mpv: %w", err)
	}
	f.logger().Debug("mpv connected", "socket", opts.SocketPath)
	return proc, client, nil
}

// Observer ids for the local backend.
const (
	observeTimePos = iota + 1
	observePause
	observeDuration
	observeEOF
)

// localBackend is driven by property-change events that mpv pushes.
type localBackend struct {
	client    *mpv.Client
	proc      stopper
	sink      Sink
	readyOnce sync.Once
	once      sync.Once
	err       error

	// duration is only touched from the client's event dispatch goroutine.
	duration float64
}

func (f *MpvFactory) createLocal(ctx context.Context, meta media.VideoMetadata, mount string, sink Sink) (Backend, error) {
	b := &localBackend{sink: sink}
	proc, client, err := f.start(ctx, mpv.LaunchOptions{SocketPath: mount, Target: meta.Locator}, b.onEvent)
	if err != nil {
		return nil, err
	}
	b.proc, b.client = proc, client

	for id, name := range map[uint64]string{
		observeTimePos:  "time-pos",
		observePause:    "pause",
		observeDuration: "duration",
		observeEOF:      "eof-reached",
	} {
		if err := client.ObserveProperty(id, name); err != nil {
			_ = b.Destroy()
			return nil, fmt.Errorf("observe %s: %w", name, err)
		}
	}
	return b, nil
}

func (b *localBackend) onEvent(ev mpv.Event) {
	if ev.Name != "property-change" {
		return
	}
	switch ev.ObserverID {
	case observeTimePos:
		if t, err := mpv.ToFloat64(ev.Data); err == nil {
			b.sink(Event{Kind: EventTime, Time: t})
		}
	case observePause:
		if paused, ok := ev.Data.(bool); ok {
			if paused {
				b.sink(Event{Kind: EventPaused})
			} else {
				b.sink(Event{Kind: EventPlaying})
			}
		}
	case observeDuration:
		// duration becomes available once the file is loaded
		if d, err := mpv.ToFloat64(ev.Data); err == nil && d > 0 {
			b.duration = d
			b.readyOnce.Do(func() { b.sink(Event{Kind: EventReady}) })
		}
	case observeEOF:
		// The last frame's time-pos is short of duration, so report the end itself.
		if eof, ok := ev.Data.(bool); ok && eof && b.duration > 0 {
			b.sink(Event{Kind: EventTime, Time: b.duration})
		}
	}
}

func (b *localBackend) Play() error                { return b.client.Play() }
func (b *localBackend) Pause() error               { return b.client.Pause() }
func (b *localBackend) Seek(seconds float64) error { return b.client.Seek(seconds) }
func (b *localBackend) SetVolume(volume int) error { return b.client.SetVolume(volume) }
func (b *localBackend) SetMuted(muted bool) error  { return b.client.SetMute(muted) }

func (b *localBackend) Destroy() error {
	b.once.Do(func() {
		b.err = errors.Join(b.client.Close(), b.proc.Stop())
	})
	return b.err
}

// embeddedBackend cannot rely on pushed events: it commands the player and samples the
// position on a fixed interval while playing.
type embeddedBackend struct {
	client   *mpv.Client
	proc     stopper
	sink     Sink
	interval time.Duration

	mu       sync.Mutex
	duration float64
	stopPoll chan struct{}
	closed   chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
	err      error
}

func (f *MpvFactory) createEmbedded(ctx context.Context, meta media.VideoMetadata, mount string, sink Sink) (Backend, error) {
	helper := f.Helper
	if helper == nil {
		helper = SharedStreamHelper("yt-dlp")
	}
	ytdl, err := helper.Await(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stream helper: %w", err)
	}
	// The helper may resolve after the caller gave up.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	proc, client, err := f.start(ctx, mpv.LaunchOptions{SocketPath: mount, Target: meta.Locator, YtdlPath: ytdl}, nil)
	if err != nil {
		return nil, err
	}

	interval := f.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	b := &embeddedBackend{
		client:   client,
		proc:     proc,
		sink:     sink,
		interval: interval,
		closed:   make(chan struct{}),
	}
	b.wg.Add(1)
	go b.awaitReady()
	return b, nil
}

// awaitReady polls until the stream reports a duration.
func (b *embeddedBackend) awaitReady() {
	defer b.wg.Done()
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()
	for {
		if d, err := b.client.GetDuration(); err == nil && d > 0 {
			b.mu.Lock()
			b.duration = d
			b.mu.Unlock()
			b.sink(Event{Kind: EventReady})
			return
		}
		select {
		case <-b.closed:
			return
		case <-ticker.C:
		}
	}
}

func (b *embeddedBackend) poll(stop chan struct{}) {
	defer b.wg.Done()
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-b.closed:
			return
		case <-ticker.C:
		}
		t, err := b.client.GetTimePos()
		if err != nil {
			continue
		}
		if eof, err := b.client.GetEOFReached(); err == nil && eof {
			b.mu.Lock()
			if b.duration > 0 {
				t = b.duration
			}
			b.mu.Unlock()
		}
		// Pause may have closed stop while the position was in flight.
		select {
		case <-stop:
			return
		default:
		}
		b.sink(Event{Kind: EventTime, Time: t})
	}
}

func (b *embeddedBackend) Play() error {
	if err := b.client.Play(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	select {
	case <-b.closed:
		return nil
	default:
	}
	if b.stopPoll == nil {
		b.stopPoll = make(chan struct{})
		b.wg.Add(1)
		go b.poll(b.stopPoll)
	}
	return nil
}

// Pause stops the poll without waiting for it; the poll may be the caller.
func (b *embeddedBackend) Pause() error {
	b.stopPolling()
	return b.client.Pause()
}

func (b *embeddedBackend) stopPolling() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopPoll != nil {
		close(b.stopPoll)
		b.stopPoll = nil
	}
}

func (b *embeddedBackend) Seek(seconds float64) error { return b.client.Seek(seconds) }
func (b *embeddedBackend) SetVolume(volume int) error { return b.client.SetVolume(volume) }
func (b *embeddedBackend) SetMuted(muted bool) error  { return b.client.SetMute(muted) }

func (b *embeddedBackend) Destroy() error {
	b.once.Do(func() {
		b.mu.Lock()
		close(b.closed)
		b.mu.Unlock()
		b.stopPolling()
		b.wg.Wait()
		b.err = errors.Join(b.client.Close(), b.proc.Stop())
	})
	return b.err
}
