package playback

import (
	"context"
	"log/slog"
	"sync"

	"github.com/user/trimcrop-cli/media"
	"github.com/user/trimcrop-cli/trim"
)

const defaultVolume = 100

// State is what the UI renders from the controller.
type State struct {
	Identity    string
	Ready       bool
	Playing     bool
	Volume      int
	Muted       bool
	CurrentTime float64
	// Err is the last backend creation failure for the current identity.
	Err error
}

// Controller owns at most one backend at a time and keeps playback inside the trim bounds.
//
// Operations before the backend reports ready are no-ops. Every backend callback is
// tagged with the generation it was created under; callbacks from a torn-down backend
// are dropped.
type Controller struct {
	bounds  *trim.Bounds
	factory Factory
	mounts  *MountTable
	mount   string
	logger  *slog.Logger

	mu       sync.Mutex
	gen      uint64
	identity string
	backend  Backend
	ready    bool
	playing  bool
	volume   int
	muted    bool
	err      error
	cancel   context.CancelFunc
	created  chan struct{}
}

// Option configures a Controller.
type Option func(*Controller)

// WithMounts replaces DefaultMounts.
func WithMounts(t *MountTable) Option {
	return func(c *Controller) { c.mounts = t }
}

// WithLogger sets the logger for backend lifecycle messages.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// NewController creates a controller that mounts backends at mount. bounds is read live
// on every time observation.
func NewController(bounds *trim.Bounds, factory Factory, mount string, opts ...Option) *Controller {
	c := &Controller{
		bounds:  bounds,
		factory: factory,
		mounts:  DefaultMounts,
		mount:   mount,
		logger:  slog.Default(),
		volume:  defaultVolume,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mount switches to meta. Nothing happens if meta has the identity already mounted.
// Otherwise the current backend is torn down and a new one is created in the
// background; Mount itself does not block on either.
func (c *Controller) Mount(ctx context.Context, meta media.VideoMetadata) {
	id := meta.Identity()

	c.mu.Lock()
	if id == c.identity {
		c.mu.Unlock()
		return
	}
	old := c.detachLocked()
	c.identity = id
	gen := c.gen
	cctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	prev := c.created
	done := make(chan struct{})
	c.created = done
	c.mu.Unlock()

	go func() {
		defer close(done)
		c.release(old)
		// The previous creation may still hold the mount point.
		if prev != nil {
			<-prev
		}
		c.create(cctx, gen, meta)
	}()
}

// Close tears down the current backend and waits for any pending creation to give up.
// No backend callback reaches the controller after Close returns.
func (c *Controller) Close() {
	c.mu.Lock()
	old := c.detachLocked()
	c.identity = ""
	done := c.created
	c.mu.Unlock()

	c.release(old)
	if done != nil {
		<-done
	}
}

// detachLocked invalidates the current generation and hands back the backend to release.
func (c *Controller) detachLocked() Backend {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	b := c.backend
	c.backend = nil
	c.ready = false
	c.playing = false
	c.err = nil
	c.gen++
	return b
}

// release must run without c.mu held: Destroy waits for backend goroutines that may be
// blocked delivering an event to this controller.
func (c *Controller) release(b Backend) {
	if b == nil {
		return
	}
	c.mounts.Release(c.mount, b)
	if err := b.Destroy(); err != nil {
		c.logger.Warn("destroy backend", "mount", c.mount, "error", err)
	}
}

func (c *Controller) create(ctx context.Context, gen uint64, meta media.VideoMetadata) {
	if ctx.Err() != nil {
		return
	}
	c.mounts.Evict(c.mount)

	b, err := c.factory.Create(ctx, meta, c.mount, func(ev Event) { c.handle(gen, ev) })
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		c.logger.Error("create backend", "source", meta.Source, "locator", meta.Locator, "error", err)
		c.mu.Lock()
		if gen == c.gen {
			c.err = err
		}
		c.mu.Unlock()
		return
	}

	c.mounts.Attach(c.mount, b, func() { c.evicted(gen) })

	c.mu.Lock()
	if gen != c.gen || ctx.Err() != nil {
		c.mu.Unlock()
		c.logger.Debug("discard backend created after teardown", "locator", meta.Locator)
		c.release(b)
		return
	}
	c.backend = b
	if c.ready {
		c.applyAudioLocked()
	}
	c.mu.Unlock()
	c.logger.Info("backend attached", "source", meta.Source, "mount", c.mount)
}

// evicted runs when another owner takes the mount point from the backend created under
// gen. The controller drops the backend without destroying it; the table does that.
func (c *Controller) evicted(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.detachLocked()
	c.identity = ""
	c.logger.Info("backend evicted", "mount", c.mount)
}

// handle processes one backend observation.
func (c *Controller) handle(gen uint64, ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}

	switch ev.Kind {
	case EventReady:
		c.ready = true
		if c.backend != nil {
			c.applyAudioLocked()
		}
	case EventPlaying:
		c.playing = true
	case EventPaused:
		c.playing = false
	case EventTime:
		c.observeLocked(ev.Time)
	}
}

// observeLocked publishes t, then enforces the loop: the first observation at or past
// End while playing pauses and rewinds to Start. Once paused, later observations past
// End change nothing until Play is called again.
func (c *Controller) observeLocked(t float64) {
	c.bounds.SetCurrentTime(t)
	if !c.playing || c.backend == nil {
		return
	}

	s := c.bounds.Snapshot()
	switch {
	case t >= s.End:
		c.playing = false
		if err := c.backend.Pause(); err != nil {
			c.logger.Warn("loop pause", "error", err)
		}
		c.seekLocked(s.Start)
	case t < s.Start:
		c.seekLocked(s.Start)
	}
}

func (c *Controller) seekLocked(t float64) {
	if err := c.backend.Seek(t); err != nil {
		c.logger.Warn("seek", "time", t, "error", err)
		return
	}
	c.bounds.SetCurrentTime(t)
}

func (c *Controller) applyAudioLocked() {
	if err := c.backend.SetVolume(c.volume); err != nil {
		c.logger.Warn("set volume", "error", err)
	}
	if err := c.backend.SetMuted(c.muted); err != nil {
		c.logger.Warn("set mute", "error", err)
	}
}

func (c *Controller) liveLocked() bool {
	return c.ready && c.backend != nil
}

// Play resumes playback, first rewinding to Start if the position is outside [Start, End).
func (c *Controller) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.liveLocked() {
		return nil
	}

	s := c.bounds.Snapshot()
	if !s.Contains(s.CurrentTime) {
		if err := c.backend.Seek(s.Start); err != nil {
			return err
		}
		c.bounds.SetCurrentTime(s.Start)
	}
	if err := c.backend.Play(); err != nil {
		return err
	}
	c.playing = true
	return nil
}

// Pause stops playback.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.liveLocked() {
		return nil
	}
	if err := c.backend.Pause(); err != nil {
		return err
	}
	c.playing = false
	return nil
}

// TogglePlay plays when paused and pauses when playing.
func (c *Controller) TogglePlay() error {
	c.mu.Lock()
	playing := c.playing
	c.mu.Unlock()
	if playing {
		return c.Pause()
	}
	return c.Play()
}

// Seek moves to t clamped into [Start, End].
func (c *Controller) Seek(t float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.liveLocked() {
		return nil
	}
	s := c.bounds.Snapshot()
	t = trim.Clamp(t, s.Start, s.End)
	if err := c.backend.Seek(t); err != nil {
		return err
	}
	c.bounds.SetCurrentTime(t)
	return nil
}

// SetVolume sets the volume, clamped to 0..100. The value is kept and applied once the
// backend becomes ready.
func (c *Controller) SetVolume(v int) error {
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.volume = v
	if !c.liveLocked() {
		return nil
	}
	return c.backend.SetVolume(v)
}

// ToggleMute flips the mute state.
func (c *Controller) ToggleMute() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.muted = !c.muted
	if !c.liveLocked() {
		return nil
	}
	return c.backend.SetMuted(c.muted)
}

// IsReady reports whether the current backend accepts commands.
func (c *Controller) IsReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.liveLocked()
}

// IsPlaying reports whether playback is running.
func (c *Controller) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// CurrentTime returns the last observed or requested position.
func (c *Controller) CurrentTime() float64 {
	return c.bounds.CurrentTime()
}

// State returns a copy of the observable state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Identity:    c.identity,
		Ready:       c.liveLocked(),
		Playing:     c.playing,
		Volume:      c.volume,
		Muted:       c.muted,
		CurrentTime: c.bounds.CurrentTime(),
		Err:         c.err,
	}
}
