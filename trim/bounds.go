// Package trim holds the trim range selected for output.
package trim

import (
	"math"
	"sync"
)

// MinGap is the shortest selectable range in seconds.
const MinGap = 1.0

// Snapshot is a point-in-time copy of the bounds.
type Snapshot struct {
	Start       float64
	End         float64
	CurrentTime float64
	Duration    float64
}

// Length returns the selected range length in seconds.
func (s Snapshot) Length() float64 {
	return s.End - s.Start
}

// Contains reports whether t lies in [Start, End).
func (s Snapshot) Contains(t float64) bool {
	return t >= s.Start && t < s.End
}

// Bounds is the shared start/end/current-time record.
//
// It is written by the interaction layer and read by the playback tick, possibly from
// another goroutine; every read sees the latest write.
// Invariant: 0 <= Start, Start+MinGap <= End <= Duration. For media shorter than MinGap
// the range is pinned to [0, Duration].
type Bounds struct {
	mu       sync.RWMutex
	start    float64
	end      float64
	current  float64
	duration float64
}

// New creates bounds over [0, duration] and applies the requested start and end through
// the clamped setters.
func New(duration, start, end float64) *Bounds {
	b := Default(duration)
	b.SetEnd(end)
	b.SetStart(start)
	return b
}

// Default returns bounds covering the whole media.
func Default(duration float64) *Bounds {
	b := &Bounds{}
	b.Reset(duration)
	return b
}

// Reset selects the whole media and rewinds the current time.
func (b *Bounds) Reset(duration float64) {
	if duration < 0 || math.IsNaN(duration) {
		duration = 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.duration = duration
	b.start = 0
	b.end = duration
	b.current = 0
}

// SetStart moves the start to clamp(t, 0, End-MinGap) and returns the applied value.
// NaN is ignored.
func (b *Bounds) SetStart(t float64) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if math.IsNaN(t) {
		return b.start
	}
	b.start = math.Max(0, math.Min(t, b.end-MinGap))
	return b.start
}

// SetEnd moves the end to clamp(t, Start+MinGap, Duration) and returns the applied value.
// NaN is ignored.
func (b *Bounds) SetEnd(t float64) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if math.IsNaN(t) {
		return b.end
	}
	b.end = math.Min(b.duration, math.Max(t, b.start+MinGap))
	return b.end
}

// SetCurrentTime records an observed or requested playback position.
// No clamping happens here; see ClampCurrent.
func (b *Bounds) SetCurrentTime(t float64) {
	if math.IsNaN(t) {
		return
	}
	b.mu.Lock()
	b.current = t
	b.mu.Unlock()
}

// ClampCurrent pulls the current time into [Start, End] and returns it.
func (b *Bounds) ClampCurrent() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = Clamp(b.current, b.start, b.end)
	return b.current
}

// Snapshot returns a consistent copy of all fields.
func (b *Bounds) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Snapshot{
		Start:       b.start,
		End:         b.end,
		CurrentTime: b.current,
		Duration:    b.duration,
	}
}

// Start returns the trim start in seconds.
func (b *Bounds) Start() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.start
}

// End returns the trim end in seconds.
func (b *Bounds) End() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.end
}

// CurrentTime returns the last recorded playback position.
func (b *Bounds) CurrentTime() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.current
}

// Duration returns the media duration the bounds were built for.
func (b *Bounds) Duration() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.duration
}

// Clamp limits v to [lo, hi]. When hi < lo the result is lo.
func Clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
