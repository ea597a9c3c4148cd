// Package playback drives a video player backend within the current trim bounds.
//
// Two backends sit behind one Backend interface: a local player that pushes time and
// state changes, and an embedded stream player that can only be commanded and polled.
// The Controller never branches on which one it holds.
package playback

import (
	"context"

	"github.com/user/trimcrop-cli/media"
)

// EventKind classifies an observation reported by a backend.
type EventKind int

const (
	// EventReady means the player can accept commands.
	EventReady EventKind = iota
	// EventTime carries an observed playback position.
	EventTime
	// EventPlaying means playback started outside a controller command.
	EventPlaying
	// EventPaused means playback stopped outside a controller command.
	EventPaused
)

func (k EventKind) String() string {
	switch k {
	case EventReady:
		return "ready"
	case EventTime:
		return "time"
	case EventPlaying:
		return "playing"
	case EventPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Event is one observation from a backend.
type Event struct {
	Kind EventKind
	Time float64
}

// Sink receives observations. Backends call it from their own goroutine, one event at a
// time and in order.
type Sink func(Event)

// Backend is one live player instance bound to a mount point.
type Backend interface {
	Play() error
	Pause() error
	Seek(seconds float64) error
	SetVolume(volume int) error
	SetMuted(muted bool) error
	// Destroy stops the player and returns once none of its goroutines can call the
	// sink again. Calling it more than once is safe.
	Destroy() error
}

// Factory creates backends. Create may block until the player process is reachable and
// must give up promptly when ctx is cancelled.
type Factory interface {
	Create(ctx context.Context, meta media.VideoMetadata, mount string, sink Sink) (Backend, error)
}
