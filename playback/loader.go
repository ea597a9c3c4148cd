package playback

import (
	"context"
	"sync"

	"github.com/user/trimcrop-cli/deps"
)

// Loader is a lazily started, memoized one-shot load. The first Await starts it; every
// caller, concurrent or later, waits on the same result. A failure is memoized too and
// never retried.
type Loader struct {
	load func(context.Context) (string, error)
	once sync.Once
	done chan struct{}
	val  string
	err  error
}

// NewLoader wraps load. load runs at most once, detached from any caller's context.
func NewLoader(load func(context.Context) (string, error)) *Loader {
	return &Loader{load: load, done: make(chan struct{})}
}

// Await starts the load if needed and waits for it or for ctx.
// Cancelling ctx only abandons this wait; the load keeps running for other callers.
func (l *Loader) Await(ctx context.Context) (string, error) {
	l.once.Do(func() {
		go func() {
			l.val, l.err = l.load(context.Background())
			close(l.done)
		}()
	})

	select {
	case <-l.done:
		return l.val, l.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

var (
	streamHelperOnce sync.Once
	streamHelper     *Loader
)

// SharedStreamHelper returns the process-wide loader that resolves yt-dlp for the
// embedded backend. The binary from the first call wins; the loader lives until exit.
func SharedStreamHelper(binary string) *Loader {
	streamHelperOnce.Do(func() {
		streamHelper = NewLoader(func(ctx context.Context) (string, error) {
			return deps.ResolveYtDlp(ctx, binary)
		})
	})
	return streamHelper
}
