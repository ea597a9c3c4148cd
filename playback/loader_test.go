package playback

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLoader_LoadsOnceForConcurrentCallers(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	l := NewLoader(func(context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "/usr/bin/yt-dlp", nil
	})

	var wg sync.WaitGroup
	results := make(chan string, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := l.Await(context.Background())
			if err != nil {
				t.Errorf("Await: %v", err)
			}
			results <- v
		}()
	}
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	for v := range results {
		if v != "/usr/bin/yt-dlp" {
			t.Errorf("result = %q", v)
		}
	}
	if _, err := l.Await(context.Background()); err != nil {
		t.Errorf("later Await: %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("load ran %d times, want 1", n)
	}
}

func TestLoader_FailureIsMemoized(t *testing.T) {
	var calls atomic.Int32
	l := NewLoader(func(context.Context) (string, error) {
		calls.Add(1)
		return "", errors.New("not found")
	})
	for i := 0; i < 3; i++ {
		if _, err := l.Await(context.Background()); err == nil {
			t.Fatal("expected error")
		}
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("load ran %d times, want 1", n)
	}
}

func TestLoader_CancelledWaitDoesNotCancelLoad(t *testing.T) {
	release := make(chan struct{})
	l := NewLoader(func(ctx context.Context) (string, error) {
		<-release
		return "ok", ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.Await(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}

	close(release)
	v, err := l.Await(context.Background())
	if err != nil || v != "ok" {
		t.Errorf("Await = %q, %v", v, err)
	}
}

func TestSharedStreamHelper_IsShared(t *testing.T) {
	if SharedStreamHelper("yt-dlp") != SharedStreamHelper("other") {
		t.Error("shared helper differs between calls")
	}
}
