//go:build integration

package steps

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/user/trimcrop-cli/media"
	"github.com/user/trimcrop-cli/playback"
	"github.com/user/trimcrop-cli/trim"

	"github.com/cucumber/godog"
)

// recordingBackend stands in for mpv and keeps every command it receives.
type recordingBackend struct {
	mu    sync.Mutex
	calls []string
}

func (b *recordingBackend) record(call string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, call)
	return nil
}

func (b *recordingBackend) Play() error  { return b.record("play") }
func (b *recordingBackend) Pause() error { return b.record("pause") }
func (b *recordingBackend) Seek(seconds float64) error {
	return b.record(fmt.Sprintf("seek(%g)", seconds))
}
func (b *recordingBackend) SetVolume(v int) error { return b.record(fmt.Sprintf("volume(%d)", v)) }
func (b *recordingBackend) SetMuted(m bool) error { return b.record(fmt.Sprintf("mute(%t)", m)) }
func (b *recordingBackend) Destroy() error        { return nil }

func (b *recordingBackend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

type recordingFactory struct {
	mu      sync.Mutex
	backend *recordingBackend
	sink    playback.Sink
}

func (f *recordingFactory) Create(ctx context.Context, meta media.VideoMetadata, mount string, sink playback.Sink) (playback.Backend, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.backend = &recordingBackend{}
	f.sink = sink
	return f.backend, nil
}

func (f *recordingFactory) attached() (*recordingBackend, playback.Sink) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.backend, f.sink
}

type playbackContext struct {
	controller *playback.Controller
	backend    *recordingBackend
	sink       playback.Sink
}

// SharedPlaybackContext is reset after each scenario via After hook
var SharedPlaybackContext = &playbackContext{}

func InitializePlaybackScenario(ctx *godog.ScenarioContext) {
	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if SharedPlaybackContext.controller != nil {
			SharedPlaybackContext.controller.Close()
		}
		SharedPlaybackContext = &playbackContext{}
		return c, nil
	})

	ctx.Step(`^a ready player over a ([\d.]+) second video trimmed from ([\d.]+) to ([\d.]+)$`, func(d, s, e float64) error {
		return SharedPlaybackContext.aReadyPlayer(d, s, e)
	})
	ctx.Step(`^playback has started$`, func() error {
		return SharedPlaybackContext.controller.Play()
	})
	ctx.Step(`^the player reports times ([\d., ]+)$`, func(times string) error {
		return SharedPlaybackContext.thePlayerReportsTimes(times)
	})
	ctx.Step(`^the player should have been paused (\d+) times?$`, func(n int) error {
		return SharedPlaybackContext.callCountShouldBe("pause", n)
	})
	ctx.Step(`^the player should have been sent to ([\d.]+) seconds (\d+) times?$`, func(t float64, n int) error {
		return SharedPlaybackContext.callCountShouldBe(fmt.Sprintf("seek(%g)", t), n)
	})
	ctx.Step(`^playback should be stopped$`, func() error {
		if SharedPlaybackContext.controller.IsPlaying() {
			return fmt.Errorf("expected playback to be stopped")
		}
		return nil
	})
	ctx.Step(`^the last seek should be to ([\d.]+) seconds$`, func(t float64) error {
		return SharedPlaybackContext.theLastSeekShouldBe(t)
	})
}

// aReadyPlayer mounts a fake backend, signals ready and parks the playhead on the
// trim start so that only the steps under test issue seeks.
func (c *playbackContext) aReadyPlayer(duration, start, end float64) error {
	bounds := trim.New(duration, start, end)
	bounds.SetCurrentTime(start)

	f := &recordingFactory{}
	c.controller = playback.NewController(bounds, f, "features.sock", playback.WithMounts(playback.NewMountTable()))
	meta := media.VideoMetadata{Title: "match", Duration: duration, Width: 1920, Height: 1080, Source: media.SourceLocal, Locator: "/videos/match.mp4"}
	c.controller.Mount(context.Background(), meta)

	if err := waitUntil("backend attach", func() bool {
		b, _ := f.attached()
		return b != nil && c.controller.State().Identity != ""
	}); err != nil {
		return err
	}
	c.backend, c.sink = f.attached()
	c.sink(playback.Event{Kind: playback.EventReady})
	return waitUntil("ready", c.controller.IsReady)
}

func (c *playbackContext) thePlayerReportsTimes(list string) error {
	for _, field := range strings.Split(list, ",") {
		t, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return fmt.Errorf("bad time %q: %w", field, err)
		}
		c.sink(playback.Event{Kind: playback.EventTime, Time: t})
	}
	return nil
}

func (c *playbackContext) callCountShouldBe(call string, want int) error {
	got := 0
	for _, made := range c.backend.Calls() {
		if made == call {
			got++
		}
	}
	if got != want {
		return fmt.Errorf("expected %s %d time(s), got %d in %v", call, want, got, c.backend.Calls())
	}
	return nil
}

func (c *playbackContext) theLastSeekShouldBe(t float64) error {
	calls := c.backend.Calls()
	for i := len(calls) - 1; i >= 0; i-- {
		if strings.HasPrefix(calls[i], "seek(") {
			if want := fmt.Sprintf("seek(%g)", t); calls[i] != want {
				return fmt.Errorf("expected last seek %s, got %s", want, calls[i])
			}
			return nil
		}
	}
	return fmt.Errorf("no seek issued: %v", calls)
}

func waitUntil(what string, cond func() bool) error {
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
	return nil
}
