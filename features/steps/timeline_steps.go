//go:build integration

package steps

import (
	"context"
	"fmt"

	"github.com/user/trimcrop-cli/timeline"
	"github.com/user/trimcrop-cli/trim"

	"github.com/cucumber/godog"
)

// trackRow is where the test track sits; one host unit per second starting at column 0.
const trackRow = 10

type seekLog struct {
	seeks []float64
}

func (s *seekLog) Seek(t float64) error {
	s.seeks = append(s.seeks, t)
	return nil
}

type timelineContext struct {
	bounds     *trim.Bounds
	doc        *timeline.Document
	controller *timeline.Controller
	seeker     *seekLog
}

// SharedTimelineContext is reset after each scenario via After hook
var SharedTimelineContext = &timelineContext{}

func InitializeTimelineScenario(ctx *godog.ScenarioContext) {
	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if SharedTimelineContext.controller != nil {
			SharedTimelineContext.controller.Close()
		}
		SharedTimelineContext = &timelineContext{}
		return c, nil
	})

	ctx.Step(`^a timeline over a ([\d.]+) second video trimmed from ([\d.]+) to ([\d.]+)$`, func(d, s, e float64) error {
		return SharedTimelineContext.aTimeline(d, s, e)
	})
	ctx.Step(`^I press on the (start|end) handle$`, func(handle string) error {
		return SharedTimelineContext.iPressOnTheHandle(handle)
	})
	ctx.Step(`^I release the pointer$`, func() error {
		SharedTimelineContext.doc.DispatchUp(timeline.Point{X: 0, Y: trackRow})
		return nil
	})
	ctx.Step(`^I click the track at ([\d.]+) seconds$`, func(t float64) error {
		return SharedTimelineContext.iClickTheTrackAt(t)
	})
	ctx.Step(`^the timeline should be "([^"]*)"$`, func(state string) error {
		if got := SharedTimelineContext.controller.State().String(); got != state {
			return fmt.Errorf("expected %s, got %s", state, got)
		}
		return nil
	})
	ctx.Step(`^the player should have been asked to seek to ([\d.]+) seconds$`, func(t float64) error {
		return SharedTimelineContext.thePlayerShouldHaveSeekedTo(t)
	})
}

func (c *timelineContext) aTimeline(duration, start, end float64) error {
	c.bounds = trim.New(duration, start, end)
	c.doc = &timeline.Document{}
	c.seeker = &seekLog{}
	c.controller = timeline.NewController(c.doc, c.bounds, c.seeker, nil)
	c.controller.SetLayout(timeline.Layout{
		Track: timeline.Track{Box: timeline.Box{Left: 0, Top: trackRow, Width: duration, Height: 1}},
	})
	return nil
}

func (c *timelineContext) iPressOnTheHandle(handle string) error {
	x := c.bounds.Start()
	if handle == "end" {
		x = c.bounds.End()
	}
	c.controller.PointerDown(timeline.Point{X: x, Y: trackRow})
	return nil
}

func (c *timelineContext) iClickTheTrackAt(t float64) error {
	p := timeline.Point{X: t, Y: trackRow}
	if !c.controller.PointerDown(p) {
		return fmt.Errorf("press at %v seconds was not on the track", t)
	}
	c.doc.DispatchUp(p)
	return nil
}

func (c *timelineContext) thePlayerShouldHaveSeekedTo(t float64) error {
	if len(c.seeker.seeks) == 0 {
		return fmt.Errorf("no seek issued")
	}
	if got := c.seeker.seeks[len(c.seeker.seeks)-1]; !near(got, t) {
		return fmt.Errorf("expected seek to %v, got %v", t, got)
	}
	return nil
}
