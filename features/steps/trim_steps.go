//go:build integration

package steps

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/user/trimcrop-cli/trim"

	"github.com/cucumber/godog"
)

type trimContext struct {
	bounds *trim.Bounds
}

// SharedTrimContext is reset after each scenario via After hook
var SharedTrimContext = &trimContext{}

func InitializeTrimScenario(ctx *godog.ScenarioContext) {
	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		SharedTrimContext = &trimContext{}
		return c, nil
	})

	ctx.Step(`^a ([\d.]+) second video trimmed from ([\d.]+) to ([\d.]+)$`, func(d, s, e float64) error {
		return SharedTrimContext.aVideoTrimmedFromTo(d, s, e)
	})
	ctx.Step(`^I drag the start handle toward ([\d.]+) seconds$`, func(t float64) error {
		return SharedTrimContext.iDragTheStartHandleToward(t)
	})
	ctx.Step(`^I apply the edits "([^"]*)"$`, func(edits string) error {
		return SharedTrimContext.iApplyTheEdits(edits)
	})
	ctx.Step(`^the trim start should be ([\d.]+)$`, func(want float64) error {
		return SharedTrimContext.theTrimStartShouldBe(want)
	})
	ctx.Step(`^the trim end should be ([\d.]+)$`, func(want float64) error {
		return SharedTrimContext.theTrimEndShouldBe(want)
	})
	ctx.Step(`^the trim range should be valid$`, func() error {
		return SharedTrimContext.theTrimRangeShouldBeValid()
	})
}

func (c *trimContext) aVideoTrimmedFromTo(duration, start, end float64) error {
	c.bounds = trim.New(duration, start, end)
	if got := c.bounds.Snapshot(); got.Start != start || got.End != end {
		return fmt.Errorf("initial range %v-%v was adjusted to %v-%v", start, end, got.Start, got.End)
	}
	return nil
}

func (c *trimContext) iDragTheStartHandleToward(t float64) error {
	c.bounds.SetStart(t)
	return nil
}

func (c *trimContext) iApplyTheEdits(edits string) error {
	for _, edit := range strings.Split(edits, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(edit), "=")
		if !ok {
			return fmt.Errorf("malformed edit %q", edit)
		}
		t, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("malformed edit %q: %w", edit, err)
		}
		switch name {
		case "start":
			c.bounds.SetStart(t)
		case "end":
			c.bounds.SetEnd(t)
		default:
			return fmt.Errorf("unknown edit %q", name)
		}
		if err := c.theTrimRangeShouldBeValid(); err != nil {
			return fmt.Errorf("after %s: %w", edit, err)
		}
	}
	return nil
}

func (c *trimContext) theTrimStartShouldBe(want float64) error {
	if got := c.bounds.Start(); math.Abs(got-want) > 1e-9 {
		return fmt.Errorf("expected start %v, got %v", want, got)
	}
	return nil
}

func (c *trimContext) theTrimEndShouldBe(want float64) error {
	if got := c.bounds.End(); math.Abs(got-want) > 1e-9 {
		return fmt.Errorf("expected end %v, got %v", want, got)
	}
	return nil
}

func (c *trimContext) theTrimRangeShouldBeValid() error {
	s := c.bounds.Snapshot()
	const eps = 1e-9
	if s.Start < -eps || s.Start+trim.MinGap > s.End+eps || s.End > s.Duration+eps {
		return fmt.Errorf("invalid range %v-%v of %v", s.Start, s.End, s.Duration)
	}
	return nil
}
