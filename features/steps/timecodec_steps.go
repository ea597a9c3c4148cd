//go:build integration

package steps

import (
	"context"
	"fmt"
	"math"

	"github.com/user/trimcrop-cli/pkg/timeutil"

	"github.com/cucumber/godog"
)

type timeCodecContext struct {
	parsed float64
}

// SharedTimeCodecContext is reset after each scenario via After hook
var SharedTimeCodecContext = &timeCodecContext{}

func InitializeTimeCodecScenario(ctx *godog.ScenarioContext) {
	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		SharedTimeCodecContext = &timeCodecContext{}
		return c, nil
	})

	ctx.Step(`^every time below (\d+) seconds round-trips within ([\d.]+) seconds at (millisecond|whole-second) precision$`, func(limit int, tolerance float64, precision string) error {
		return SharedTimeCodecContext.everyTimeRoundTrips(limit, tolerance, precision)
	})
	ctx.Step(`^I parse "([^"]*)"$`, func(text string) error {
		SharedTimeCodecContext.parsed = timeutil.Parse(text)
		return nil
	})
	ctx.Step(`^the parsed time should be ([\d.]+)$`, func(want float64) error {
		return SharedTimeCodecContext.theParsedTimeShouldBe(want)
	})
}

// everyTimeRoundTrips walks [0, limit) in 0.1337s steps so fractional values land on
// many different millisecond boundaries.
func (c *timeCodecContext) everyTimeRoundTrips(limit int, tolerance float64, precision string) error {
	p := timeutil.Millisecond
	if precision == "whole-second" {
		p = timeutil.WholeSecond
	}
	for t := 0.0; t < float64(limit); t += 0.1337 {
		text := timeutil.Format(t, p)
		back := timeutil.Parse(text)
		if math.IsNaN(back) || math.Abs(back-t) > tolerance+1e-9 {
			return fmt.Errorf("%v formatted as %q parsed back to %v", t, text, back)
		}
	}
	return nil
}

func (c *timeCodecContext) theParsedTimeShouldBe(want float64) error {
	if math.IsNaN(c.parsed) || math.Abs(c.parsed-want) > 1e-9 {
		return fmt.Errorf("expected %v, got %v", want, c.parsed)
	}
	return nil
}
