//go:build integration

package steps

import (
	"context"
	"fmt"
	"math"

	"github.com/user/trimcrop-cli/crop"

	"github.com/cucumber/godog"
)

type cropContext struct {
	rect *crop.Rect
}

// SharedCropContext is reset after each scenario via After hook
var SharedCropContext = &cropContext{}

func InitializeCropScenario(ctx *godog.ScenarioContext) {
	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		SharedCropContext = &cropContext{}
		return c, nil
	})

	ctx.Step(`^I compute the "([^"]*)" crop for a (\d+)x(\d+) source$`, func(ratio string, w, h int) error {
		return SharedCropContext.iComputeTheCrop(ratio, w, h)
	})
	ctx.Step(`^a (\d+)x(\d+) source with a crop at ([\d.]+), ([\d.]+) sized ([\d.]+)x([\d.]+)$`, func(sw, sh int, x, y, w, h float64) error {
		return SharedCropContext.aSourceWithACrop(sw, sh, x, y, w, h)
	})
	ctx.Step(`^I move the crop by (-?[\d.]+), (-?[\d.]+) screen pixels at scale ([\d.]+)$`, func(dx, dy, scale float64) error {
		return SharedCropContext.iMoveTheCrop(dx, dy, scale)
	})
	ctx.Step(`^there should be no crop$`, func() error {
		return SharedCropContext.thereShouldBeNoCrop()
	})
	ctx.Step(`^the crop should be ([\d.]+) wide and ([\d.]+) high$`, func(w, h float64) error {
		return SharedCropContext.theCropShouldBeSized(w, h)
	})
	ctx.Step(`^the crop origin should be ([\d.]+), ([\d.]+)$`, func(x, y float64) error {
		return SharedCropContext.theCropOriginShouldBe(x, y)
	})
}

func (c *cropContext) iComputeTheCrop(ratio string, w, h int) error {
	r, err := crop.ParseAspectRatio(ratio)
	if err != nil {
		return err
	}
	c.rect = crop.Compute(r, float64(w), float64(h))
	return nil
}

func (c *cropContext) aSourceWithACrop(sw, sh int, x, y, w, h float64) error {
	c.rect = &crop.Rect{X: x, Y: y, Width: w, Height: h, SourceWidth: float64(sw), SourceHeight: float64(sh)}
	return nil
}

func (c *cropContext) iMoveTheCrop(dx, dy, scale float64) error {
	if c.rect == nil {
		return fmt.Errorf("no crop to move")
	}
	moved := crop.Translate(*c.rect, dx, dy, scale, scale)
	c.rect = &moved
	return nil
}

func (c *cropContext) thereShouldBeNoCrop() error {
	if c.rect != nil {
		return fmt.Errorf("expected no crop, got %s", c.rect)
	}
	return nil
}

func (c *cropContext) theCropShouldBeSized(w, h float64) error {
	if c.rect == nil {
		return fmt.Errorf("expected a crop, got none")
	}
	if !near(c.rect.Width, w) || !near(c.rect.Height, h) {
		return fmt.Errorf("expected %vx%v, got %vx%v", w, h, c.rect.Width, c.rect.Height)
	}
	return nil
}

func (c *cropContext) theCropOriginShouldBe(x, y float64) error {
	if c.rect == nil {
		return fmt.Errorf("expected a crop, got none")
	}
	if !near(c.rect.X, x) || !near(c.rect.Y, y) {
		return fmt.Errorf("expected origin %v,%v, got %v,%v", x, y, c.rect.X, c.rect.Y)
	}
	return nil
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}
