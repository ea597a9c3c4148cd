//go:build integration

package steps

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/user/trimcrop-cli/crop"
	"github.com/user/trimcrop-cli/db"
	"github.com/user/trimcrop-cli/editor"
	"github.com/user/trimcrop-cli/media"
	"github.com/user/trimcrop-cli/submit"

	"github.com/cucumber/godog"
	"github.com/kballard/go-shellquote"
)

var submissionMeta = media.VideoMetadata{
	Title:    "final",
	Duration: 300,
	Width:    1920,
	Height:   1080,
	Source:   media.SourceLocal,
	Locator:  "/videos/final.mp4",
}

type submissionContext struct {
	dir       string
	db        *sql.DB
	insertErr error
}

// SharedSubmissionContext is reset after each scenario via After hook
var SharedSubmissionContext = &submissionContext{}

func InitializeSubmissionScenario(ctx *godog.ScenarioContext) {
	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		SharedSubmissionContext.cleanup()
		SharedSubmissionContext = &submissionContext{}
		return c, nil
	})

	ctx.Step(`^an empty submission queue$`, func() error {
		return SharedSubmissionContext.anEmptySubmissionQueue()
	})
	ctx.Step(`^a finalized selection from ([\d.]+) to ([\d.]+) cropped to "([^"]*)"$`, func(start, end float64, ratio string) error {
		return SharedSubmissionContext.aFinalizedSelection(start, end, ratio)
	})
	ctx.Step(`^I finalize a selection from ([\d.]+) to ([\d.]+)$`, func(start, end float64) error {
		SharedSubmissionContext.insertErr = SharedSubmissionContext.insert(start, end, crop.Original)
		return nil
	})
	ctx.Step(`^I submit pending selections with "([^"]*)"$`, func(command string) error {
		return SharedSubmissionContext.iSubmitPendingSelections(command)
	})
	ctx.Step(`^(\d+) submissions? should be "([^"]*)"$`, func(n int, status string) error {
		return SharedSubmissionContext.submissionsShouldBe(n, status)
	})
	ctx.Step(`^the failure should mention "([^"]*)"$`, func(text string) error {
		return SharedSubmissionContext.theFailureShouldMention(text)
	})
	ctx.Step(`^the selection should be rejected as an invalid range$`, func() error {
		if !errors.Is(SharedSubmissionContext.insertErr, editor.ErrInvalidRange) {
			return fmt.Errorf("expected an invalid range error, got %v", SharedSubmissionContext.insertErr)
		}
		return nil
	})
}

func (c *submissionContext) anEmptySubmissionQueue() error {
	dir, err := os.MkdirTemp("", "trimcrop-features-")
	if err != nil {
		return err
	}
	c.dir = dir
	c.db, err = db.Open(filepath.Join(dir, "trimcrop.db"))
	return err
}

func (c *submissionContext) cleanup() {
	if c.db != nil {
		c.db.Close()
	}
	if c.dir != "" {
		os.RemoveAll(c.dir)
	}
}

func (c *submissionContext) aFinalizedSelection(start, end float64, ratioText string) error {
	ratio, err := crop.ParseAspectRatio(ratioText)
	if err != nil {
		return err
	}
	return c.insert(start, end, ratio)
}

func (c *submissionContext) insert(start, end float64, ratio crop.AspectRatio) error {
	settings := editor.Settings{
		StartTime: start,
		EndTime:   end,
		Crop:      editor.NewCropConfig(crop.Compute(ratio, float64(submissionMeta.Width), float64(submissionMeta.Height))),
	}
	_, err := db.InsertSubmission(c.db, submissionMeta, ratio, settings)
	return err
}

func (c *submissionContext) iSubmitPendingSelections(command string) error {
	args, err := shellquote.Split(command)
	if err != nil {
		return err
	}
	p := &submit.Processor{DB: c.db, Command: args}
	_, _, err = p.Drain(context.Background())
	return err
}

func (c *submissionContext) submissionsShouldBe(want int, status string) error {
	subs, err := db.SelectSubmissions(c.db, status)
	if err != nil {
		return err
	}
	if len(subs) != want {
		return fmt.Errorf("expected %d %s submission(s), got %d", want, status, len(subs))
	}
	return nil
}

func (c *submissionContext) theFailureShouldMention(text string) error {
	subs, err := db.SelectSubmissions(c.db, db.StatusFailed)
	if err != nil {
		return err
	}
	for _, s := range subs {
		if strings.Contains(s.Error, text) {
			return nil
		}
	}
	return fmt.Errorf("no failed submission mentions %q", text)
}
