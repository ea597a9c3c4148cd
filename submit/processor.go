// Package submit hands finalized submissions to the downstream job command.
package submit

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/user/trimcrop-cli/db"
	"github.com/user/trimcrop-cli/editor"
)

// ErrNoCommand is returned when no job command is configured.
var ErrNoCommand = errors.New("no submit command configured")

// maxErrorOutput bounds how much command output is stored with a failed row.
const maxErrorOutput = 2000

// Job is the JSON document written to the job command's stdin.
type Job struct {
	ID          int64           `json:"id"`
	SourceType  string          `json:"source_type"`
	Locator     string          `json:"locator"`
	Title       string          `json:"title"`
	AspectRatio string          `json:"aspect_ratio"`
	Settings    editor.Settings `json:"settings"`
	Filter      string          `json:"filter,omitempty"`
}

// NewJob builds the payload for s.
func NewJob(s db.Submission) Job {
	j := Job{
		ID:          s.ID,
		SourceType:  s.SourceType,
		Locator:     s.Locator,
		Title:       s.Title,
		AspectRatio: s.AspectRatio,
		Settings:    s.Settings(),
	}
	if s.Crop != nil {
		j.Filter = s.Crop.Filter()
	}
	return j
}

// Processor drains pending submissions into the job command.
type Processor struct {
	DB *sql.DB
	// Command is the program and arguments to run once per submission.
	Command []string
	// Interval is how long the background worker sleeps when the queue is empty.
	Interval time.Duration
	Logger   *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Start launches a goroutine that continuously polls for pending submissions and
// submits them. The goroutine exits when ctx is cancelled.
func (p *Processor) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			sub, err := db.SelectNextPendingSubmission(p.DB)
			if err != nil {
				p.logger().Warn("select pending submission", "error", err)
			}
			if err != nil || sub == nil {
				select {
				case <-ctx.Done():
					return
				case <-time.After(p.interval()):
				}
				continue
			}

			if _, err := p.process(ctx, sub); err != nil {
				// The row is still pending.
				select {
				case <-ctx.Done():
					return
				case <-time.After(p.interval()):
				}
			}
		}
	}()
}

// Drain submits every pending submission once and returns how many succeeded and failed.
// It stops at the first outcome it cannot record, leaving that row pending.
func (p *Processor) Drain(ctx context.Context) (submitted, failed int, err error) {
	if len(p.Command) == 0 {
		return 0, 0, ErrNoCommand
	}
	for {
		if err := ctx.Err(); err != nil {
			return submitted, failed, err
		}
		sub, err := db.SelectNextPendingSubmission(p.DB)
		if err != nil {
			return submitted, failed, err
		}
		if sub == nil {
			return submitted, failed, nil
		}
		ok, err := p.process(ctx, sub)
		if err != nil {
			return submitted, failed, err
		}
		if ok {
			submitted++
		} else {
			failed++
		}
	}
}

// process runs the command for one submission and records the outcome. It reports
// whether the submission was accepted, and an error when the outcome could not be saved.
func (p *Processor) process(ctx context.Context, s *db.Submission) (bool, error) {
	log := p.logger().With("submission", s.ID)

	if len(p.Command) == 0 {
		return false, p.fail(log, s.ID, ErrNoCommand.Error())
	}
	if _, err := exec.LookPath(p.Command[0]); err != nil {
		return false, p.fail(log, s.ID, fmt.Sprintf("%s not found in PATH", p.Command[0]))
	}

	payload, err := json.Marshal(NewJob(*s))
	if err != nil {
		return false, p.fail(log, s.ID, fmt.Sprintf("encode job: %v", err))
	}

	cmd := exec.CommandContext(ctx, p.Command[0], p.Command[1:]...)
	cmd.Stdin = bytes.NewReader(payload)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(out.String())
		if msg == "" {
			msg = err.Error()
		}
		return false, p.fail(log, s.ID, truncate(msg, maxErrorOutput))
	}

	if err := db.MarkSubmissionSubmitted(p.DB, s.ID, p.now()); err != nil {
		log.Error("mark submitted", "error", err)
		return true, fmt.Errorf("mark submission %d submitted: %w", s.ID, err)
	}
	log.Info("submitted", "locator", s.Locator)
	return true, nil
}

func (p *Processor) fail(log *slog.Logger, id int64, reason string) error {
	log.Warn("submission failed", "reason", reason)
	if err := db.MarkSubmissionFailed(p.DB, id, reason); err != nil {
		log.Error("mark failed", "error", err)
		return fmt.Errorf("mark submission %d failed: %w", id, err)
	}
	return nil
}

func (p *Processor) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

func (p *Processor) interval() time.Duration {
	if p.Interval <= 0 {
		return 2 * time.Second
	}
	return p.Interval
}

func (p *Processor) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
