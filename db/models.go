package db

import (
	"time"

	"github.com/user/trimcrop-cli/editor"
)

// Submission statuses. The job submitter moves rows out of pending.
const (
	StatusPending   = "pending"
	StatusSubmitted = "submitted"
	StatusFailed    = "failed"
)

// Submission represents a row in the submissions table.
type Submission struct {
	ID          int64              `json:"id"`
	SourceType  string             `json:"source_type"`
	Locator     string             `json:"locator"`
	Title       string             `json:"title"`
	Duration    float64            `json:"duration"`
	StartTime   float64            `json:"start_time"`
	EndTime     float64            `json:"end_time"`
	Crop        *editor.CropConfig `json:"crop"`
	AspectRatio string             `json:"aspect_ratio"`
	Status      string             `json:"status"`
	Error       string             `json:"error,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	SubmittedAt *time.Time         `json:"submitted_at,omitempty"`
}

// Settings returns the finalized selection stored in the row.
func (s Submission) Settings() editor.Settings {
	return editor.Settings{StartTime: s.StartTime, EndTime: s.EndTime, Crop: s.Crop}
}
