package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/user/trimcrop-cli/crop"
	"github.com/user/trimcrop-cli/editor"
	"github.com/user/trimcrop-cli/media"
)

// ErrNotFound is returned when no submission has the requested id.
var ErrNotFound = errors.New("submission not found")

// InsertSubmission enqueues finalized settings for meta and returns the new row ID.
func InsertSubmission(db *sql.DB, meta media.VideoMetadata, ratio crop.AspectRatio, settings editor.Settings) (int64, error) {
	if err := settings.Validate(meta.Duration); err != nil {
		return 0, err
	}

	var cropJSON interface{}
	if settings.Crop != nil {
		data, err := json.Marshal(settings.Crop)
		if err != nil {
			return 0, fmt.Errorf("encode crop: %w", err)
		}
		cropJSON = string(data)
	}

	result, err := db.Exec(InsertSubmissionSQL,
		string(meta.Source), meta.Locator, meta.Title, meta.Duration,
		settings.StartTime, settings.EndTime, cropJSON, string(ratio))
	if err != nil {
		return 0, fmt.Errorf("insert submission: %w", err)
	}
	return result.LastInsertId()
}

// SelectSubmissions returns all submissions, newest first. A non-empty status filters them.
func SelectSubmissions(db *sql.DB, status string) ([]Submission, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if status == "" {
		rows, err = db.Query(SelectSubmissionsSQL)
	} else {
		rows, err = db.Query(SelectSubmissionsByStatusSQL, status)
	}
	if err != nil {
		return nil, fmt.Errorf("select submissions: %w", err)
	}
	defer rows.Close()

	var subs []Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return subs, nil
}

// SelectSubmissionByID returns one submission or ErrNotFound.
func SelectSubmissionByID(db *sql.DB, id int64) (*Submission, error) {
	s, err := scanSubmission(db.QueryRow(SelectSubmissionByIDSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return s, err
}

// UpdateSubmissionStatus moves a submission to status.
func UpdateSubmissionStatus(db *sql.DB, id int64, status string) error {
	switch status {
	case StatusPending, StatusSubmitted, StatusFailed:
	default:
		return fmt.Errorf("invalid status %q (want %s, %s or %s)", status, StatusPending, StatusSubmitted, StatusFailed)
	}
	result, err := db.Exec(UpdateSubmissionStatusSQL, status, status, id)
	if err != nil {
		return fmt.Errorf("update submission status: %w", err)
	}
	return requireRow(result, id)
}

// SelectNextPendingSubmission returns the oldest pending submission, or nil when
// the queue is empty.
func SelectNextPendingSubmission(db *sql.DB) (*Submission, error) {
	s, err := scanSubmission(db.QueryRow(SelectNextPendingSubmissionSQL))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

// MarkSubmissionSubmitted records that the job command accepted a submission.
func MarkSubmissionSubmitted(db *sql.DB, id int64, at time.Time) error {
	result, err := db.Exec(MarkSubmissionSubmittedSQL, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("mark submission submitted: %w", err)
	}
	return requireRow(result, id)
}

// MarkSubmissionFailed records why the job command rejected a submission.
func MarkSubmissionFailed(db *sql.DB, id int64, reason string) error {
	result, err := db.Exec(MarkSubmissionFailedSQL, reason, id)
	if err != nil {
		return fmt.Errorf("mark submission failed: %w", err)
	}
	return requireRow(result, id)
}

// DeleteSubmission removes a submission.
func DeleteSubmission(db *sql.DB, id int64) error {
	result, err := db.Exec(DeleteSubmissionSQL, id)
	if err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	return requireRow(result, id)
}

func requireRow(result sql.Result, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSubmission(row scanner) (*Submission, error) {
	var (
		s           Submission
		cropJSON    sql.NullString
		submittedAt sql.NullTime
	)
	err := row.Scan(&s.ID, &s.SourceType, &s.Locator, &s.Title, &s.Duration,
		&s.StartTime, &s.EndTime, &cropJSON, &s.AspectRatio, &s.Status, &s.Error,
		&s.CreatedAt, &submittedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan submission: %w", err)
	}
	if cropJSON.Valid && cropJSON.String != "" {
		var c editor.CropConfig
		if err := json.Unmarshal([]byte(cropJSON.String), &c); err != nil {
			return nil, fmt.Errorf("decode crop for submission %d: %w", s.ID, err)
		}
		s.Crop = &c
	}
	if submittedAt.Valid {
		t := submittedAt.Time
		s.SubmittedAt = &t
	}
	return &s, nil
}
