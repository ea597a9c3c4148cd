package db

import (
	_ "embed"
)

// Schema and migrations

//go:embed sql/create_tables.sql
var CreateTablesSQL string

// Submission queries

//go:embed sql/insert_submission.sql
var InsertSubmissionSQL string

//go:embed sql/select_submissions.sql
var SelectSubmissionsSQL string

//go:embed sql/select_submissions_by_status.sql
var SelectSubmissionsByStatusSQL string

//go:embed sql/select_submission_by_id.sql
var SelectSubmissionByIDSQL string

//go:embed sql/select_next_pending_submission.sql
var SelectNextPendingSubmissionSQL string

//go:embed sql/mark_submission_submitted.sql
var MarkSubmissionSubmittedSQL string

//go:embed sql/mark_submission_failed.sql
var MarkSubmissionFailedSQL string

//go:embed sql/update_submission_status.sql
var UpdateSubmissionStatusSQL string

//go:embed sql/delete_submission.sql
var DeleteSubmissionSQL string
