package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sqlc-dev/pqtype"
)

const jobColumns = `id, job_type, payload, status, priority, attempts, max_attempts,
	scheduled_at, started_at, completed_at, error_message, metadata, created_at, updated_at`

func scanJob(row interface{ Scan(...interface{}) error }) (Job, error) {
	var i Job
	err := row.Scan(
		&i.ID,
		&i.JobType,
		&i.Payload,
		&i.Status,
		&i.Priority,
		&i.Attempts,
		&i.MaxAttempts,
		&i.ScheduledAt,
		&i.StartedAt,
		&i.CompletedAt,
		&i.ErrorMessage,
		&i.Metadata,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const enqueueJob = `
INSERT INTO jobs (job_type, payload, priority, max_attempts, scheduled_at, metadata)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + jobColumns

type EnqueueJobParams struct {
	JobType     string
	Payload     json.RawMessage
	Priority    int32
	MaxAttempts int32
	ScheduledAt time.Time
	Metadata    pqtype.NullRawMessage
}

func (q *Queries) EnqueueJob(ctx context.Context, arg EnqueueJobParams) (Job, error) {
	row := q.db.QueryRowContext(ctx, enqueueJob,
		arg.JobType,
		arg.Payload,
		arg.Priority,
		arg.MaxAttempts,
		arg.ScheduledAt,
		arg.Metadata,
	)
	return scanJob(row)
}

// DequeueJob locks the next runnable job. Rows locked by other workers are
// skipped. Call it inside a transaction.
const dequeueJob = `
SELECT ` + jobColumns + `
FROM jobs
WHERE status = 'pending' AND scheduled_at <= NOW()
ORDER BY priority DESC, scheduled_at
LIMIT 1
FOR UPDATE SKIP LOCKED`

func (q *Queries) DequeueJob(ctx context.Context) (Job, error) {
	row := q.db.QueryRowContext(ctx, dequeueJob)
	return scanJob(row)
}

const updateJobStarted = `
UPDATE jobs
SET status = 'running', started_at = NOW(), attempts = attempts + 1, updated_at = NOW()
WHERE id = $1`

func (q *Queries) UpdateJobStarted(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, updateJobStarted, id)
	return err
}

const updateJobCompleted = `
UPDATE jobs
SET status = 'completed', completed_at = NOW(), error_message = NULL, updated_at = NOW()
WHERE id = $1`

func (q *Queries) UpdateJobCompleted(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, updateJobCompleted, id)
	return err
}

// UpdateJobFailed reschedules the job with exponential backoff
// (2^attempts minutes) unless it is permanent or out of attempts, in which
// case it is marked failed.
const updateJobFailed = `
UPDATE jobs
SET status = CASE
        WHEN $3 OR attempts >= max_attempts THEN 'failed'
        ELSE 'pending'
    END,
    scheduled_at = CASE
        WHEN $3 OR attempts >= max_attempts THEN scheduled_at
        ELSE NOW() + (POWER(2, attempts) * INTERVAL '1 minute')
    END,
    completed_at = CASE
        WHEN $3 OR attempts >= max_attempts THEN NOW()
        ELSE NULL
    END,
    error_message = $2,
    updated_at = NOW()
WHERE id = $1`

type UpdateJobFailedParams struct {
	ID           uuid.UUID
	ErrorMessage sql.NullString
	Permanent    bool
}

func (q *Queries) UpdateJobFailed(ctx context.Context, arg UpdateJobFailedParams) error {
	_, err := q.db.ExecContext(ctx, updateJobFailed, arg.ID, arg.ErrorMessage, arg.Permanent)
	return err
}

const recoverStaleJobs = `
UPDATE jobs
SET status = 'pending', started_at = NULL, updated_at = NOW()
WHERE status = 'running'
  AND started_at < NOW() - make_interval(secs => $1)`

// RecoverStaleJobs resets jobs that have been running longer than
// thresholdSeconds and returns how many were reset.
func (q *Queries) RecoverStaleJobs(ctx context.Context, thresholdSeconds float64) (int64, error) {
	result, err := q.db.ExecContext(ctx, recoverStaleJobs, thresholdSeconds)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const purgeJobs = `
DELETE FROM jobs
WHERE status = ANY($1::text[])
  AND updated_at < $2`

type PurgeJobsParams struct {
	Statuses []string
	Before   time.Time
}

// PurgeJobs deletes finished jobs last touched before arg.Before.
func (q *Queries) PurgeJobs(ctx context.Context, arg PurgeJobsParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, purgeJobs, pq.Array(arg.Statuses), arg.Before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countPendingJobs = `
SELECT COUNT(*)
FROM jobs
WHERE status = 'pending' AND job_type = ANY($1::text[])`

func (q *Queries) CountPendingJobs(ctx context.Context, jobTypes []string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countPendingJobs, pq.Array(jobTypes))
	var count int64
	err := row.Scan(&count)
	return count, err
}
