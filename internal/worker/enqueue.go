package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sqlc-dev/pqtype"

	"github.com/sonata-project/SonataMediaBundle-sub001/internal/repository"
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/thumbnail"
)

// Job type constants - these must match the JobHandler.Type() values
const (
	JobTypeGenerateThumbnails = "generate_thumbnails"
)

// Priority constants for job scheduling
const (
	PriorityLow    = 0
	PriorityNormal = 10
	PriorityHigh   = 20
)

// JobStore is the part of repository.Queries used to enqueue jobs.
type JobStore interface {
	EnqueueJob(ctx context.Context, arg repository.EnqueueJobParams) (repository.Job, error)
}

// EnqueueOption is a functional option for customizing job enqueue parameters.
type EnqueueOption func(*repository.EnqueueJobParams)

// WithPriority sets the job priority.
func WithPriority(priority int32) EnqueueOption {
	return func(p *repository.EnqueueJobParams) {
		p.Priority = priority
	}
}

// WithMaxAttempts sets the maximum number of retry attempts.
func WithMaxAttempts(attempts int32) EnqueueOption {
	return func(p *repository.EnqueueJobParams) {
		p.MaxAttempts = attempts
	}
}

// WithDelay schedules the job to run after a delay.
func WithDelay(delay time.Duration) EnqueueOption {
	return func(p *repository.EnqueueJobParams) {
		p.ScheduledAt = time.Now().Add(delay)
	}
}

// WithMetadata attaches free-form metadata to the job row. It is stored for
// operators and never read by handlers.
func WithMetadata(metadata map[string]string) EnqueueOption {
	return func(p *repository.EnqueueJobParams) {
		data, err := json.Marshal(metadata)
		if err != nil {
			return
		}
		p.Metadata = pqtype.NullRawMessage{RawMessage: data, Valid: true}
	}
}

// EnqueueJob is a generic helper for enqueuing jobs with custom options.
func EnqueueJob(
	ctx context.Context,
	store JobStore,
	jobType string,
	payload interface{},
	opts ...EnqueueOption,
) (repository.Job, error) {
	// Marshal the payload to JSON
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return repository.Job{}, fmt.Errorf("marshal payload: %w", err)
	}

	// Default parameters
	params := repository.EnqueueJobParams{
		JobType:     jobType,
		Payload:     payloadJSON,
		Priority:    PriorityNormal,
		MaxAttempts: 3,
		ScheduledAt: time.Now(),
	}

	for _, opt := range opts {
		opt(&params)
	}

	job, err := store.EnqueueJob(ctx, params)
	if err != nil {
		return repository.Job{}, fmt.Errorf("enqueue job: %w", err)
	}

	return job, nil
}

// EnqueueGenerateThumbnails enqueues a job to generate the derivatives of
// one media.
func EnqueueGenerateThumbnails(
	ctx context.Context,
	store JobStore,
	msg thumbnail.Message,
	opts ...EnqueueOption,
) (repository.Job, error) {
	if err := msg.Validate(); err != nil {
		return repository.Job{}, err
	}
	return EnqueueJob(ctx, store, JobTypeGenerateThumbnails, msg, opts...)
}

// Enqueuer publishes thumbnail messages as rows of the jobs table.
type Enqueuer struct {
	store JobStore
	opts  []EnqueueOption
}

// NewEnqueuer creates a publisher that applies opts to every job.
func NewEnqueuer(store JobStore, opts ...EnqueueOption) *Enqueuer {
	return &Enqueuer{store: store, opts: opts}
}

// Publish implements thumbnail.Publisher.
func (e *Enqueuer) Publish(ctx context.Context, msg thumbnail.Message) error {
	opts := append([]EnqueueOption{WithMetadata(map[string]string{
		"provider":  msg.ProviderName,
		"thumbnail": msg.ThumbnailID,
	})}, e.opts...)

	_, err := EnqueueGenerateThumbnails(ctx, e.store, msg, opts...)
	return err
}
