package worker

import (
	"context"
	"errors"
)

// JobHandler executes one job type. Type must match the job_type column of
// the rows it handles; Handle receives the raw JSON payload.
type JobHandler interface {
	Type() string
	Handle(ctx context.Context, payload []byte) error
}

// HandlerFunc builds a JobHandler for jobType from a function.
func HandlerFunc(jobType string, fn func(ctx context.Context, payload []byte) error) JobHandler {
	return funcHandler{jobType: jobType, fn: fn}
}

type funcHandler struct {
	jobType string
	fn      func(ctx context.Context, payload []byte) error
}

func (h funcHandler) Type() string { return h.jobType }

func (h funcHandler) Handle(ctx context.Context, payload []byte) error {
	return h.fn(ctx, payload)
}

// PermanentError marks a failure that retrying cannot fix. The job worker
// fails such jobs immediately and the stream consumer acknowledges and drops
// such messages.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return "permanent: " + e.Err.Error() }

func (e *PermanentError) Unwrap() error { return e.Err }

// NewPermanentError wraps err as a PermanentError. A nil err stays nil.
func NewPermanentError(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err or any error it wraps is a PermanentError.
func IsPermanent(err error) bool {
	var permErr *PermanentError
	return errors.As(err, &permErr)
}
