package repository

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

// Job statuses.
const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

type Job struct {
	ID           uuid.UUID
	JobType      string
	Payload      json.RawMessage
	Status       string
	Priority     int32
	Attempts     int32
	MaxAttempts  int32
	ScheduledAt  time.Time
	StartedAt    sql.NullTime
	CompletedAt  sql.NullTime
	ErrorMessage sql.NullString
	Metadata     pqtype.NullRawMessage
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Media struct {
	ID                string
	Context           string
	ProviderName      string
	ProviderReference string
	Width             sql.NullInt32
	Height            sql.NullInt32
	ContentType       sql.NullString
	CdnStatus         sql.NullString
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
