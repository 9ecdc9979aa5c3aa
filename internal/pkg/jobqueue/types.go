package jobqueue

import (
	"encoding/json"
	"time"
)

// JobType identifies the kind of background work
type JobType string

const (
	// JobTypeConversionEstimate runs conversion estimation for one click
	JobTypeConversionEstimate JobType = "conversion_estimate"
)

// JobStatus tracks a job through its lifecycle
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Job is the unit of background work persisted in Redis
type Job struct {
	ID          string          `json:"id"`
	Type        JobType         `json:"type"`
	Status      JobStatus       `json:"status"`
	Payload     json.RawMessage `json:"payload"`
	CreatedAt   time.Time       `json:"created_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	Retries     int             `json:"retries"`
	MaxRetries  int             `json:"max_retries"`
	LastError   string          `json:"last_error,omitempty"`
}

// ConversionPayload is the payload of a conversion estimation job
type ConversionPayload struct {
	ClickID uint `json:"click_id"`
}
