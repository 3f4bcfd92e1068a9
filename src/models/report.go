package models

import (
	"time"

	"github.com/google/uuid"
)

// Report is a report definition. Scheduled reports carry a frequency and the
// computed next run time.
type Report struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	ReportType string     `json:"report_type"`
	Parameters string     `json:"parameters"`
	Frequency  *string    `json:"frequency,omitempty"`
	NextRunAt  *time.Time `json:"next_run_at,omitempty"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// ReportJob is one generation run of a report, driven by the job queue.
type ReportJob struct {
	ID           uuid.UUID  `json:"id"`
	ReportID     uuid.UUID  `json:"report_id"`
	Status       string     `json:"status"`
	ResultPath   *string    `json:"result_path,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	EnqueuedAt   time.Time  `json:"enqueued_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}
