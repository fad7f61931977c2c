package models

import (
	"context"
	"time"
)

// Run statuses stored in etl_run_log
const (
	RunStatusInProgress = "in_progress"
	RunStatusSuccess    = "success"
	RunStatusFailed     = "failed"
)

// ETLRunLog represents one execution of the customers ETL
type ETLRunLog struct {
	RunID                string    `json:"run_id"`
	InputFile            string    `json:"input_file"`
	StartTime            time.Time `json:"start_time"`
	EndTime              time.Time `json:"end_time"`
	Status               string    `json:"status"`
	RecordsProcessed     int       `json:"records_processed"`
	CustomersLoaded      int       `json:"customers_loaded"`
	EmailsLoaded         int       `json:"emails_loaded"`
	PhonesLoaded         int       `json:"phones_loaded"`
	ErrorMessage         string    `json:"error_message,omitempty"`
	ExecutionTimeSeconds float64   `json:"execution_time_seconds"`
}

// ETLLogRepository stores the history of ETL runs
type ETLLogRepository interface {
	// CreateLogEntry records the start of a run
	CreateLogEntry(ctx context.Context, runID, inputFile string, startTime time.Time) error

	// UpdateLogEntrySuccess marks a run as finished successfully
	UpdateLogEntrySuccess(ctx context.Context, run *ETLRunLog) error

	// UpdateLogEntryFailure marks a run as failed
	UpdateLogEntryFailure(ctx context.Context, runID string, endTime time.Time, errorMessage string) error

	// GetLastSuccessfulRun returns the most recent successful run, or nil
	GetLastSuccessfulRun(ctx context.Context) (*ETLRunLog, error)

	// GetETLRunStats returns the latest runs, newest first
	GetETLRunStats(ctx context.Context, limit int) ([]ETLRunLog, error)
}
