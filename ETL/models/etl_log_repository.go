package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Rebinder rewrites '?' placeholders into the driver's bind style
type Rebinder interface {
	Rebind(query string) string
}

// SQLETLLogRepository implements ETLLogRepository on top of database/sql.
// The etl_run_log table is created by the schema script.
type SQLETLLogRepository struct {
	db      *sql.DB
	binding Rebinder
}

// NewSQLETLLogRepository creates a new SQLETLLogRepository
func NewSQLETLLogRepository(db *sql.DB, binding Rebinder) *SQLETLLogRepository {
	return &SQLETLLogRepository{
		db:      db,
		binding: binding,
	}
}

const runLogColumns = `
	run_id, input_file, start_time, end_time, status,
	records_processed, customers_loaded, emails_loaded, phones_loaded,
	error_message, execution_time_seconds`

// CreateLogEntry records the start of a run
func (r *SQLETLLogRepository) CreateLogEntry(ctx context.Context, runID, inputFile string, startTime time.Time) error {
	query := r.binding.Rebind(`
	INSERT INTO etl_run_log (run_id, input_file, start_time, status)
	VALUES (?, ?, ?, ?)
	`)

	if _, err := r.db.ExecContext(ctx, query, runID, inputFile, startTime, RunStatusInProgress); err != nil {
		return fmt.Errorf("create etl run log entry: %w", err)
	}
	return nil
}

// UpdateLogEntrySuccess marks a run as finished successfully
func (r *SQLETLLogRepository) UpdateLogEntrySuccess(ctx context.Context, run *ETLRunLog) error {
	// the start time is read back only when the caller does not carry it
	startTime := run.StartTime
	if startTime.IsZero() {
		var err error
		if startTime, err = r.startTime(ctx, run.RunID); err != nil {
			return err
		}
	}

	query := r.binding.Rebind(`
	UPDATE etl_run_log
	SET
		end_time = ?,
		status = ?,
		records_processed = ?,
		customers_loaded = ?,
		emails_loaded = ?,
		phones_loaded = ?,
		execution_time_seconds = ?
	WHERE run_id = ?
	`)

	_, err := r.db.ExecContext(ctx, query,
		run.EndTime,
		RunStatusSuccess,
		run.RecordsProcessed,
		run.CustomersLoaded,
		run.EmailsLoaded,
		run.PhonesLoaded,
		run.EndTime.Sub(startTime).Seconds(),
		run.RunID,
	)
	if err != nil {
		return fmt.Errorf("update etl run log entry: %w", err)
	}
	return nil
}

// UpdateLogEntryFailure marks a run as failed
func (r *SQLETLLogRepository) UpdateLogEntryFailure(ctx context.Context, runID string, endTime time.Time, errorMessage string) error {
	startTime, err := r.startTime(ctx, runID)
	if err != nil {
		return err
	}

	query := r.binding.Rebind(`
	UPDATE etl_run_log
	SET
		end_time = ?,
		status = ?,
		error_message = ?,
		execution_time_seconds = ?
	WHERE run_id = ?
	`)

	_, err = r.db.ExecContext(ctx, query, endTime, RunStatusFailed, errorMessage, endTime.Sub(startTime).Seconds(), runID)
	if err != nil {
		return fmt.Errorf("update etl run log entry: %w", err)
	}
	return nil
}

// GetLastSuccessfulRun returns the most recent successful run, or nil when
// there is none
func (r *SQLETLLogRepository) GetLastSuccessfulRun(ctx context.Context) (*ETLRunLog, error) {
	query := r.binding.Rebind(`
	SELECT` + runLogColumns + `
	FROM etl_run_log
	WHERE status = ?
	ORDER BY end_time DESC
	LIMIT 1
	`)

	run, err := scanRunLog(r.db.QueryRowContext(ctx, query, RunStatusSuccess))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get last successful etl run: %w", err)
	}
	return run, nil
}

// GetETLRunStats returns the latest runs, newest first
func (r *SQLETLLogRepository) GetETLRunStats(ctx context.Context, limit int) ([]ETLRunLog, error) {
	query := r.binding.Rebind(`
	SELECT` + runLogColumns + `
	FROM etl_run_log
	ORDER BY start_time DESC
	LIMIT ?
	`)

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query etl run stats: %w", err)
	}
	defer rows.Close()

	var logs []ETLRunLog
	for rows.Next() {
		run, err := scanRunLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan etl run log: %w", err)
		}
		logs = append(logs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate etl run log: %w", err)
	}
	return logs, nil
}

func (r *SQLETLLogRepository) startTime(ctx context.Context, runID string) (time.Time, error) {
	var startTime time.Time
	query := r.binding.Rebind("SELECT start_time FROM etl_run_log WHERE run_id = ?")
	if err := r.db.QueryRowContext(ctx, query, runID).Scan(&startTime); err != nil {
		return time.Time{}, fmt.Errorf("get etl run start time: %w", err)
	}
	return startTime, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRunLog(row rowScanner) (*ETLRunLog, error) {
	var (
		run      ETLRunLog
		endTime  sql.NullTime
		errMsg   sql.NullString
		execTime sql.NullFloat64
	)
	err := row.Scan(
		&run.RunID, &run.InputFile, &run.StartTime, &endTime, &run.Status,
		&run.RecordsProcessed, &run.CustomersLoaded, &run.EmailsLoaded, &run.PhonesLoaded,
		&errMsg, &execTime,
	)
	if err != nil {
		return nil, err
	}
	run.EndTime = endTime.Time
	run.ErrorMessage = errMsg.String
	run.ExecutionTimeSeconds = execTime.Float64
	return &run, nil
}
