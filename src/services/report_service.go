package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/opsboard/backoffice/src/models"
)

var reportUpdatable = map[string]bool{
	"name":       true,
	"parameters": true,
	"is_active":  true,
}

// ReportService manages report definitions and their generation queue.
type ReportService struct {
	pool *pgxpool.Pool
}

// NewReportService creates a new report service
func NewReportService(pool *pgxpool.Pool) *ReportService {
	return &ReportService{pool: pool}
}

// CreateReportInput carries the fields accepted on report creation.
type CreateReportInput struct {
	Name       string  `json:"name" binding:"required"`
	ReportType string  `json:"report_type" binding:"required"`
	Parameters string  `json:"parameters"`
	Frequency  *string `json:"frequency"`
}

// CreateReport registers a report definition. A frequency makes it scheduled
// and computes the first run time.
func (rs *ReportService) CreateReport(ctx context.Context, input CreateReportInput) (*models.Report, error) {
	if input.Parameters == "" {
		input.Parameters = "{}"
	}

	var nextRun *time.Time
	if input.Frequency != nil {
		if !validFrequency(*input.Frequency) {
			return nil, fmt.Errorf("%w: unknown frequency %q", ErrValidation, *input.Frequency)
		}
		next := ComputeNextRun(*input.Frequency, time.Now())
		nextRun = &next
	}

	r := &models.Report{
		Name:       input.Name,
		ReportType: input.ReportType,
		Parameters: input.Parameters,
		Frequency:  input.Frequency,
		NextRunAt:  nextRun,
	}
	err := rs.pool.QueryRow(ctx, `
		INSERT INTO reports (name, report_type, parameters, frequency, next_run_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_active, created_at, updated_at
	`, input.Name, input.ReportType, input.Parameters, input.Frequency, nextRun,
	).Scan(&r.ID, &r.IsActive, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}
	return r, nil
}

// ListReports returns all report definitions, newest first.
func (rs *ReportService) ListReports(ctx context.Context) ([]*models.Report, error) {
	rows, err := rs.pool.Query(ctx, `
		SELECT id, name, report_type, parameters, frequency, next_run_at,
			is_active, created_at, updated_at
		FROM reports
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.Report
	for rows.Next() {
		var r models.Report
		if err := rows.Scan(&r.ID, &r.Name, &r.ReportType, &r.Parameters, &r.Frequency,
			&r.NextRunAt, &r.IsActive, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, &r)
	}
	return reports, rows.Err()
}

// GetReport fetches one report definition by id.
func (rs *ReportService) GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	var r models.Report
	err := rs.pool.QueryRow(ctx, `
		SELECT id, name, report_type, parameters, frequency, next_run_at,
			is_active, created_at, updated_at
		FROM reports WHERE id = $1
	`, id).Scan(&r.ID, &r.Name, &r.ReportType, &r.Parameters, &r.Frequency,
		&r.NextRunAt, &r.IsActive, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch report: %w", err)
	}
	return &r, nil
}

// UpdateReport updates report metadata through the column allow-list.
func (rs *ReportService) UpdateReport(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Report, error) {
	query, args, err := buildUpdate("reports", reportUpdatable, fields, id)
	if err != nil {
		return nil, err
	}
	tag, err := rs.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return rs.GetReport(ctx, id)
}

// SetSchedule changes or clears a report's frequency, recomputing next_run_at.
func (rs *ReportService) SetSchedule(ctx context.Context, id uuid.UUID, frequency *string) (*models.Report, error) {
	var nextRun *time.Time
	if frequency != nil {
		if !validFrequency(*frequency) {
			return nil, fmt.Errorf("%w: unknown frequency %q", ErrValidation, *frequency)
		}
		next := ComputeNextRun(*frequency, time.Now())
		nextRun = &next
	}

	tag, err := rs.pool.Exec(ctx, `
		UPDATE reports SET frequency = $1, next_run_at = $2, updated_at = NOW() WHERE id = $3
	`, frequency, nextRun, id)
	if err != nil {
		return nil, fmt.Errorf("failed to set report schedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return rs.GetReport(ctx, id)
}

// EnqueueGeneration queues a generation run for a report.
func (rs *ReportService) EnqueueGeneration(ctx context.Context, reportID uuid.UUID) (*models.ReportJob, error) {
	if _, err := rs.GetReport(ctx, reportID); err != nil {
		return nil, err
	}

	job := &models.ReportJob{ReportID: reportID}
	err := rs.pool.QueryRow(ctx, `
		INSERT INTO report_jobs (report_id, status)
		VALUES ($1, 'pending')
		RETURNING id, status, enqueued_at
	`, reportID).Scan(&job.ID, &job.Status, &job.EnqueuedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue report job: %w", err)
	}
	return job, nil
}

// ListJobs returns generation runs for a report, newest first.
func (rs *ReportService) ListJobs(ctx context.Context, reportID uuid.UUID) ([]*models.ReportJob, error) {
	rows, err := rs.pool.Query(ctx, `
		SELECT id, report_id, status, result_path, error_message,
			enqueued_at, started_at, finished_at
		FROM report_jobs
		WHERE report_id = $1
		ORDER BY enqueued_at DESC
	`, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to query report jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.ReportJob
	for rows.Next() {
		var j models.ReportJob
		if err := rows.Scan(&j.ID, &j.ReportID, &j.Status, &j.ResultPath, &j.ErrorMessage,
			&j.EnqueuedAt, &j.StartedAt, &j.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report job: %w", err)
		}
		jobs = append(jobs, &j)
	}
	return jobs, rows.Err()
}

// ComputeNextRun returns the next run time for a frequency relative to from.
// Monthly follows calendar months rather than a fixed 30 days.
func ComputeNextRun(frequency string, from time.Time) time.Time {
	switch frequency {
	case models.FrequencyDaily:
		return from.Add(24 * time.Hour)
	case models.FrequencyWeekly:
		return from.Add(7 * 24 * time.Hour)
	case models.FrequencyMonthly:
		return from.AddDate(0, 1, 0)
	default:
		return from
	}
}

func validFrequency(f string) bool {
	return f == models.FrequencyDaily || f == models.FrequencyWeekly || f == models.FrequencyMonthly
}
