package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/opsboard/backoffice/src/logging"
	"github.com/opsboard/backoffice/src/metrics"
	"github.com/opsboard/backoffice/src/models"
	"github.com/rs/zerolog"
)

// JobWorker drains the report_jobs queue and enqueues due scheduled reports.
type JobWorker struct {
	pool     *pgxpool.Pool
	reports  *ReportService
	interval time.Duration
	logger   zerolog.Logger
	done     chan bool
}

// NewJobWorker creates a new job worker polling at the given interval.
func NewJobWorker(pool *pgxpool.Pool, reports *ReportService, interval time.Duration) *JobWorker {
	return &JobWorker{
		pool:     pool,
		reports:  reports,
		interval: interval,
		logger:   logging.NewLogger("job-worker"),
		done:     make(chan bool),
	}
}

// Start starts the worker loop.
func (jw *JobWorker) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(jw.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				jw.logger.Info().Msg("Job worker stopped")
				return
			case <-jw.done:
				jw.logger.Info().Msg("Job worker stopped")
				return
			case <-ticker.C:
				jw.tick(ctx)
			}
		}
	}()

	jw.logger.Info().Dur("interval", jw.interval).Msg("Job worker started")
}

// Stop stops the worker loop.
func (jw *JobWorker) Stop() {
	jw.done <- true
}

// tick runs one poll cycle: enqueue due scheduled reports, then drain
// pending jobs until the queue is empty.
func (jw *JobWorker) tick(ctx context.Context) {
	if err := jw.EnqueueDueReports(ctx); err != nil {
		jw.logger.Error().Err(err).Msg("Failed to enqueue due reports")
	}

	for {
		job, err := jw.ClaimNextJob(ctx)
		if err != nil {
			jw.logger.Error().Err(err).Msg("Failed to claim report job")
			return
		}
		if job == nil {
			return
		}
		jw.runJob(ctx, job)
	}
}

// EnqueueDueReports queues a generation run for every active scheduled report
// whose next_run_at has passed, and advances next_run_at.
func (jw *JobWorker) EnqueueDueReports(ctx context.Context) error {
	rows, err := jw.pool.Query(ctx, `
		SELECT id, frequency FROM reports
		WHERE is_active = true AND frequency IS NOT NULL AND next_run_at <= NOW()
	`)
	if err != nil {
		return fmt.Errorf("failed to query due reports: %w", err)
	}
	defer rows.Close()

	type due struct {
		id        uuid.UUID
		frequency string
	}
	var dues []due
	for rows.Next() {
		var d due
		if err := rows.Scan(&d.id, &d.frequency); err != nil {
			return fmt.Errorf("failed to scan due report: %w", err)
		}
		dues = append(dues, d)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, d := range dues {
		next := ComputeNextRun(d.frequency, time.Now())
		_, err := jw.pool.Exec(ctx, `
			WITH bumped AS (
				UPDATE reports SET next_run_at = $1, updated_at = NOW()
				WHERE id = $2 AND next_run_at <= NOW()
				RETURNING id
			)
			INSERT INTO report_jobs (report_id, status)
			SELECT id, 'pending' FROM bumped
		`, next, d.id)
		if err != nil {
			return fmt.Errorf("failed to enqueue scheduled report: %w", err)
		}
	}
	return nil
}

// ClaimNextJob atomically claims the oldest pending job, moving it to running.
// Returns nil when the queue is empty. SKIP LOCKED keeps concurrent workers
// from claiming the same row.
func (jw *JobWorker) ClaimNextJob(ctx context.Context) (*models.ReportJob, error) {
	var job models.ReportJob
	err := jw.pool.QueryRow(ctx, `
		UPDATE report_jobs
		SET status = 'running', started_at = NOW()
		WHERE id = (
			SELECT id FROM report_jobs
			WHERE status = 'pending'
			ORDER BY enqueued_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, report_id, status, enqueued_at, started_at
	`).Scan(&job.ID, &job.ReportID, &job.Status, &job.EnqueuedAt, &job.StartedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to claim report job: %w", err)
	}
	return &job, nil
}

// runJob generates the report for a claimed job and records the outcome.
func (jw *JobWorker) runJob(ctx context.Context, job *models.ReportJob) {
	report, err := jw.reports.GetReport(ctx, job.ReportID)
	if err != nil {
		jw.failJob(ctx, job, fmt.Sprintf("report lookup failed: %v", err))
		return
	}

	resultPath := fmt.Sprintf("reports/%s/%s-%d.json",
		report.ReportType, report.ID, time.Now().Unix())

	_, err = jw.pool.Exec(ctx, `
		UPDATE report_jobs
		SET status = 'completed', result_path = $1, finished_at = NOW()
		WHERE id = $2
	`, resultPath, job.ID)
	if err != nil {
		jw.logger.Error().Err(err).Str("job_id", job.ID.String()).Msg("Failed to complete report job")
		return
	}

	metrics.ReportJobsProcessed.WithLabelValues(models.JobCompleted).Inc()
	jw.logger.Info().
		Str("job_id", job.ID.String()).
		Str("report", report.Name).
		Str("result_path", resultPath).
		Msg("Report job completed")
}

// failJob marks a claimed job failed with an error message.
func (jw *JobWorker) failJob(ctx context.Context, job *models.ReportJob, msg string) {
	_, err := jw.pool.Exec(ctx, `
		UPDATE report_jobs
		SET status = 'failed', error_message = $1, finished_at = NOW()
		WHERE id = $2
	`, msg, job.ID)
	if err != nil {
		jw.logger.Error().Err(err).Str("job_id", job.ID.String()).Msg("Failed to mark report job failed")
		return
	}
	metrics.ReportJobsProcessed.WithLabelValues(models.JobFailed).Inc()
	jw.logger.Warn().Str("job_id", job.ID.String()).Str("error", msg).Msg("Report job failed")
}
