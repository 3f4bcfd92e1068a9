package services

import (
	"context"
	"testing"
	"time"

	"github.com/opsboard/backoffice/src/models"
)

func TestJobQueue_EnqueueClaimComplete(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	rs := NewReportService(pool)
	jw := NewJobWorker(pool, rs, time.Minute)

	report, err := rs.CreateReport(ctx, CreateReportInput{
		Name: uniqueKey("usage_report"), ReportType: "usage",
	})
	if err != nil {
		t.Fatalf("create report failed: %v", err)
	}

	queued, err := rs.EnqueueGeneration(ctx, report.ID)
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if queued.Status != models.JobPending {
		t.Fatalf("job status = %q, want pending", queued.Status)
	}

	claimed, err := jw.ClaimNextJob(ctx)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if claimed == nil {
		t.Fatal("expected a claimable job")
	}
	if claimed.Status != models.JobRunning {
		t.Fatalf("claimed status = %q, want running", claimed.Status)
	}
	if claimed.StartedAt == nil {
		t.Fatal("claim did not record started_at")
	}

	jw.runJob(ctx, claimed)

	jobs, err := rs.ListJobs(ctx, report.ID)
	if err != nil {
		t.Fatalf("list jobs failed: %v", err)
	}
	var found *models.ReportJob
	for _, j := range jobs {
		if j.ID == claimed.ID {
			found = j
		}
	}
	if found == nil {
		t.Fatal("completed job missing from listing")
	}
	if found.Status != models.JobCompleted {
		t.Fatalf("final status = %q, want completed", found.Status)
	}
	if found.ResultPath == nil || *found.ResultPath == "" {
		t.Fatal("completed job has no result path")
	}
	if found.FinishedAt == nil {
		t.Fatal("completed job has no finished_at")
	}
}

func TestEnqueueDueReports(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	rs := NewReportService(pool)
	jw := NewJobWorker(pool, rs, time.Minute)

	freq := models.FrequencyDaily
	report, err := rs.CreateReport(ctx, CreateReportInput{
		Name: uniqueKey("scheduled_report"), ReportType: "billing", Frequency: &freq,
	})
	if err != nil {
		t.Fatalf("create report failed: %v", err)
	}

	// Force the schedule into the past
	if _, err := pool.Exec(ctx,
		`UPDATE reports SET next_run_at = NOW() - INTERVAL '1 hour' WHERE id = $1`,
		report.ID); err != nil {
		t.Fatalf("failed to backdate schedule: %v", err)
	}

	if err := jw.EnqueueDueReports(ctx); err != nil {
		t.Fatalf("enqueue due reports failed: %v", err)
	}

	jobs, err := rs.ListJobs(ctx, report.ID)
	if err != nil {
		t.Fatalf("list jobs failed: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("got %d jobs, want exactly 1", len(jobs))
	}
	if jobs[0].Status != models.JobPending {
		t.Fatalf("job status = %q, want pending", jobs[0].Status)
	}

	// next_run_at must have advanced past now; a second pass enqueues nothing
	refreshed, err := rs.GetReport(ctx, report.ID)
	if err != nil {
		t.Fatalf("fetch report failed: %v", err)
	}
	if refreshed.NextRunAt == nil || !refreshed.NextRunAt.After(time.Now()) {
		t.Fatalf("next_run_at = %v, want a future time", refreshed.NextRunAt)
	}

	if err := jw.EnqueueDueReports(ctx); err != nil {
		t.Fatalf("second enqueue pass failed: %v", err)
	}
	jobs, err = rs.ListJobs(ctx, report.ID)
	if err != nil {
		t.Fatalf("list jobs failed: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("second pass double-enqueued: got %d jobs", len(jobs))
	}
}

func TestClaimNextJob_EmptyQueue(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	jw := NewJobWorker(pool, NewReportService(pool), time.Minute)

	// Drain anything left over from other tests first
	for {
		job, err := jw.ClaimNextJob(ctx)
		if err != nil {
			t.Fatalf("claim failed: %v", err)
		}
		if job == nil {
			break
		}
		jw.failJob(ctx, job, "drained by test")
	}

	job, err := jw.ClaimNextJob(ctx)
	if err != nil {
		t.Fatalf("claim on empty queue errored: %v", err)
	}
	if job != nil {
		t.Fatalf("claim on empty queue returned job %v", job.ID)
	}
}
