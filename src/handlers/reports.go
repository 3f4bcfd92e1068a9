package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/opsboard/backoffice/src/services"
)

// ReportHandler handles report definitions and generation.
type ReportHandler struct {
	reports *services.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// HandleCreate registers a report definition.
func (rh *ReportHandler) HandleCreate(c *gin.Context) {
	var input services.CreateReportInput
	if err := c.BindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body: name and report_type are required")
		return
	}

	report, err := rh.reports.CreateReport(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "report created", report)
}

// HandleList returns all report definitions.
func (rh *ReportHandler) HandleList(c *gin.Context) {
	reports, err := rh.reports.ListReports(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, reports, len(reports))
}

// HandleGet returns one report definition.
func (rh *ReportHandler) HandleGet(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	report, err := rh.reports.GetReport(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, report)
}

// HandleUpdate updates report metadata.
func (rh *ReportHandler) HandleUpdate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var fields map[string]any
	if err := c.BindJSON(&fields); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	report, err := rh.reports.UpdateReport(c.Request.Context(), id, fields)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, report)
}

type scheduleRequest struct {
	Frequency *string `json:"frequency"`
}

// HandleSetSchedule changes or clears a report's schedule.
func (rh *ReportHandler) HandleSetSchedule(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req scheduleRequest
	if err := c.BindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	report, err := rh.reports.SetSchedule(c.Request.Context(), id, req.Frequency)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, report)
}

// HandleGenerate enqueues a generation job for a report.
func (rh *ReportHandler) HandleGenerate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	job, err := rh.reports.EnqueueGeneration(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "report generation queued", job)
}

// HandleListJobs returns generation runs for a report.
func (rh *ReportHandler) HandleListJobs(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	jobs, err := rh.reports.ListJobs(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, jobs, len(jobs))
}
