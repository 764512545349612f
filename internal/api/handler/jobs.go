package handler

import (
	"context"
	"fmt"
	"time"

	"ats-go/internal/export"
	"ats-go/internal/service"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// CreateJob POST /jobs
func (h *Handler) CreateJob(ctx context.Context, c *app.RequestContext) {
	var req service.CreateJobRequest
	if !h.bindJSON(c, &req) {
		return
	}
	job, err := h.jobs.Create(ctx, req, actorID(c))
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusCreated, job)
}

// ListJobs GET /jobs?skip=&limit=
func (h *Handler) ListJobs(ctx context.Context, c *app.RequestContext) {
	skip, limit := pagination(c)
	jobs, err := h.jobs.List(ctx, skip, limit)
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, jobs)
}

// GetJob GET /jobs/:job_id
func (h *Handler) GetJob(ctx context.Context, c *app.RequestContext) {
	job, err := h.jobs.Get(ctx, c.Param("job_id"))
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, job)
}

// JobApplications GET /jobs/:job_id/applications?stage=
func (h *Handler) JobApplications(ctx context.Context, c *app.RequestContext) {
	apps, err := h.jobs.Applications(ctx, c.Param("job_id"), c.Query("stage"))
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, apps)
}

// ExportJobApplications GET /jobs/:job_id/applications/export
func (h *Handler) ExportJobApplications(ctx context.Context, c *app.RequestContext) {
	job, err := h.jobs.Get(ctx, c.Param("job_id"))
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	rows, err := h.jobs.ApplicationRows(ctx, job.ID)
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	data, err := export.ApplicationsReport(job, rows)
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(job, time.Now())))
	c.Data(consts.StatusOK, export.ContentType, data)
}

// GenerateJobDescription POST /jobs/generate-jd
func (h *Handler) GenerateJobDescription(ctx context.Context, c *app.RequestContext) {
	var req service.GenerateJDRequest
	if !h.bindJSON(c, &req) {
		return
	}
	jd, err := h.jobs.GenerateJobDescription(ctx, req)
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, utils.H{"job_description": jd})
}

// Rediscover GET /jobs/:job_id/rediscover
func (h *Handler) Rediscover(ctx context.Context, c *app.RequestContext) {
	result, err := h.rediscovery.Rediscover(ctx, c.Param("job_id"))
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, result)
}

// JobStages GET /workflows/job/:job_id/stages
func (h *Handler) JobStages(ctx context.Context, c *app.RequestContext) {
	stages, err := h.jobs.StageTemplates(ctx, c.Param("job_id"))
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, stages)
}
