package handler

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"ats-go/internal/service"
	"ats-go/internal/storage"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// zip 上传允许的 Content-Type
var zipContentTypes = map[string]struct{}{
	"application/zip":              {},
	"application/x-zip-compressed": {},
}

// Apply POST /candidates/apply/:job_id
func (h *Handler) Apply(ctx context.Context, c *app.RequestContext) {
	job, err := h.jobs.Get(ctx, c.Param("job_id"))
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"detail": "file is required"})
		return
	}
	data, err := readUpload(fh)
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}

	result, err := h.processor.ProcessResume(ctx, data, fh.Filename, job, actorID(c))
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusCreated, result)
}

// BulkApply POST /candidates/bulk-apply/:job_id
func (h *Handler) BulkApply(ctx context.Context, c *app.RequestContext) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"detail": "file is required"})
		return
	}
	contentType := strings.ToLower(strings.TrimSpace(strings.Split(fh.Header.Get("Content-Type"), ";")[0]))
	if _, ok := zipContentTypes[contentType]; !ok {
		c.JSON(consts.StatusUnsupportedMediaType, utils.H{"detail": "Invalid file type. Please upload a .zip file."})
		return
	}

	job, err := h.jobs.Get(ctx, c.Param("job_id"))
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	data, err := readUpload(fh)
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}

	report, err := h.processor.ProcessArchive(ctx, data, job, actorID(c))
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, report)
}

// DownloadResume GET /candidates/:candidate_id/download-resume
func (h *Handler) DownloadResume(ctx context.Context, c *app.RequestContext) {
	rc, name, err := h.applications.OpenResume(ctx, c.Param("candidate_id"))
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.SetContentType(storage.ContentTypeFor(name))
	c.SetBodyStream(rc, -1)
}

// ApplicationProfile GET /candidates/application/:application_id/profile
func (h *Handler) ApplicationProfile(ctx context.Context, c *app.RequestContext) {
	profile, err := h.applications.Profile(ctx, c.Param("application_id"))
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, profile)
}

// ApplicationInsights GET /candidates/application/:application_id/insights
func (h *Handler) ApplicationInsights(ctx context.Context, c *app.RequestContext) {
	insights, err := h.applications.Insights(ctx, c.Param("application_id"))
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, insights)
}

// UpdateApplicationStage PATCH /candidates/application/:application_id/stage
func (h *Handler) UpdateApplicationStage(ctx context.Context, c *app.RequestContext) {
	var req service.UpdateStageRequest
	if !h.bindJSON(c, &req) {
		return
	}
	updated, err := h.applications.UpdateStage(ctx, c.Param("application_id"), req, actorID(c))
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, updated)
}

// ApplicationHistory GET /candidates/application/:application_id/history
func (h *Handler) ApplicationHistory(ctx context.Context, c *app.RequestContext) {
	history, err := h.applications.History(ctx, c.Param("application_id"))
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, history)
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("打开上传文件失败: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("读取上传文件失败: %w", err)
	}
	return data, nil
}
