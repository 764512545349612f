package handler

import (
	"context"

	"ats-go/internal/api/middleware"
	"ats-go/internal/service"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// CreateSkill POST /skills
func (h *Handler) CreateSkill(ctx context.Context, c *app.RequestContext) {
	var req service.CreateSkillRequest
	if !h.bindJSON(c, &req) {
		return
	}
	skill, err := h.skills.Create(ctx, req, actorID(c))
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusCreated, skill)
}

// SearchSkills GET /skills?q=
func (h *Handler) SearchSkills(ctx context.Context, c *app.RequestContext) {
	skills, err := h.skills.Search(ctx, c.Query("q"))
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, skills)
}

func (h *Handler) CreatePortfolio(ctx context.Context, c *app.RequestContext) {
	var req service.CreatePortfolioRequest
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.org.CreatePortfolio(ctx, req, actorID(c))
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusCreated, p)
}

func (h *Handler) ListPortfolios(ctx context.Context, c *app.RequestContext) {
	skip, limit := pagination(c)
	out, err := h.org.ListPortfolios(ctx, skip, limit)
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, out)
}

// GetPortfolio GET /portfolios/:portfolio_id
func (h *Handler) GetPortfolio(ctx context.Context, c *app.RequestContext) {
	p, err := h.org.GetPortfolio(ctx, c.Param("portfolio_id"))
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, p)
}

func (h *Handler) UpdatePortfolio(ctx context.Context, c *app.RequestContext) {
	var req service.UpdatePortfolioRequest
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.org.UpdatePortfolio(ctx, c.Param("portfolio_id"), req, actorID(c))
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, p)
}

func (h *Handler) CreateDepartment(ctx context.Context, c *app.RequestContext) {
	var req service.CreateDepartmentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	d, err := h.org.CreateDepartment(ctx, req, actorID(c))
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusCreated, d)
}

func (h *Handler) ListDepartments(ctx context.Context, c *app.RequestContext) {
	skip, limit := pagination(c)
	out, err := h.org.ListDepartments(ctx, skip, limit)
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, out)
}

// ReportSummary GET /reports/summary
func (h *Handler) ReportSummary(ctx context.Context, c *app.RequestContext) {
	stats, err := h.reports.Summary(ctx)
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, stats)
}

// ReportJobsByStatus GET /reports/jobs-by-status
func (h *Handler) ReportJobsByStatus(ctx context.Context, c *app.RequestContext) {
	rows, err := h.reports.JobsByStatus(ctx)
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, rows)
}

// Me GET /users/me
func (h *Handler) Me(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, middleware.CurrentUser(c))
}
