package router

import (
	"ats-go/internal/api/handler"
	"ats-go/internal/api/middleware"
	"ats-go/internal/constants"

	"github.com/cloudwego/hertz/pkg/app/server"
)

// Options 路由注册选项
type Options struct {
	Users           middleware.Authenticator
	AllowQueryToken bool
}

// RegisterRoutes 注册 API 路由
func RegisterRoutes(h *server.Hertz, hd *handler.Handler, opts Options) {
	h.Use(middleware.RequestID())
	h.GET("/health", hd.Health)

	api := h.Group("/api/v1")
	api.GET("/health", hd.Health)

	authed := api.Group("", middleware.Auth(opts.Users, opts.AllowQueryToken)...)
	writers := middleware.RequireRoles(constants.RoleAdmin, constants.RoleHR)
	admins := middleware.RequireRoles(constants.RoleAdmin)

	// 简历导入与申请
	candidates := authed.Group("/candidates")
	candidates.POST("/apply/:job_id", writers, hd.Apply)
	candidates.POST("/bulk-apply/:job_id", writers, hd.BulkApply)
	candidates.GET("/:candidate_id/download-resume", hd.DownloadResume)
	candidates.GET("/application/:application_id/profile", hd.ApplicationProfile)
	candidates.GET("/application/:application_id/insights", hd.ApplicationInsights)
	candidates.PATCH("/application/:application_id/stage", writers, hd.UpdateApplicationStage)
	candidates.GET("/application/:application_id/history", hd.ApplicationHistory)

	jobs := authed.Group("/jobs")
	jobs.POST("", writers, hd.CreateJob)
	jobs.GET("", hd.ListJobs)
	jobs.POST("/generate-jd", writers, hd.GenerateJobDescription)
	jobs.GET("/:job_id", hd.GetJob)
	jobs.GET("/:job_id/applications", hd.JobApplications)
	jobs.GET("/:job_id/applications/export", hd.ExportJobApplications)
	jobs.GET("/:job_id/rediscover", hd.Rediscover)

	skills := authed.Group("/skills")
	skills.POST("", writers, hd.CreateSkill)
	skills.GET("", hd.SearchSkills)

	authed.GET("/workflows/job/:job_id/stages", hd.JobStages)

	authed.POST("/portfolios", writers, hd.CreatePortfolio)
	authed.GET("/portfolios", hd.ListPortfolios)
	authed.GET("/portfolios/:portfolio_id", hd.GetPortfolio)
	authed.PUT("/portfolios/:portfolio_id", writers, hd.UpdatePortfolio)
	authed.POST("/departments", writers, hd.CreateDepartment)
	authed.GET("/departments", hd.ListDepartments)

	authed.GET("/reports/summary", hd.ReportSummary)
	authed.GET("/reports/jobs-by-status", hd.ReportJobsByStatus)

	authed.GET("/users/me", hd.Me)
	authed.GET("/users", admins, hd.ListUsers)
	authed.POST("/users", admins, hd.CreateUser)

	authed.GET("/settings/ai", admins, hd.ListAISettings)
	authed.PUT("/settings/ai/:setting_name", admins, hd.UpdateAISetting)
}
