package handler

import (
	"context"
	"errors"
	"strconv"

	"ats-go/internal/ai"
	"ats-go/internal/api/middleware"
	"ats-go/internal/logger"
	"ats-go/internal/parser"
	"ats-go/internal/processor"
	"ats-go/internal/service"
	"ats-go/internal/tracing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Handler 所有 HTTP 接口的依赖
type Handler struct {
	processor    *processor.ResumeProcessor
	jobs         *service.JobService
	skills       *service.SkillService
	applications *service.ApplicationService
	rediscovery  *service.RediscoveryService
	reports      *service.ReportService
	org          *service.OrgService
	users        *service.UserService
	settings     *service.SettingsService
	log          zerolog.Logger
}

// Deps 构造 Handler 所需的服务
type Deps struct {
	Processor    *processor.ResumeProcessor
	Jobs         *service.JobService
	Skills       *service.SkillService
	Applications *service.ApplicationService
	Rediscovery  *service.RediscoveryService
	Reports      *service.ReportService
	Org          *service.OrgService
	Users        *service.UserService
	Settings     *service.SettingsService
}

// New 创建 Handler
func New(d Deps) *Handler {
	return &Handler{
		processor:    d.Processor,
		jobs:         d.Jobs,
		skills:       d.Skills,
		applications: d.Applications,
		rediscovery:  d.Rediscovery,
		reports:      d.Reports,
		org:          d.Org,
		users:        d.Users,
		settings:     d.Settings,
		log:          logger.Named("api"),
	}
}

// statusFor 把领域错误映射为 HTTP 状态码
func statusFor(err error) int {
	var extractErr *parser.ExtractionError
	switch {
	case errors.Is(err, service.ErrNotFound):
		return consts.StatusNotFound
	case errors.Is(err, ai.ErrAIServiceUnavailable):
		return consts.StatusServiceUnavailable
	case errors.As(err, &extractErr),
		errors.Is(err, parser.ErrUnsupportedFileType),
		errors.Is(err, parser.ErrNoExtractableText),
		errors.Is(err, processor.ErrMissingEmail),
		errors.Is(err, processor.ErrCorruptArchive),
		errors.Is(err, ai.ErrAIResponseInvalid),
		errors.Is(err, service.ErrInvalidInput):
		return consts.StatusBadRequest
	case errors.Is(err, service.ErrInactiveUser):
		return consts.StatusBadRequest
	default:
		return consts.StatusInternalServerError
	}
}

// writeError 按错误类型写回 {"detail": ...}，并把错误记录到当前请求的 span 上；5xx 不向客户端暴露内部错误
func (h *Handler) writeError(ctx context.Context, c *app.RequestContext, err error) {
	status := statusFor(err)
	tracing.RecordHTTPError(trace.SpanFromContext(ctx), err, status)

	detail := err.Error()
	if status == consts.StatusInternalServerError {
		h.log.Error().
			Err(err).
			Str("path", string(c.Path())).
			Str("request_id", middleware.GetRequestID(c)).
			Msg("请求处理失败")
		detail = "internal server error"
	}
	c.JSON(status, utils.H{"detail": detail})
}

func actorID(c *app.RequestContext) string {
	if user := middleware.CurrentUser(c); user != nil {
		return user.ID
	}
	return ""
}

// pagination 解析 skip/limit，非法值按 0 处理，由服务层套用默认值
func pagination(c *app.RequestContext) (int, int) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	return skip, limit
}

// bindJSON 解析请求体，失败时写回 400
func (h *Handler) bindJSON(c *app.RequestContext, dest interface{}) bool {
	if err := c.BindJSON(dest); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"detail": "invalid request body: " + err.Error()})
		return false
	}
	return true
}

// Health 健康检查
func (h *Handler) Health(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{"status": "ok"})
}
