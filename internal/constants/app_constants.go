package constants

// 申请阶段。初始阶段由匹配分数决定，之后只通过显式的阶段变更修改
const (
	StageApplied     = "Applied"
	StageNotAFit     = "Not a Fit"
	StageShortlisted = "Shortlisted"
	StageHired       = "Hired"

	// StageScoreThreshold 匹配分数达到该值（含）时初始阶段为 Applied
	StageScoreThreshold = 50.0

	// RediscoveryScoreThreshold 人才再发现的入选分数（严格大于）
	RediscoveryScoreThreshold = 60.0
)

// 用户角色
const (
	RoleAdmin       = "Admin"
	RoleHR          = "HR"
	RoleInterviewer = "Interviewer"
)

// 岗位状态
const (
	JobStatusOpen   = "Open"
	JobStatusClosed = "Closed"
)

const (
	// DefaultCandidateName 简历中未提取到姓名时使用
	DefaultCandidateName = "N/A"

	// MacOSMetadataPrefix zip 中 macOS 生成的元数据目录前缀
	MacOSMetadataPrefix = "__MACOSX"
)

// 事件类型与路由键，经由 outbox 发布到 RabbitMQ
const (
	EventApplicationCreated      = "application.created"
	EventApplicationStageChanged = "application.stage_changed"
)

// 请求上下文中的键
const (
	ContextKeyUser      = "ats.user"
	ContextKeyRequestID = "ats.request_id"
	HeaderRequestID     = "X-Request-ID"
)
