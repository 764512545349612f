package constants

// Redis Key 格式常量
// 使用统一的命名规范: {prefix}:{module}:{entity}:{unique_id}，prefix 来自配置
const (
	// JobModulePrefix 岗位模块
	JobModulePrefix = "job"
	// ApplicationModulePrefix 申请模块
	ApplicationModulePrefix = "application"

	// EntityGeneratedJD AI 生成的岗位描述
	EntityGeneratedJD = "generated_jd"
	// EntityInsights AI 面试洞察
	EntityInsights = "insights"

	// KeyGeneratedJD AI 生成 JD 缓存 (STRING)
	// 格式: {prefix}:job:generated_jd:{sha256(title|skills|experience)}
	KeyGeneratedJD = JobModulePrefix + ":" + EntityGeneratedJD + ":%s"

	// KeyInsights 候选人洞察缓存 (STRING, JSON)
	// 格式: {prefix}:application:insights:{sha256(summary|jd)}
	KeyInsights = ApplicationModulePrefix + ":" + EntityInsights + ":%s"
)
