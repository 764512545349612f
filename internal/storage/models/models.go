package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// 列类型只使用 varchar/text 等通用类型，保证 mysql、postgres、sqlite 三种驱动都能迁移

// User 系统用户（HR、管理员、面试官）
type User struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserName     string    `gorm:"type:varchar(255)" json:"user_name"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex:idx_users_email;not null" json:"email"`
	Role         string    `gorm:"type:varchar(50);not null" json:"role"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	APITokenHash string    `gorm:"type:varchar(64);uniqueIndex:idx_users_token_hash" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

// Portfolio 业务组合
type Portfolio struct {
	ID            string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	PortfolioName string     `gorm:"type:varchar(255);not null" json:"portfolio_name"`
	Description   string     `gorm:"type:text" json:"description"`
	CreatedAt     time.Time  `json:"created_at"`
	CreatedBy     string     `gorm:"type:varchar(36)" json:"created_by"`
	UpdatedAt     *time.Time `gorm:"autoUpdateTime:false" json:"updated_at,omitempty"`
	UpdatedBy     string     `gorm:"type:varchar(36)" json:"updated_by,omitempty"`
}

func (Portfolio) TableName() string {
	return "portfolios"
}

// Department 部门，隶属于某个 Portfolio
type Department struct {
	ID             string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	DepartmentName string     `gorm:"type:varchar(255);not null" json:"department_name"`
	PortfolioID    string     `gorm:"type:varchar(36);index:idx_departments_portfolio" json:"portfolio_id"`
	CreatedAt      time.Time  `json:"created_at"`
	CreatedBy      string     `gorm:"type:varchar(36)" json:"created_by"`
	UpdatedAt      *time.Time `gorm:"autoUpdateTime:false" json:"updated_at,omitempty"`
	UpdatedBy      string     `gorm:"type:varchar(36)" json:"updated_by,omitempty"`
}

func (Department) TableName() string {
	return "departments"
}

// Skill 技能词表。NameKey 为小写技能名，唯一索引保证大小写不敏感的唯一性
type Skill struct {
	ID            string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	SkillName     string    `gorm:"type:varchar(255);not null" json:"skill_name"`
	NameKey       string    `gorm:"type:varchar(255);uniqueIndex:idx_skills_name_key;not null" json:"-"`
	SkillCategory string    `gorm:"type:varchar(100)" json:"skill_category,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	CreatedBy     string    `gorm:"type:varchar(36)" json:"created_by"`
}

func (Skill) TableName() string {
	return "skills"
}

// Candidate 候选人，以邮箱作为自然键
type Candidate struct {
	ID                     string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	FullName               string     `gorm:"type:varchar(255)" json:"full_name"`
	Email                  string     `gorm:"type:varchar(255);uniqueIndex:idx_candidates_email;not null" json:"email"`
	ResumeSummary          string     `gorm:"type:text" json:"resume_summary"`
	TechnicalSkillsSummary string     `gorm:"type:text" json:"technical_skills_summary"`
	ResumeFilePath         string     `gorm:"type:varchar(1024)" json:"resume_file_path"`
	CreatedAt              time.Time  `json:"created_at"`
	CreatedBy              string     `gorm:"type:varchar(36)" json:"created_by"`
	UpdatedAt              *time.Time `gorm:"autoUpdateTime:false" json:"updated_at,omitempty"`
	UpdatedBy              string     `gorm:"type:varchar(36)" json:"updated_by,omitempty"`
}

func (Candidate) TableName() string {
	return "candidates"
}

// CandidateSkill 候选人与技能的关联，每次重新处理简历时整体替换
type CandidateSkill struct {
	CandidateID string `gorm:"type:varchar(36);primaryKey" json:"candidate_id"`
	SkillID     string `gorm:"type:varchar(36);primaryKey;index:idx_candidate_skills_skill" json:"skill_id"`
	SkillLevel  string `gorm:"type:varchar(50)" json:"skill_level,omitempty"`
	Strengths   string `gorm:"type:text" json:"strengths,omitempty"`
	Gaps        string `gorm:"type:text" json:"gaps,omitempty"`
}

func (CandidateSkill) TableName() string {
	return "candidate_skills"
}

// Job 岗位
type Job struct {
	ID                 string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	JobTitle           string     `gorm:"type:varchar(255);not null" json:"job_title"`
	Description        string     `gorm:"type:text" json:"description"`
	DepartmentID       *string    `gorm:"type:varchar(36)" json:"department_id,omitempty"`
	PortfolioID        *string    `gorm:"type:varchar(36)" json:"portfolio_id,omitempty"`
	Status             string     `gorm:"type:varchar(50);index:idx_jobs_status" json:"status"`
	ExperienceRequired string     `gorm:"type:varchar(100)" json:"experience_required,omitempty"`
	JobType            string     `gorm:"type:varchar(50)" json:"job_type,omitempty"`
	Location           string     `gorm:"type:varchar(255)" json:"location,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	CreatedBy          string     `gorm:"type:varchar(36)" json:"created_by"`
	UpdatedAt          *time.Time `gorm:"autoUpdateTime:false" json:"updated_at,omitempty"`
	UpdatedBy          string     `gorm:"type:varchar(36)" json:"updated_by,omitempty"`

	RequiredSkills  []Skill                  `gorm:"many2many:job_required_skills;joinForeignKey:JobID;joinReferences:SkillID" json:"required_skills"`
	InterviewStages []InterviewStageTemplate `gorm:"foreignKey:JobID" json:"interview_stages"`
}

func (Job) TableName() string {
	return "jobs"
}

// InterviewStageTemplate 岗位自定义的面试阶段
type InterviewStageTemplate struct {
	ID              string `gorm:"type:varchar(36);primaryKey" json:"id"`
	JobID           string `gorm:"type:varchar(36);index:idx_stage_templates_job;not null" json:"job_id"`
	StageName       string `gorm:"type:varchar(255);not null" json:"stage_name"`
	InterviewerInfo string `gorm:"type:varchar(255)" json:"interviewer_info,omitempty"`
	Sequence        int    `gorm:"not null" json:"sequence"`
}

func (InterviewStageTemplate) TableName() string {
	return "interview_stage_templates"
}

// JobApplication 一次 (候选人, 岗位) 申请。同一对可以有多条记录
type JobApplication struct {
	ID           string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	CandidateID  string         `gorm:"type:varchar(36);index:idx_applications_candidate;not null" json:"candidate_id"`
	JobID        string         `gorm:"type:varchar(36);index:idx_applications_job;not null" json:"job_id"`
	MatchScore   float64        `json:"match_score"`
	ScoreDetails datatypes.JSON `json:"score_details"`
	Stage        string         `gorm:"type:varchar(50);index:idx_applications_stage" json:"stage"`
	Notes        string         `gorm:"type:text" json:"notes,omitempty"`
	AppliedAt    time.Time      `gorm:"autoCreateTime" json:"applied_at"`
	CreatedBy    string         `gorm:"type:varchar(36)" json:"created_by"`
	UpdatedAt    *time.Time     `gorm:"autoUpdateTime:false" json:"updated_at,omitempty"`
	UpdatedBy    string         `gorm:"type:varchar(36)" json:"updated_by,omitempty"`
}

func (JobApplication) TableName() string {
	return "job_applications"
}

// ApplicationStageLog 申请阶段变更历史
type ApplicationStageLog struct {
	ID             string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	ApplicationID  string    `gorm:"type:varchar(36);index:idx_stage_log_application;not null" json:"application_id"`
	Status         string    `gorm:"type:varchar(50);not null" json:"status"`
	AssignorUserID string    `gorm:"type:varchar(36);not null" json:"assignor_user_id"`
	Notes          string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func (ApplicationStageLog) TableName() string {
	return "application_stage_logs"
}

// AISetting AI 相关的可调参数，按名称唯一
type AISetting struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	SettingName  string `gorm:"type:varchar(100);uniqueIndex:idx_ai_settings_name;not null" json:"setting_name"`
	SettingValue string `gorm:"type:text;not null" json:"setting_value"`
	Description  string `gorm:"type:text" json:"description"`
}

func (AISetting) TableName() string {
	return "ai_settings"
}

// AllModels 返回需要自动迁移的全部模型
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Portfolio{},
		&Department{},
		&Skill{},
		&Candidate{},
		&CandidateSkill{},
		&Job{},
		&InterviewStageTemplate{},
		&JobApplication{},
		&ApplicationStageLog{},
		&AISetting{},
		&OutboxMessage{},
	}
}

// ScoreMapToJSON 将分项分数序列化为 JSON 列
func ScoreMapToJSON(m map[string]float64) (datatypes.JSON, error) {
	if m == nil {
		m = map[string]float64{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
