package storage

import "time"

// ApplicationCreatedMessage 新申请创建后发布的事件
type ApplicationCreatedMessage struct {
	ApplicationID string    `json:"application_id"`
	CandidateID   string    `json:"candidate_id"`
	JobID         string    `json:"job_id"`
	MatchScore    float64   `json:"match_score"`
	Stage         string    `json:"stage"`
	CreatedBy     string    `json:"created_by"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// ApplicationStageChangedMessage 申请阶段变更事件，通知服务据此给候选人发邮件
type ApplicationStageChangedMessage struct {
	ApplicationID  string    `json:"application_id"`
	CandidateID    string    `json:"candidate_id"`
	JobID          string    `json:"job_id"`
	PreviousStage  string    `json:"previous_stage"`
	Stage          string    `json:"stage"`
	Notes          string    `json:"notes,omitempty"`
	AssignorUserID string    `json:"assignor_user_id"`
	OccurredAt     time.Time `json:"occurred_at"`
}
