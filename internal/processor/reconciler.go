package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"ats-go/internal/ai"
	"ats-go/internal/constants"
	"ats-go/internal/logger"
	"ats-go/internal/storage/models"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// Reconciler 把 AI 分析结果合并到候选人与技能记录中。所有写入都在调用方传入的事务里进行
type Reconciler struct {
	log zerolog.Logger
}

// NewReconciler 创建候选人合并器
func NewReconciler() *Reconciler {
	return &Reconciler{log: logger.Named("reconciler")}
}

// Reconcile 按邮箱新建或更新候选人，并在提取到技能时整体替换其技能关联
func (r *Reconciler) Reconcile(ctx context.Context, tx *gorm.DB, analysis *ai.AnalysisResult, filePath, actorID string) (*models.Candidate, error) {
	email := strings.TrimSpace(analysis.ExtractedEmail)
	if email == "" {
		return nil, ErrMissingEmail
	}

	ctx, span := tracer.Start(ctx, "Reconciler.Reconcile")
	defer span.End()
	tx = tx.WithContext(ctx)

	var candidate models.Candidate
	err := tx.Where("email = ?", email).First(&candidate).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		name := strings.TrimSpace(analysis.ExtractedName)
		if name == "" {
			name = constants.DefaultCandidateName
		}
		candidate = models.Candidate{
			ID:                     models.NewID(),
			FullName:               name,
			Email:                  email,
			ResumeSummary:          analysis.ResumeSummary,
			TechnicalSkillsSummary: analysis.TechnicalSkillsSummary,
			ResumeFilePath:         filePath,
			CreatedBy:              actorID,
		}
		if err := tx.Create(&candidate).Error; err != nil {
			return nil, fmt.Errorf("创建候选人失败: %w", err)
		}
		span.SetAttributes(attribute.Bool("candidate.created", true))
		r.log.Debug().Str("candidate_id", candidate.ID).Msg("新建候选人")

	case err != nil:
		return nil, fmt.Errorf("查询候选人失败: %w", err)

	default:
		now := time.Now()
		updates := map[string]interface{}{
			"resume_summary":           analysis.ResumeSummary,
			"technical_skills_summary": analysis.TechnicalSkillsSummary,
			"resume_file_path":         filePath,
			"updated_by":               actorID,
			"updated_at":               now,
		}
		if err := tx.Model(&models.Candidate{}).Where("id = ?", candidate.ID).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("更新候选人失败: %w", err)
		}
		candidate.ResumeSummary = analysis.ResumeSummary
		candidate.TechnicalSkillsSummary = analysis.TechnicalSkillsSummary
		candidate.ResumeFilePath = filePath
		candidate.UpdatedBy = actorID
		candidate.UpdatedAt = &now
		span.SetAttributes(attribute.Bool("candidate.created", false))
		r.log.Debug().Str("candidate_id", candidate.ID).Msg("更新已有候选人")
	}

	if err := r.relinkSkills(tx, candidate.ID, analysis.ExtractedSkills, actorID); err != nil {
		return nil, err
	}
	return &candidate, nil
}

// relinkSkills 规范化后的技能列表为空时保留原有关联
func (r *Reconciler) relinkSkills(tx *gorm.DB, candidateID string, rawSkills []string, actorID string) error {
	names := NormalizeSkills(rawSkills)
	if len(names) == 0 {
		r.log.Debug().Str("candidate_id", candidateID).Msg("未提取到技能，保留原有技能关联")
		return nil
	}

	if err := tx.Where("candidate_id = ?", candidateID).Delete(&models.CandidateSkill{}).Error; err != nil {
		return fmt.Errorf("删除候选人技能关联失败: %w", err)
	}

	linked := make(map[string]struct{}, len(names))
	for _, name := range names {
		skill, err := FindOrCreateSkill(tx, name, actorID)
		if err != nil {
			return err
		}
		if _, ok := linked[skill.ID]; ok {
			continue
		}
		linked[skill.ID] = struct{}{}

		link := models.CandidateSkill{CandidateID: candidateID, SkillID: skill.ID}
		if err := tx.Create(&link).Error; err != nil {
			return fmt.Errorf("创建候选人技能关联失败: %w", err)
		}
	}
	return nil
}

// FindOrCreateSkill 按小写名称查找技能，不存在时在保存点中创建。
// 创建失败（通常是并发插入触发唯一约束）时重新按名称读取
func FindOrCreateSkill(tx *gorm.DB, name, actorID string) (*models.Skill, error) {
	key := strings.ToLower(name)

	var skill models.Skill
	err := tx.Where("name_key = ?", key).First(&skill).Error
	if err == nil {
		return &skill, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w %q: %v", ErrSkillReconcile, name, err)
	}

	skill = models.Skill{
		ID:        models.NewID(),
		SkillName: name,
		NameKey:   key,
		CreatedBy: actorID,
	}
	createErr := tx.Transaction(func(sp *gorm.DB) error {
		return sp.Create(&skill).Error
	})
	if createErr == nil {
		return &skill, nil
	}

	var existing models.Skill
	if err := tx.Where("name_key = ?", key).First(&existing).Error; err == nil {
		return &existing, nil
	}
	return nil, fmt.Errorf("%w %q: %v", ErrSkillReconcile, name, createErr)
}

// NormalizeSkills 去掉首尾空白并转为标题格式，丢弃空项，按首次出现的顺序去重
func NormalizeSkills(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		s = titleCase(s)
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// titleCase 每个连续字母串的首字母大写、其余小写，例如 "node.js" -> "Node.Js"
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToTitle(r))
			}
			prevLetter = true
			continue
		}
		prevLetter = false
		b.WriteRune(r)
	}
	return b.String()
}
