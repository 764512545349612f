package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ats-go/internal/storage/models"

	"gorm.io/gorm"
)

// CreateSkillRequest 新建技能
type CreateSkillRequest struct {
	SkillName     string `json:"skill_name"`
	SkillCategory string `json:"skill_category"`
}

// SkillService 技能词表
type SkillService struct {
	db *gorm.DB
}

// NewSkillService 创建技能服务
func NewSkillService(db *gorm.DB) *SkillService {
	return &SkillService{db: db}
}

// Create 新建技能。名称在忽略大小写后已存在时返回 ErrInvalidInput
func (s *SkillService) Create(ctx context.Context, req CreateSkillRequest, actorID string) (*models.Skill, error) {
	name := strings.TrimSpace(req.SkillName)
	if name == "" {
		return nil, invalid("skill_name is required")
	}
	key := strings.ToLower(name)
	db := s.db.WithContext(ctx)

	var existing models.Skill
	err := db.Where("name_key = ?", key).First(&existing).Error
	if err == nil {
		return nil, invalid("skill '%s' already exists", name)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("查询技能失败: %w", err)
	}

	skill := models.Skill{
		ID:            models.NewID(),
		SkillName:     name,
		NameKey:       key,
		SkillCategory: req.SkillCategory,
		CreatedBy:     actorID,
	}
	if err := db.Create(&skill).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, invalid("skill '%s' already exists", name)
		}
		return nil, fmt.Errorf("创建技能失败: %w", err)
	}
	return &skill, nil
}

// likeEscaper 以 '!' 为转义字符转义 LIKE 通配符
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// Search 按名称做忽略大小写的子串匹配，q 中的 % 与 _ 按字面匹配。q 为空时返回全部，按名称排序
func (s *SkillService) Search(ctx context.Context, q string) ([]models.Skill, error) {
	query := s.db.WithContext(ctx).Model(&models.Skill{})
	if q = strings.TrimSpace(q); q != "" {
		query = query.Where("name_key LIKE ? ESCAPE '!'", "%"+likeEscaper.Replace(strings.ToLower(q))+"%")
	}
	skills := []models.Skill{}
	if err := query.Order("skill_name").Find(&skills).Error; err != nil {
		return nil, fmt.Errorf("查询技能失败: %w", err)
	}
	return skills, nil
}

