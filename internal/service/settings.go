package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ats-go/internal/config"
	"ats-go/internal/storage/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsService AI 参数表
type SettingsService struct {
	db *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

// DefaultAISettings 由启动配置生成的初始参数
func DefaultAISettings(cfg config.AIConfig) []models.AISetting {
	return []models.AISetting{
		{SettingName: "provider", SettingValue: cfg.Provider, Description: "AI provider (gemini | openai_compatible)"},
		{SettingName: "model", SettingValue: cfg.Model, Description: "Model used for resume analysis and JD generation"},
		{SettingName: "temperature", SettingValue: fmt.Sprintf("%g", cfg.Temperature), Description: "Sampling temperature"},
		{SettingName: "qpm", SettingValue: fmt.Sprintf("%d", cfg.QPM), Description: "Requests per minute, 0 means unlimited"},
	}
}

// EnsureDefaults 插入缺失的参数，已有的值保持不变
func (s *SettingsService) EnsureDefaults(ctx context.Context, defaults []models.AISetting) error {
	if len(defaults) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "setting_name"}}, DoNothing: true}).
		Create(&defaults).Error
	if err != nil {
		return fmt.Errorf("写入默认AI参数失败: %w", err)
	}
	return nil
}

func (s *SettingsService) List(ctx context.Context) ([]models.AISetting, error) {
	out := []models.AISetting{}
	if err := s.db.WithContext(ctx).Order("setting_name").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("查询AI参数失败: %w", err)
	}
	return out, nil
}

// Update 只允许修改已存在的参数，不存在时返回 ErrNotFound
func (s *SettingsService) Update(ctx context.Context, name, value string) (*models.AISetting, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, invalid("setting_value is required")
	}
	db := s.db.WithContext(ctx)

	var setting models.AISetting
	err := db.Where("setting_name = ?", name).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("setting")
	}
	if err != nil {
		return nil, fmt.Errorf("查询AI参数失败: %w", err)
	}
	if err := db.Model(&setting).Update("setting_value", value).Error; err != nil {
		return nil, fmt.Errorf("更新AI参数失败: %w", err)
	}
	setting.SettingValue = value
	return &setting, nil
}
