package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"ats-go/internal/constants"
	"ats-go/internal/storage/models"
	"ats-go/pkg/utils"

	"gorm.io/gorm"
)

// tokenBytes API 令牌的随机字节数
const tokenBytes = 32

// UserService 用户与 API 令牌
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// HashToken 数据库中只保存令牌的 SHA-256
func HashToken(token string) string {
	return utils.SHA256Hex([]byte(token))
}

// Create 创建用户并返回一次性明文令牌
func (s *UserService) Create(ctx context.Context, email, name, role string) (*models.User, string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, "", invalid("email is required")
	}
	switch role {
	case constants.RoleAdmin, constants.RoleHR, constants.RoleInterviewer:
	default:
		return nil, "", invalid("unknown role %q", role)
	}

	token, err := newToken()
	if err != nil {
		return nil, "", err
	}
	user := models.User{
		ID:           models.NewID(),
		UserName:     name,
		Email:        email,
		Role:         role,
		IsActive:     true,
		APITokenHash: HashToken(token),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", invalid("email already registered")
		}
		return nil, "", fmt.Errorf("创建用户失败: %w", err)
	}
	return &user, token, nil
}

// List 按创建时间返回全部用户
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	out := []models.User{}
	if err := s.db.WithContext(ctx).Order("created_at").Order("email").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	return out, nil
}

// Authenticate 按令牌哈希查找用户；停用用户返回 ErrInactiveUser
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	var user models.User
	err := s.db.WithContext(ctx).Where("api_token_hash = ?", HashToken(token)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	return &user, nil
}

func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("生成令牌失败: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
