package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ats-go/internal/storage/models"
	"ats-go/pkg/utils"

	"gorm.io/gorm"
)

// CreatePortfolioRequest 新建业务组合
type CreatePortfolioRequest struct {
	PortfolioName string `json:"portfolio_name"`
	Description   string `json:"description"`
}

// UpdatePortfolioRequest 只更新请求中出现的字段
type UpdatePortfolioRequest struct {
	PortfolioName *string `json:"portfolio_name"`
	Description   *string `json:"description"`
}

// PortfolioDetail 业务组合及其下属部门
type PortfolioDetail struct {
	models.Portfolio
	Departments []models.Department `json:"departments"`
}

// CreateDepartmentRequest 新建部门
type CreateDepartmentRequest struct {
	DepartmentName string `json:"department_name"`
	PortfolioID    string `json:"portfolio_id"`
}

// OrgService 组织结构：业务组合与部门
type OrgService struct {
	db *gorm.DB
}

func NewOrgService(db *gorm.DB) *OrgService {
	return &OrgService{db: db}
}

func (s *OrgService) CreatePortfolio(ctx context.Context, req CreatePortfolioRequest, actorID string) (*models.Portfolio, error) {
	name := strings.TrimSpace(req.PortfolioName)
	if name == "" {
		return nil, invalid("portfolio_name is required")
	}
	p := models.Portfolio{
		ID:            models.NewID(),
		PortfolioName: name,
		Description:   req.Description,
		CreatedBy:     actorID,
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, fmt.Errorf("创建业务组合失败: %w", err)
	}
	return &p, nil
}

func (s *OrgService) ListPortfolios(ctx context.Context, skip, limit int) ([]models.Portfolio, error) {
	skip, limit = utils.ClampPage(skip, limit, 100, 1000)
	out := []models.Portfolio{}
	if err := s.db.WithContext(ctx).Order("portfolio_name").Offset(skip).Limit(limit).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("查询业务组合失败: %w", err)
	}
	return out, nil
}

// GetPortfolio 返回业务组合及其部门，按部门名称排序
func (s *OrgService) GetPortfolio(ctx context.Context, id string) (*PortfolioDetail, error) {
	db := s.db.WithContext(ctx)
	var out PortfolioDetail
	if err := s.loadPortfolio(db, id, &out.Portfolio); err != nil {
		return nil, err
	}
	out.Departments = []models.Department{}
	if err := db.Where("portfolio_id = ?", id).Order("department_name").Find(&out.Departments).Error; err != nil {
		return nil, fmt.Errorf("查询部门失败: %w", err)
	}
	return &out, nil
}

func (s *OrgService) UpdatePortfolio(ctx context.Context, id string, req UpdatePortfolioRequest, actorID string) (*models.Portfolio, error) {
	db := s.db.WithContext(ctx)
	var p models.Portfolio
	if err := s.loadPortfolio(db, id, &p); err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{"updated_at": now, "updated_by": actorID}
	if req.PortfolioName != nil {
		name := strings.TrimSpace(*req.PortfolioName)
		if name == "" {
			return nil, invalid("portfolio_name cannot be empty")
		}
		updates["portfolio_name"] = name
		p.PortfolioName = name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
		p.Description = *req.Description
	}
	if err := db.Model(&models.Portfolio{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("更新业务组合失败: %w", err)
	}
	p.UpdatedAt = &now
	p.UpdatedBy = actorID
	return &p, nil
}

func (s *OrgService) loadPortfolio(db *gorm.DB, id string, dest *models.Portfolio) error {
	err := db.Where("id = ?", id).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("portfolio")
	}
	if err != nil {
		return fmt.Errorf("查询业务组合失败: %w", err)
	}
	return nil
}

// CreateDepartment 所属业务组合不存在时返回 ErrNotFound
func (s *OrgService) CreateDepartment(ctx context.Context, req CreateDepartmentRequest, actorID string) (*models.Department, error) {
	name := strings.TrimSpace(req.DepartmentName)
	if name == "" {
		return nil, invalid("department_name is required")
	}
	db := s.db.WithContext(ctx)

	var n int64
	if err := db.Model(&models.Portfolio{}).Where("id = ?", req.PortfolioID).Count(&n).Error; err != nil {
		return nil, fmt.Errorf("查询业务组合失败: %w", err)
	}
	if n == 0 {
		return nil, notFound(fmt.Sprintf("portfolio with ID %s", req.PortfolioID))
	}

	d := models.Department{
		ID:             models.NewID(),
		DepartmentName: name,
		PortfolioID:    req.PortfolioID,
		CreatedBy:      actorID,
	}
	if err := db.Create(&d).Error; err != nil {
		return nil, fmt.Errorf("创建部门失败: %w", err)
	}
	return &d, nil
}

func (s *OrgService) ListDepartments(ctx context.Context, skip, limit int) ([]models.Department, error) {
	skip, limit = utils.ClampPage(skip, limit, 100, 1000)
	out := []models.Department{}
	if err := s.db.WithContext(ctx).Order("department_name").Offset(skip).Limit(limit).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("查询部门失败: %w", err)
	}
	return out, nil
}
