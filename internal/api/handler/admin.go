package handler

import (
	"context"

	"ats-go/internal/storage/models"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// CreateUserRequest 新建用户
type CreateUserRequest struct {
	Email    string `json:"email"`
	UserName string `json:"user_name"`
	Role     string `json:"role"`
}

// CreateUserResponse 明文令牌只在创建时返回一次
type CreateUserResponse struct {
	*models.User
	APIToken string `json:"api_token"`
}

// UpdateSettingRequest 修改 AI 参数
type UpdateSettingRequest struct {
	SettingValue string `json:"setting_value"`
}

// CreateUser POST /users
func (h *Handler) CreateUser(ctx context.Context, c *app.RequestContext) {
	var req CreateUserRequest
	if !h.bindJSON(c, &req) {
		return
	}
	user, token, err := h.users.Create(ctx, req.Email, req.UserName, req.Role)
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	h.log.Info().Str("user_id", user.ID).Str("role", user.Role).Str("actor", actorID(c)).Msg("新建用户")
	c.JSON(consts.StatusCreated, CreateUserResponse{User: user, APIToken: token})
}

func (h *Handler) ListUsers(ctx context.Context, c *app.RequestContext) {
	users, err := h.users.List(ctx)
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, users)
}

// ListAISettings GET /settings/ai
func (h *Handler) ListAISettings(ctx context.Context, c *app.RequestContext) {
	settings, err := h.settings.List(ctx)
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, settings)
}

// UpdateAISetting PUT /settings/ai/:setting_name
func (h *Handler) UpdateAISetting(ctx context.Context, c *app.RequestContext) {
	var req UpdateSettingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	setting, err := h.settings.Update(ctx, c.Param("setting_name"), req.SettingValue)
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	h.log.Info().Str("setting", setting.SettingName).Str("actor", actorID(c)).Msg("更新AI参数")
	c.JSON(consts.StatusOK, setting)
}
