package middleware

import (
	"context"
	"errors"

	"ats-go/internal/constants"
	"ats-go/internal/logger"
	"ats-go/internal/service"
	"ats-go/internal/storage/models"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"
)

// Authenticator 按 API 令牌查找用户，service.UserService 实现了该接口
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

const (
	authHeader     = "Authorization"
	authScheme     = "Bearer"
	queryTokenName = "token"
	tokenCtxKey    = "ats.api_token"
)

// Auth 校验 "Authorization: Bearer <token>"，成功后把用户放入请求上下文。
// allowQueryToken 为 true 时，没有 Authorization 头的请求也可以用 ?token= 传令牌（下载链接）
func Auth(users Authenticator, allowQueryToken bool) []app.HandlerFunc {
	chain := make([]app.HandlerFunc, 0, 2)
	if allowQueryToken {
		chain = append(chain, promoteQueryToken)
	}
	chain = append(chain, keyauth.New(
		keyauth.WithKeyLookUp("header:"+authHeader, authScheme),
		keyauth.WithContextKey(tokenCtxKey),
		keyauth.WithValidator(func(ctx context.Context, c *app.RequestContext, token string) (bool, error) {
			user, err := users.Authenticate(ctx, token)
			if err != nil {
				return false, err
			}
			c.Set(constants.ContextKeyUser, user)
			return true, nil
		}),
		keyauth.WithErrorHandler(func(ctx context.Context, c *app.RequestContext, err error) {
			switch {
			case errors.Is(err, service.ErrInactiveUser):
				c.AbortWithStatusJSON(consts.StatusBadRequest, utils.H{"detail": "Inactive user"})
			case err == nil, errors.Is(err, service.ErrUnauthorized), errors.Is(err, keyauth.ErrMissingOrMalformedAPIKey):
				c.Header("WWW-Authenticate", authScheme)
				c.AbortWithStatusJSON(consts.StatusUnauthorized, utils.H{"detail": "Could not validate credentials"})
			default:
				logger.Error().Err(err).Msg("认证时查询用户失败")
				c.AbortWithStatusJSON(consts.StatusInternalServerError, utils.H{"detail": "internal server error"})
			}
		}),
	))
	return chain
}

// promoteQueryToken 把 ?token= 转成 Authorization 头，已有头时不覆盖
func promoteQueryToken(ctx context.Context, c *app.RequestContext) {
	if len(c.GetHeader(authHeader)) == 0 {
		if token := c.Query(queryTokenName); token != "" {
			c.Request.Header.Set(authHeader, authScheme+" "+token)
		}
	}
	c.Next(ctx)
}

// RequireRoles 只允许指定角色访问
func RequireRoles(roles ...string) app.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(ctx context.Context, c *app.RequestContext) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(consts.StatusUnauthorized, utils.H{"detail": "Could not validate credentials"})
			return
		}
		if _, ok := allowed[user.Role]; !ok {
			c.AbortWithStatusJSON(consts.StatusForbidden, utils.H{"detail": "Permission denied."})
			return
		}
		c.Next(ctx)
	}
}

// CurrentUser 返回认证中间件放入上下文的用户，未认证时为 nil
func CurrentUser(c *app.RequestContext) *models.User {
	v, ok := c.Get(constants.ContextKeyUser)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
