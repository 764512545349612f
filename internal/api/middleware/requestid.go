package middleware

import (
	"context"

	"ats-go/internal/constants"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/google/uuid"
)

// RequestID 沿用客户端传入的 X-Request-ID，没有时生成一个，并写回响应头
func RequestID() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		id := string(c.GetHeader(constants.HeaderRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(constants.ContextKeyRequestID, id)
		c.Header(constants.HeaderRequestID, id)
		c.Next(ctx)
	}
}

// GetRequestID 当前请求的 ID
func GetRequestID(c *app.RequestContext) string {
	return c.GetString(constants.ContextKeyRequestID)
}
