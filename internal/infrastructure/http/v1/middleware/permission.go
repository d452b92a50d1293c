package middleware

import (
	"github.com/gin-gonic/gin"

	"hussiny/internal/core/apperror"
	"hussiny/internal/core/appctx"
)

// RequirePermission checks that the authenticated user holds the given
// permission. The "all" permission grants everything.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if appctx.GetUser(ctx) == nil {
			_ = c.Error(apperror.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}

		if !appctx.HasPermission(ctx, permission) {
			_ = c.Error(
				apperror.NewForbidden("insufficient permissions").
					WithDetail("required_permission", permission),
			)
			c.Abort()
			return
		}

		c.Next()
	}
}
