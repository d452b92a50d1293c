package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"hussiny/internal/core/apperror"
	"hussiny/internal/core/appctx"
	"hussiny/internal/domain/auth"
)

// TokenParser validates raw bearer tokens.
type TokenParser interface {
	ParseToken(token string) (*auth.Claims, error)
}

// Auth validates the bearer token and loads the user into the request
// context.
func Auth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			_ = c.Error(apperror.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			_ = c.Error(apperror.NewUnauthorized("invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := parser.ParseToken(token)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		user := &appctx.UserContext{
			UserID:      claims.UserID,
			Email:       claims.Email,
			Name:        claims.Name,
			Role:        claims.Role,
			Permissions: claims.Permissions,
		}
		ctx := appctx.WithUser(c.Request.Context(), user)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
