package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
	"github.com/xiebiao/bookshelf/pkg/jwt"
	"github.com/xiebiao/bookshelf/pkg/response"
)

const emailKey = "email"

// AuthMiddleware checks Bearer tokens on mutating routes. When auth is
// disabled in config every request passes through untouched.
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	enabled    bool
}

func NewAuthMiddleware(jwtManager *jwt.Manager, enabled bool) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager, enabled: enabled}
}

// RequireAuth aborts with 401 unless the request carries a valid token.
// The token email is stored on the context, see GetEmail.
//
//	books.POST("", auth.RequireAuth(), h.CreateBook)
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.enabled {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.ErrorWithCode(c, apperrors.ErrCodeInvalidToken, "malformed authorization header")
			c.Abort()
			return
		}

		claims, err := m.jwtManager.ParseToken(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(emailKey, claims.Email)
		c.Next()
	}
}

// GetEmail returns the authenticated email, or "" on public routes and
// when auth is disabled.
func GetEmail(c *gin.Context) string {
	if email, exists := c.Get(emailKey); exists {
		if e, ok := email.(string); ok {
			return e
		}
	}
	return ""
}
