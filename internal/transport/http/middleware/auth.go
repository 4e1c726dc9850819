package middleware

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kessa99/task-manager-back/internal/domain"
	ctxlog "github.com/kessa99/task-manager-back/internal/log"
	"github.com/kessa99/task-manager-back/internal/transport/http/response"
)

const userKey = "user"

// Authenticator resolves a bearer access token to the stored user.
type Authenticator interface {
	CurrentUser(ctx context.Context, rawToken string) (*domain.User, error)
}

// Authenticate validates the Bearer access token and sets the current user
// in the gin context. Role and verification checks are separate middleware.
func Authenticate(a Authenticator, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Error(c, logger, domain.ErrUnauthenticated)
			return
		}

		user, err := a.CurrentUser(c.Request.Context(), raw)
		if err != nil {
			response.Error(c, logger, err)
			return
		}

		c.Set(userKey, user)
		c.Request = c.Request.WithContext(ctxlog.WithUserID(c.Request.Context(), user.ID))
		c.Next()
	}
}

// RequireVerified rejects accounts that have not been verified yet.
func RequireVerified(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := domain.RequireVerified(CurrentUser(c)); err != nil {
			response.Error(c, logger, err)
			return
		}
		c.Next()
	}
}

// RequireRoles implies RequireVerified.
func RequireRoles(logger *slog.Logger, roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := domain.RequireRole(CurrentUser(c), roles...); err != nil {
			response.Error(c, logger, err)
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user set by Authenticate, or nil.
func CurrentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}

func bearerToken(header string) (string, bool) {
	scheme, raw, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}
