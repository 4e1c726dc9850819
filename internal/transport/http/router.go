package httptransport

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kessa99/task-manager-back/internal/domain"
	"github.com/kessa99/task-manager-back/internal/transport/http/handler"
	"github.com/kessa99/task-manager-back/internal/transport/http/middleware"
	"github.com/kessa99/task-manager-back/internal/transport/http/response"

	sloggin "github.com/samber/slog-gin"
)

type RouterConfig struct {
	AllowedOrigins     []string
	RateLimitPerMinute int
	RateLimitBurst     int
}

type Handlers struct {
	Auth       *handler.AuthHandler
	Invitation *handler.InvitationHandler
	Task       *handler.TaskHandler
	Assign     *handler.AssignHandler
	User       *handler.UserHandler
	Health     *handler.HealthHandler
}

func NewRouter(logger *slog.Logger, cfg RouterConfig, authn middleware.Authenticator, h Handlers) *gin.Engine {
	response.UseJSONFieldNames()

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoRoute(response.NoRoute)
	r.NoMethod(response.NoMethod)
	r.Use(response.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	r.GET("/health", h.Health.Check)

	limit := middleware.RateLimit(cfg.RateLimitPerMinute, cfg.RateLimitBurst, logger)
	authenticated := middleware.Authenticate(authn, logger)
	verified := middleware.RequireVerified(logger)
	owner := middleware.RequireRoles(logger, domain.RoleOwner)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", limit, h.Auth.Register)
	authGroup.POST("/login", limit, h.Auth.Login)
	authGroup.POST("/refresh", limit, h.Auth.Refresh)
	authGroup.POST("/logout", h.Auth.Logout)
	authGroup.GET("/me", authenticated, h.Auth.Me)

	// Public invitation routes: the invitee has no account yet.
	invitations := api.Group("/invitations")
	invitations.GET("/check/:token", h.Invitation.Check)
	invitations.POST("/accept", limit, h.Invitation.Accept)

	managed := invitations.Group("", authenticated, owner)
	managed.POST("", h.Invitation.Create)
	managed.GET("", h.Invitation.ListPending)
	managed.GET("/:id", h.Invitation.Get)
	managed.DELETE("/:id", h.Invitation.Cancel)
	managed.POST("/:id/resend", h.Invitation.Resend)

	tasks := api.Group("/tasks", authenticated, verified)
	tasks.GET("", h.Task.List)
	tasks.GET("/my", h.Task.ListMine)
	tasks.GET("/user/:user_id", h.Task.ListForUser)
	tasks.GET("/:id", h.Task.Get)
	tasks.POST("", owner, h.Task.Create)
	tasks.PUT("/:id", owner, h.Task.Update)
	tasks.DELETE("/:id", owner, h.Task.Delete)

	assigns := api.Group("/assignments", authenticated, verified)
	assigns.GET("/my", h.Assign.ListMine)
	assigns.GET("", owner, h.Assign.List)
	assigns.GET("/:id", owner, h.Assign.Get)
	assigns.POST("", owner, h.Assign.Create)
	assigns.DELETE("/:id", owner, h.Assign.Delete)

	users := api.Group("/users", authenticated, owner)
	users.GET("", h.User.List)
	users.GET("/:id", h.User.Get)
	users.POST("/:id/verify", h.User.Verify)

	return r
}
