package api

import (
	"database/sql"

	"github.com/labstack/echo/v4"

	"famtrack-backend/internal/audit"
	"famtrack-backend/internal/auth"
	"famtrack-backend/internal/config"
	"famtrack-backend/internal/database"
)

var (
	authService    *auth.Service
	auditLogger    *audit.Logger
	userRepo       *database.UserRepo
	sessionRepo    *database.SessionRepo
	attemptRepo    *database.AttemptRepo
	rateLimitRepo  *database.RateLimitRepo
	auditRepo      *database.AuditRepo
	guestTokenRepo *database.GuestTokenRepo
	cfg            config.Config
)

// Deps carries everything the API layer needs
type Deps struct {
	DB       *sql.DB
	Auth     *auth.Service
	AuditLog *audit.Logger
	Cfg      config.Config
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(api *echo.Group, deps Deps) {
	authService = deps.Auth
	auditLogger = deps.AuditLog
	cfg = deps.Cfg

	userRepo = database.NewUserRepo(deps.DB)
	sessionRepo = database.NewSessionRepo(deps.DB)
	attemptRepo = database.NewAttemptRepo(deps.DB)
	rateLimitRepo = database.NewRateLimitRepo(deps.DB)
	auditRepo = database.NewAuditRepo(deps.DB)
	guestTokenRepo = database.NewGuestTokenRepo(deps.DB)

	limiter := authService.RateLimiter()
	apiLimit := limiter.Middleware(auth.EndpointAPI, cfg.RateLimitAPI, cfg.RateLimitAPIWindow)

	// Health check (public)
	api.GET("/health", healthCheck)

	// Auth routes (public - the login rate limit lives inside the facade)
	authGroup := api.Group("/auth")
	authGroup.POST("/login", loginHandler)
	authGroup.POST("/logout", logoutHandler)
	authGroup.POST("/unlock", unlockWithCodeHandler)

	// Protected auth routes
	authProtected := authGroup.Group("")
	authProtected.Use(auth.RequireAuth(authService), apiLimit)
	authProtected.GET("/me", getCurrentUser)
	authProtected.POST("/pin/change", changePinHandler)
	authProtected.POST("/pin/set", setPinHandler, auth.RequireGuardian())

	// User management (guardian only)
	users := api.Group("/users")
	users.Use(auth.RequireAuth(authService), auth.RequireGuardian(), apiLimit)
	users.GET("/children", listChildrenHandler)
	users.POST("/:id/lock", lockUserHandler)
	users.POST("/:id/unlock", unlockUserHandler)

	// Audit log routes (guardian only)
	auditGroup := api.Group("/audit")
	auditGroup.Use(auth.RequireAuth(authService), auth.RequireGuardian(), apiLimit)
	auditGroup.GET("", listAuditHandler)
	auditGroup.GET("/actions", getAuditActionsHandler)

	// Guest token management (guardian only)
	guestTokens := api.Group("/guest-tokens")
	guestTokens.Use(auth.RequireAuth(authService), auth.RequireGuardian(), apiLimit)
	guestTokens.POST("", createGuestTokenHandler)
	guestTokens.GET("", listGuestTokensHandler)
	guestTokens.DELETE("/:id", revokeGuestTokenHandler)

	// Guest access (guest token, read-only)
	guest := api.Group("/guest")
	guest.Use(RequireGuestToken())
	guest.GET("/me", guestInfoHandler)

	// Maintenance sweep (shared-secret guard, meant for a cron caller)
	api.POST("/internal/cleanup", cleanupHandler)
}
