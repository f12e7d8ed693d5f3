package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"famtrack-backend/internal/api"
	"famtrack-backend/internal/audit"
	"famtrack-backend/internal/auth"
	"famtrack-backend/internal/config"
	"famtrack-backend/internal/database"
	"famtrack-backend/internal/models"
)

func main() {
	// Load .env if present; real environment wins
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	cfg := config.Load()

	dbPath := cfg.DBPath
	if !filepath.IsAbs(dbPath) {
		cwd, _ := os.Getwd()
		dbPath = filepath.Join(cwd, dbPath)
	}

	log.Printf("Initializing database at %s", dbPath)
	db, err := database.Open(database.Config{Path: dbPath})
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Create default guardian account if no users exist
	if err := createDefaultGuardianIfNeeded(db, cfg); err != nil {
		log.Printf("Warning: failed to create default guardian: %v", err)
	}

	auditLogger := audit.NewLogger(database.NewAuditRepo(db), cfg.LogAudit)

	authSvc := auth.NewService(db, auditLogger, auth.Config{
		SessionLifetime:     cfg.SessionLifetime,
		RateLimitAuth:       cfg.RateLimitAuth,
		RateLimitAuthWindow: cfg.RateLimitAuthWindow,
		PinHashCost:         cfg.PinHashCost,
		PinMaxAttempts:      cfg.PinMaxAttempts,
		PinLockoutDuration:  cfg.PinLockoutDuration,
		UnlockCode:          cfg.UnlockCode,
	})

	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	// API routes
	apiGroup := e.Group("/api")
	api.RegisterRoutes(apiGroup, api.Deps{
		DB:       db,
		Auth:     authSvc,
		AuditLog: auditLogger,
		Cfg:      cfg,
	})

	log.Printf("Starting FamTrack backend on port %s", cfg.Port)
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}

// createDefaultGuardianIfNeeded seeds a guardian account on a fresh install so
// the household can log in and set real PINs
func createDefaultGuardianIfNeeded(db *sql.DB, cfg config.Config) error {
	userRepo := database.NewUserRepo(db)

	count, err := userRepo.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil // Users already exist
	}

	log.Printf("Creating default guardian with PIN %s - CHANGE THIS PIN!", cfg.DefaultGuardianPin)

	pinHash, err := auth.HashPin(cfg.DefaultGuardianPin, cfg.PinHashCost)
	if err != nil {
		return err
	}

	guardian := &models.User{
		Role:    models.RoleGuardian,
		Name:    "Guardian",
		PinHash: pinHash,
		Locale:  "en",
		Active:  true,
	}

	return userRepo.Create(guardian)
}
