// Package api wires together all HTTP routes for the organization registry.
//
// Route grouping philosophy:
//   - /org/create, /org/get, /admin/login are unauthenticated: registration
//     and login necessarily happen before a token exists, and the lookup
//     endpoint is public read-only registry metadata.
//   - /org/update and /org/delete require a bearer token. The admin identity
//     resolved from the token decides which organization may be touched; the
//     request payload never does.
//   - /admin/login carries a stricter rate limit than the rest of the API so
//     credential stuffing is throttled before any bcrypt work happens.
package api

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/org-registry/org-registry/internal/api/admin"
	"github.com/org-registry/org-registry/internal/api/orgs"
	"github.com/org-registry/org-registry/internal/auth"
	"github.com/org-registry/org-registry/internal/config"
	"github.com/org-registry/org-registry/internal/db/repositories"
	"github.com/org-registry/org-registry/internal/middleware"
	"github.com/org-registry/org-registry/internal/services"
)

// Version is the service version reported by /version. Overridable at build
// time with -ldflags "-X .../internal/api.Version=...".
var Version = "0.1.0"

// BackgroundServices holds references to background resources that must be
// stopped during graceful shutdown. The caller (cmd/server) is responsible
// for calling Shutdown() when the process receives a termination signal.
type BackgroundServices struct {
	rateLimiters []*middleware.RateLimiter
}

// Shutdown stops all background goroutines. It should be called after the
// HTTP server has been shut down so that in-flight requests are drained first.
func (bg *BackgroundServices) Shutdown() {
	slog.Info("stopping background services")
	for _, rl := range bg.rateLimiters {
		rl.Stop()
	}
	slog.Info("all background services stopped")
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, db *sqlx.DB) (*gin.Engine, *BackgroundServices) {
	router := gin.New()

	// Initialize repositories and services
	orgRepo := repositories.NewOrganizationRepository(db)
	userRepo := repositories.NewUserRepository(db)
	collections := services.NewCollectionManager(db)
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	orgService := services.NewOrgService(orgRepo, userRepo, collections, hasher)

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTAlgorithm, cfg.Auth.TokenExpiry)
	if err != nil {
		log.Fatalf("Failed to initialize token service: %v", err)
	}

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.SecurityHeadersMiddleware())

	// Service metadata endpoints
	router.GET("/", rootHandler())
	router.GET("/health", healthCheckHandler(db))
	router.GET("/version", versionHandler())

	bg := &BackgroundServices{}

	orgHandlers := orgs.NewHandlers(orgService)
	authHandlers := admin.NewAuthHandlers(orgService, tokens)
	authRequired := middleware.AuthMiddleware(tokens, userRepo)

	var limit func(middleware.RateLimitConfig) gin.HandlerFunc
	if cfg.Security.RateLimiting.Enabled {
		limit = func(rlCfg middleware.RateLimitConfig) gin.HandlerFunc {
			rl := middleware.NewRateLimiter(rlCfg)
			bg.rateLimiters = append(bg.rateLimiters, rl)
			return middleware.RateLimitMiddleware(rl)
		}
	} else {
		limit = func(middleware.RateLimitConfig) gin.HandlerFunc {
			return func(c *gin.Context) { c.Next() }
		}
	}

	generalCfg := middleware.DefaultRateLimitConfig()
	if cfg.Security.RateLimiting.RequestsPerMinute > 0 {
		generalCfg.RequestsPerMinute = cfg.Security.RateLimiting.RequestsPerMinute
	}
	if cfg.Security.RateLimiting.Burst > 0 {
		generalCfg.BurstSize = cfg.Security.RateLimiting.Burst
	}

	orgGroup := router.Group("/org")
	orgGroup.Use(limit(generalCfg))
	{
		orgGroup.POST("/create", orgHandlers.CreateHandler())
		orgGroup.GET("/get", orgHandlers.GetHandler())
		orgGroup.PUT("/update", authRequired, orgHandlers.UpdateHandler())
		orgGroup.DELETE("/delete", authRequired, orgHandlers.DeleteHandler())
	}

	adminGroup := router.Group("/admin")
	adminGroup.Use(limit(middleware.AuthRateLimitConfig()))
	{
		adminGroup.POST("/login", authHandlers.LoginHandler())
	}

	return router, bg
}

// rootHandler returns the service welcome message
func rootHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to the Organization Management Service",
		})
	}
}

// healthCheckHandler returns the health status of the service
func healthCheckHandler(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check database connection
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// versionHandler returns the API version
func versionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":     Version,
			"api_version": "v1",
		})
	}
}

// LoggerMiddleware logs each request through the process-wide slog handler.
// The output format (json or text) follows whatever handler
// telemetry.SetupLogger installed.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		requestID, _ := c.Get(middleware.RequestIDKey)

		slog.LogAttrs(
			c.Request.Context(),
			slog.LevelInfo,
			"http request",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.Int("status", c.Writer.Status()),
			slog.Int("size", c.Writer.Size()),
			slog.Duration("latency", latency),
			slog.String("ip", c.ClientIP()),
			slog.String("request_id", fmt.Sprintf("%v", requestID)),
			slog.String("user_agent", c.Request.UserAgent()),
		)
	}
}
