// Package api wires together all HTTP routes for the orgboard backend.
//
// Route grouping:
//   - /api/auth/register and /api/auth/login are public, behind the stricter
//     auth rate limit so brute-force runs are cut off before any bcrypt work.
//   - /api/auth/logout and everything under /api/organizations require a
//     valid JWT.
//   - /health, /ready, and /version are public operational endpoints.
//
// Prometheus metrics are NOT served here; main.go runs them on a separate
// port so the application origin never exposes operational data.
package api

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/orgboard/orgboard/internal/api/authapi"
	"github.com/orgboard/orgboard/internal/api/orgs"
	"github.com/orgboard/orgboard/internal/auth"
	"github.com/orgboard/orgboard/internal/config"
	"github.com/orgboard/orgboard/internal/jobs"
	"github.com/orgboard/orgboard/internal/middleware"
	"github.com/orgboard/orgboard/internal/safego"
	"github.com/orgboard/orgboard/internal/services"
)

// Version is the reported API version.
const Version = "0.1.0"

// BackgroundServices holds references to background jobs and resources that
// must be stopped during graceful shutdown. The caller (cmd/server) calls
// Shutdown() when the process receives a termination signal.
type BackgroundServices struct {
	sessionSweeper *jobs.SessionSweeper
	rateLimiters   []middleware.Limiter
	redisClient    *redis.Client
}

// Shutdown stops all background goroutines. Call it after the HTTP server
// has been shut down so in-flight requests drain first.
func (bg *BackgroundServices) Shutdown() {
	slog.Info("stopping background services")
	if bg.sessionSweeper != nil {
		bg.sessionSweeper.Stop()
	}
	for _, rl := range bg.rateLimiters {
		rl.Stop()
	}
	if bg.redisClient != nil {
		if err := bg.redisClient.Close(); err != nil {
			slog.Warn("failed to close redis client", "error", err)
		}
	}
	slog.Info("all background services stopped")
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg *config.Config, db *sql.DB) (*gin.Engine, *BackgroundServices) {
	router := gin.New()

	tokens, err := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Server.DevMode)
	if err != nil {
		log.Fatalf("Failed to initialize token issuer: %v", err)
	}
	hasher := auth.NewHasher(cfg.Auth.BcryptCost)

	authService := services.NewAuthService(db, hasher, tokens, cfg.Database.QueryTimeout)
	orgService := services.NewOrganizationService(db, cfg.Database.QueryTimeout)

	sessionSweeper := jobs.NewSessionSweeper(db, cfg.Sessions.SweepInterval)
	safego.Go(func() { sessionSweeper.Start(context.Background()) })

	bg := &BackgroundServices{sessionSweeper: sessionSweeper}

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(LoggerMiddleware(cfg))
	router.Use(CORSMiddleware(cfg))
	router.Use(middleware.SecurityHeadersMiddleware(middleware.APISecurityHeadersConfig()))

	router.GET("/health", healthCheckHandler(db))
	router.GET("/ready", readinessHandler(db))
	router.GET("/version", versionHandler())

	var apiLimit, authLimit gin.HandlerFunc
	if cfg.Security.RateLimiting.Enabled {
		apiLimit, authLimit = buildRateLimiters(cfg, bg)
	}

	authHandlers := authapi.NewHandlers(cfg, authService)
	orgHandlers := orgs.NewHandlers(orgService)
	authGate := middleware.AuthMiddleware(tokens, cfg.Auth.Cookie.Name)

	authGroup := router.Group("/api/auth")
	if authLimit != nil {
		authGroup.Use(authLimit)
	}
	{
		authGroup.POST("/register", authHandlers.RegisterHandler())
		authGroup.POST("/login", authHandlers.LoginHandler())
		authGroup.POST("/logout", authGate, authHandlers.LogoutHandler())
		authGroup.GET("/me", authGate, authHandlers.MeHandler())
	}

	orgGroup := router.Group("/api/organizations")
	if apiLimit != nil {
		orgGroup.Use(apiLimit)
	}
	orgGroup.Use(authGate)
	{
		orgGroup.POST("", orgHandlers.CreateHandler())
		orgGroup.GET("", orgHandlers.GetHandler())
		orgGroup.PUT("", orgHandlers.UpdateHandler())
		orgGroup.DELETE("", orgHandlers.DeleteHandler())
	}

	return router, bg
}

// buildRateLimiters constructs the general and auth rate limit middleware.
// With a Redis address configured the budget is shared across replicas;
// otherwise each instance keeps its own in-memory token buckets.
func buildRateLimiters(cfg *config.Config, bg *BackgroundServices) (apiLimit, authLimit gin.HandlerFunc) {
	rlCfg := cfg.Security.RateLimiting

	apiConf := middleware.DefaultRateLimitConfig()
	if rlCfg.RequestsPerMinute > 0 {
		apiConf.RequestsPerMinute = rlCfg.RequestsPerMinute
	}
	if rlCfg.Burst > 0 {
		apiConf.BurstSize = rlCfg.Burst
	}

	authConf := middleware.AuthRateLimitConfig()
	if rlCfg.AuthRequestsPerMinute > 0 {
		authConf.RequestsPerMinute = rlCfg.AuthRequestsPerMinute
	}
	if rlCfg.AuthBurst > 0 {
		authConf.BurstSize = rlCfg.AuthBurst
	}

	var apiLimiter, authLimiter middleware.Limiter
	if rlCfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     rlCfg.RedisAddr,
			Password: rlCfg.RedisPassword,
			DB:       rlCfg.RedisDB,
		})
		bg.redisClient = client
		apiLimiter = middleware.NewRedisRateLimiter(client, apiConf)
		authLimiter = middleware.NewRedisRateLimiter(client, authConf)
		slog.Info("rate limiting via redis", "addr", rlCfg.RedisAddr)
	} else {
		apiLimiter = middleware.NewRateLimiter(apiConf)
		authLimiter = middleware.NewRateLimiter(authConf)
		slog.Info("rate limiting in memory")
	}
	bg.rateLimiters = append(bg.rateLimiters, apiLimiter, authLimiter)

	return middleware.RateLimitMiddleware(apiLimiter, apiConf),
		middleware.RateLimitMiddleware(authLimiter, authConf)
}

// @Summary      Health check
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status: healthy, time: RFC3339 timestamp"
// @Failure      503  {object}  map[string]interface{}  "status: unhealthy"
// @Router       /health [get]
// healthCheckHandler returns the health status of the service
func healthCheckHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
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

// @Summary      Readiness check
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "ready: true"
// @Failure      503  {object}  map[string]interface{}  "ready: false"
// @Router       /ready [get]
// readinessHandler reports whether the service can accept traffic.
func readinessHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"ready": false,
				"error": "database not ready",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"ready": true,
			"time":  time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// @Summary      API version
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "version, api_version"
// @Router       /version [get]
// versionHandler returns the API version
func versionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":     Version,
			"api_version": "v1",
		})
	}
}

// LoggerMiddleware provides structured request logging via the global slog
// logger configured in telemetry.SetupLogger.
func LoggerMiddleware(cfg *config.Config) gin.HandlerFunc {
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

// CORSMiddleware handles CORS for the configured origins. Preflight requests
// are answered with 204 and never reach the handlers.
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	methods := strings.Join(cfg.Security.CORS.AllowedMethods, ", ")
	if methods == "" {
		methods = "GET, POST, PUT, DELETE, OPTIONS"
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowed := false
		for _, allowedOrigin := range cfg.Security.CORS.AllowedOrigins {
			if allowedOrigin == "*" || allowedOrigin == origin {
				allowed = true
				break
			}
		}

		if allowed {
			if origin == "" {
				c.Header("Access-Control-Allow-Origin", "*")
			} else {
				c.Header("Access-Control-Allow-Origin", origin)
			}
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", methods)
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Requested-With")
			c.Header("Access-Control-Max-Age", "3600")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
