package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cv-backend/internal/cvs"
	"cv-backend/internal/shared/config"
	"cv-backend/internal/shared/metrics"
	"cv-backend/internal/shared/server/middleware"
	"cv-backend/internal/shared/server/respond"
)

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config    config.Config
	CVHandler *cvs.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(rateLimitConfig()),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	if deps.CVHandler != nil {
		deps.CVHandler.RegisterRoutes(api)
	}

	return r
}

// Status polling is cheap and frequent; uploads and reprocess kicks are not.
func rateLimitConfig() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		DefaultGroup: "DEFAULT",
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method == http.MethodGet && c.FullPath() == "/api/v1/cvs/:id" {
				return "POLLING"
			}
			if c.Request.Method == http.MethodPost {
				return "MUTATE"
			}
			return "DEFAULT"
		},
		Rules: map[string]middleware.RateLimitRule{
			"DEFAULT": {Rate: 5, Burst: 20},
			"POLLING": {Rate: 10, Burst: 40},
			"MUTATE":  {Rate: 1, Burst: 5},
		},
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
