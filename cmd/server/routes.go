package main

import (
	"time"

	"codeberg.org/appspec/server/api/rest/analytics"
	"codeberg.org/appspec/server/api/rest/health"
	"codeberg.org/appspec/server/api/rest/projects"
	"codeberg.org/appspec/server/api/rest/suggestions"
	domainprojects "codeberg.org/appspec/server/appspec/projects"
	"codeberg.org/appspec/server/internal/errors"
	"codeberg.org/appspec/server/internal/logger"
	"codeberg.org/appspec/server/internal/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) {
	domainprojects.UseJSONFieldNames(binding.Validator.Engine())

	router.Use(
		logger.Middleware(),
		errors.Recovery(),
		metrics.Middleware(),
		CORSMiddleware(server.config.CORSAllowedOrigins),
	)

	router.GET("/health", health.Handler(server.db))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api")

	{
		api.GET("/ping", health.PingHandler)

		projects.RegisterRoutes(api, server.projectRepo)
		suggestions.RegisterRoutes(api, server.suggestions)
		analytics.RegisterRoutes(api, server.aggregator)
	}
}

// open read access for the configured front-end origins
func CORSMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowOrigins = origins
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", logger.RequestIDHeader}
	cfg.ExposeHeaders = []string{logger.RequestIDHeader}
	cfg.MaxAge = 12 * time.Hour

	if len(origins) == 1 && origins[0] == "*" {
		cfg.AllowOrigins = nil
		cfg.AllowAllOrigins = true
	}

	return cors.New(cfg)
}
