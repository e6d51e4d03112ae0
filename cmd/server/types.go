package main

import (
	"codeberg.org/appspec/server/appspec/analytics"
	"codeberg.org/appspec/server/appspec/projects"
	"codeberg.org/appspec/server/appspec/suggestions"
	"codeberg.org/appspec/server/internal/background"
	"codeberg.org/appspec/server/internal/buffer"
	"codeberg.org/appspec/server/internal/config"
	"codeberg.org/appspec/server/internal/database"
	"github.com/gin-gonic/gin"
)

// holds all dependencies and state for the API server
type Server struct {
	db          *database.Client
	config      *config.Config
	projectRepo *projects.Repository
	aggregator  *analytics.Aggregator
	suggestions *suggestions.Service
	runner      *background.Runner
	router      *gin.Engine

	// nil when REDIS_URL is unset
	buffer  *buffer.PageViewBuffer
	flusher *buffer.Flusher
}
