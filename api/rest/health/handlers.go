package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const pingTimeout = 2 * time.Second

// returns the server health status; 503 when the document store is unreachable
func Handler(store Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()

		resp := Response{
			Status:   "healthy",
			Service:  "appspec",
			Version:  "1.0.0",
			Database: "connected",
		}

		status := http.StatusOK

		if err := store.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, resp)
	}
}

// responds with pong for testing
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{Message: "pong"})
}
