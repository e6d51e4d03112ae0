package analytics

import (
	"net/http"

	"codeberg.org/appspec/server/appspec/analytics"
	"codeberg.org/appspec/server/appspec/projects"
	"codeberg.org/appspec/server/internal/errors"
	"github.com/gin-gonic/gin"
)

// SummaryHandler returns platform-wide totals
func SummaryHandler(aggregator Aggregator) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := aggregator.PlatformSummary(c.Request.Context())
		if err != nil {
			errors.Respond(c, err, "analytics")
			return
		}

		c.JSON(http.StatusOK, summary)
	}
}

// DashboardHandler returns the dashboard for ?period=24h|7d|30d|90d
func DashboardHandler(aggregator Aggregator) gin.HandlerFunc {
	return func(c *gin.Context) {
		dashboard, err := aggregator.Dashboard(c.Request.Context(), c.Query("period"))
		if err != nil {
			errors.Respond(c, err, "analytics")
			return
		}

		c.JSON(http.StatusOK, dashboard)
	}
}

// PageViewHandler accepts a page-view event; user agent and referrer default to the request headers
func PageViewHandler(aggregator Aggregator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input analytics.PageViewInput
		if err := c.ShouldBindJSON(&input); err != nil {
			if verr := projects.AsValidation(err); verr != nil {
				errors.ValidationError(c, verr)
				return
			}

			errors.BadRequest(c, "invalid request body", err)
			return
		}

		if input.UserAgent == "" {
			input.UserAgent = c.Request.UserAgent()
		}

		if input.Referrer == "" {
			input.Referrer = c.Request.Referer()
		}

		if _, err := aggregator.RecordPageView(c.Request.Context(), input); err != nil {
			errors.Respond(c, err, "project")
			return
		}

		c.JSON(http.StatusAccepted, MessageResponse{Message: "page view recorded"})
	}
}
