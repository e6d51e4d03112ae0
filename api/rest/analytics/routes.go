package analytics

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup, aggregator Aggregator) {
	analyticsGroup := router.Group("/analytics")
	{
		analyticsGroup.GET("", SummaryHandler(aggregator))
		analyticsGroup.GET("/dashboard", DashboardHandler(aggregator))
		analyticsGroup.POST("/pageview", PageViewHandler(aggregator))
	}
}
