package projects

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, store Store) {
	projectsGroup := router.Group("/projects")
	{
		projectsGroup.GET("", ListProjectsHandler(store))
		projectsGroup.POST("", CreateProjectHandler(store))
		projectsGroup.GET("/:identifier", GetProjectHandler(store))
		projectsGroup.PUT("/:identifier/ui", SetGeneratedUIHandler(store))
		projectsGroup.POST("/:identifier/like", LikeProjectHandler(store))
	}

	router.GET("/templates", ListTemplatesHandler(store))
	router.GET("/search", SearchProjectsHandler(store))
}
