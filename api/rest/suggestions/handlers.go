package suggestions

import (
	"context"
	"net/http"

	"codeberg.org/appspec/server/appspec/suggestions"
	"codeberg.org/appspec/server/internal/errors"
	"github.com/gin-gonic/gin"
)

type Source interface {
	All(ctx context.Context, n int) (*suggestions.Suggestions, error)
}

func RegisterRoutes(router *gin.RouterGroup, source Source) {
	router.GET("/suggestions", Handler(source))
}

// Handler returns the most frequent entities, roles and categories
func Handler(source Source) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := source.All(c.Request.Context(), suggestions.DefaultLimit)
		if err != nil {
			errors.Respond(c, err, "suggestions")
			return
		}

		c.JSON(http.StatusOK, result)
	}
}
