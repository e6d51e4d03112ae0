package projects

import (
	"net/http"
	"strconv"

	"codeberg.org/appspec/server/appspec/projects"
	"codeberg.org/appspec/server/internal/errors"
	"codeberg.org/appspec/server/internal/metrics"
	"github.com/gin-gonic/gin"
)

const resource = "project"

// ListProjectsHandler lists projects, newest first, filtered by category and search
func ListProjectsHandler(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := projects.ListParams{
			Page:     queryInt(c, "page"),
			Limit:    queryInt(c, "limit"),
			Category: c.Query("category"),
			Search:   c.Query("search"),
		}

		page, err := store.List(c.Request.Context(), params)
		if err != nil {
			errors.Respond(c, err, resource)
			return
		}

		c.JSON(http.StatusOK, ProjectsListResponse{
			Projects:   page.Projects,
			Pagination: page.Pagination,
		})
	}
}

// CreateProjectHandler stores a new project
func CreateProjectHandler(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req projects.CreateProjectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			if verr := projects.AsValidation(err); verr != nil {
				errors.ValidationError(c, verr)
				return
			}

			errors.BadRequest(c, "invalid request body", err)
			return
		}

		project, err := store.Create(c.Request.Context(), req)
		if err != nil {
			errors.Respond(c, err, resource)
			return
		}

		metrics.ProjectsCreatedTotal.Inc()

		c.JSON(http.StatusCreated, CreateProjectResponse{
			Message: "project created",
			Project: ProjectSummary{
				ID:   project.ID.Hex(),
				Slug: project.Slug,
				Name: project.Name,
			},
		})
	}
}

// GetProjectHandler resolves a project by slug or id and counts the view
func GetProjectHandler(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		project, err := store.GetByIdentifier(c.Request.Context(), c.Param("identifier"))
		if err != nil {
			errors.Respond(c, err, resource)
			return
		}

		c.JSON(http.StatusOK, ProjectResponse{Project: project})
	}
}

// SetGeneratedUIHandler replaces the generated UI document of a project
func SetGeneratedUIHandler(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SetGeneratedUIRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.BadRequest(c, "invalid request body", err)
			return
		}

		if err := store.SetGeneratedUI(c.Request.Context(), c.Param("identifier"), req.GeneratedUI); err != nil {
			errors.Respond(c, err, resource)
			return
		}

		c.JSON(http.StatusOK, MessageResponse{Message: "generated UI updated"})
	}
}

// LikeProjectHandler adds one like and returns the new count
func LikeProjectHandler(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		likes, err := store.IncrementLikes(c.Request.Context(), c.Param("identifier"))
		if err != nil {
			errors.Respond(c, err, resource)
			return
		}

		c.JSON(http.StatusOK, LikesResponse{Likes: likes})
	}
}

// ListTemplatesHandler lists template projects, most liked first
func ListTemplatesHandler(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		templates, err := store.ListTemplates(c.Request.Context())
		if err != nil {
			errors.Respond(c, err, resource)
			return
		}

		c.JSON(http.StatusOK, TemplatesResponse{Templates: templates})
	}
}

// SearchProjectsHandler searches projects with every filter and a sort order
func SearchProjectsHandler(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := projects.ListParams{
			Page:     queryInt(c, "page"),
			Limit:    queryInt(c, "limit"),
			Category: c.Query("category"),
			Search:   c.Query("q"),
			Entities: projects.SplitList(c.Query("entities")),
			Roles:    projects.SplitList(c.Query("roles")),
			SortBy:   projects.SearchSort(c.Query("sortBy")),
		}

		page, err := store.Search(c.Request.Context(), params)
		if err != nil {
			errors.Respond(c, err, resource)
			return
		}

		c.JSON(http.StatusOK, SearchResponse{
			Projects:   page.Projects,
			Pagination: page.Pagination,
			Filters: SearchFilters{
				Category: params.Category,
				Entities: nonNil(params.Entities),
				Roles:    nonNil(params.Roles),
				SortBy:   params.SortBy,
			},
			SearchQuery: params.Search,
		})
	}
}

// non-numeric values read as 0 and fall back to the defaults
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
