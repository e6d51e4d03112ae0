package projects

import (
	"context"

	"codeberg.org/appspec/server/appspec/projects"
	"codeberg.org/appspec/server/internal/pagination"
)

// the repository operations the project routes need
type Store interface {
	List(ctx context.Context, params projects.ListParams) (*projects.Page, error)
	Search(ctx context.Context, params projects.ListParams) (*projects.Page, error)
	Create(ctx context.Context, req projects.CreateProjectRequest) (*projects.Project, error)
	GetByIdentifier(ctx context.Context, identifier string) (*projects.Project, error)
	SetGeneratedUI(ctx context.Context, id string, payload projects.Document) error
	IncrementLikes(ctx context.Context, id string) (int64, error)
	ListTemplates(ctx context.Context) ([]projects.Project, error)
}

// ProjectsListResponse wraps a page of projects with pagination
type ProjectsListResponse struct {
	Projects   []projects.Project `json:"projects"`
	Pagination pagination.Meta    `json:"pagination"`
}

type SearchResponse struct {
	Projects    []projects.Project `json:"projects"`
	Pagination  pagination.Meta    `json:"pagination"`
	Filters     SearchFilters      `json:"filters"`
	SearchQuery string             `json:"searchQuery"`
}

// echoes the filters that were applied
type SearchFilters struct {
	Category string   `json:"category"`
	Entities []string `json:"entities"`
	Roles    []string `json:"roles"`
	SortBy   string   `json:"sortBy"`
}

type CreateProjectResponse struct {
	Message string         `json:"message"`
	Project ProjectSummary `json:"project"`
}

type ProjectSummary struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type ProjectResponse struct {
	Project *projects.Project `json:"project"`
}

type TemplatesResponse struct {
	Templates []projects.Project `json:"templates"`
}

type LikesResponse struct {
	Likes int64 `json:"likes"`
}

type SetGeneratedUIRequest struct {
	GeneratedUI projects.Document `json:"generatedUI"`
}

// MessageResponse for simple success messages
type MessageResponse struct {
	Message string `json:"message"`
}
