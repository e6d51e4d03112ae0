package suggestions

import (
	"context"

	"codeberg.org/appspec/server/appspec/analytics"
	"codeberg.org/appspec/server/internal/database"
	"go.mongodb.org/mongo-driver/mongo"
)

// top-N served to the autocomplete endpoint
const DefaultLimit = 10

// frequency-ranked autocomplete values drawn from stored projects
type Service struct {
	projects *mongo.Collection
}

type Suggestions struct {
	TopEntities []analytics.LabelCount `json:"topEntities"`
	TopRoles    []analytics.LabelCount `json:"topRoles"`
	Categories  []analytics.LabelCount `json:"categories"`
}

func NewService(db *mongo.Database) *Service {
	return &Service{projects: db.Collection(database.CollectionProjects)}
}

func (s *Service) PopularEntities(ctx context.Context, n int) ([]analytics.LabelCount, error) {
	return analytics.TopLabels(ctx, s.projects, "requirements.entities", normalize(n))
}

func (s *Service) PopularRoles(ctx context.Context, n int) ([]analytics.LabelCount, error) {
	return analytics.TopLabels(ctx, s.projects, "requirements.roles", normalize(n))
}

func (s *Service) Categories(ctx context.Context, n int) ([]analytics.LabelCount, error) {
	return analytics.FieldCounts(ctx, s.projects, "metadata.category", normalize(n))
}

// entities, roles and categories in one response
func (s *Service) All(ctx context.Context, n int) (*Suggestions, error) {
	entities, err := s.PopularEntities(ctx, n)
	if err != nil {
		return nil, err
	}

	roles, err := s.PopularRoles(ctx, n)
	if err != nil {
		return nil, err
	}

	categories, err := s.Categories(ctx, n)
	if err != nil {
		return nil, err
	}

	return &Suggestions{TopEntities: entities, TopRoles: roles, Categories: categories}, nil
}

func normalize(n int) int {
	if n <= 0 {
		return DefaultLimit
	}
	return n
}
