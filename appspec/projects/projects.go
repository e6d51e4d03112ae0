package projects

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"codeberg.org/appspec/server/internal/database"
	apperrors "codeberg.org/appspec/server/internal/errors"
	"codeberg.org/appspec/server/internal/logger"
	"codeberg.org/appspec/server/internal/pagination"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const maxSlugAttempts = 3

type Option func(*Repository)

// routes the creation side effects and view increments through a background runner
func WithBackground(l Launcher) Option {
	return func(r *Repository) { r.background = l }
}

// registers the analytics ingestion hook fired after every successful create
func WithCreationHook(hook CreationHook) Option {
	return func(r *Repository) { r.onCreate = hook }
}

// overrides the clock (tests)
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

func NewRepository(db *mongo.Database, opts ...Option) *Repository {
	r := &Repository{
		projects:   db.Collection(database.CollectionProjects),
		clock:      &slugClock{},
		now:        time.Now,
		background: goLauncher{},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// a page of projects plus pagination metadata
type Page struct {
	Projects   []Project
	Pagination pagination.Meta
}

// validates and stores a new project, then hands its analytics to the ingestion hook
func (r *Repository) Create(ctx context.Context, req CreateProjectRequest) (*Project, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)

	if err := validateStruct(req); err != nil {
		return nil, err
	}

	now := r.now().UTC()
	project := newProject(req, now)

	for attempt := 1; ; attempt++ {
		project.Slug = MakeSlug(project.Name, r.clock.next(r.now()))

		result, err := r.projects.InsertOne(ctx, project)
		if err == nil {
			if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
				project.ID = oid
			}
			break
		}

		// another process took this slug in the same millisecond
		if mongo.IsDuplicateKeyError(err) && attempt < maxSlugAttempts {
			continue
		}

		return nil, apperrors.Persistence("insert project", err)
	}

	if r.onCreate != nil {
		event := CreationEvent{
			ProjectID: project.ID,
			Category:  project.Metadata.Category,
			Entities:  project.Requirements.Entities,
			Stats:     project.Analytics,
			CreatedAt: project.CreatedAt,
		}

		r.background.Go(ctx, "ingest_creation_event", func(ctx context.Context) error {
			return r.onCreate(ctx, event)
		})
	}

	return project, nil
}

func newProject(req CreateProjectRequest, now time.Time) *Project {
	category := req.Metadata.Category
	if category == "" {
		category = CategoryOther
	}

	var views, likes int64
	if req.Metadata.Views != nil {
		views = *req.Metadata.Views
	}
	if req.Metadata.Likes != nil {
		likes = *req.Metadata.Likes
	}

	requirements := req.Requirements
	requirements.Entities = nonNil(requirements.Entities)
	requirements.Roles = nonNil(requirements.Roles)
	requirements.Features = nonNil(requirements.Features)

	stats := req.Analytics
	if stats.GenerationDate.IsZero() {
		stats.GenerationDate = now
	}

	return &Project{
		Name:         req.Name,
		Description:  req.Description,
		Requirements: requirements,
		Analytics:    stats,
		Metadata: Metadata{
			Category:   category,
			Views:      views,
			Likes:      likes,
			IsTemplate: req.Metadata.IsTemplate,
			Tags:       uniqueTags(req.Metadata.Tags),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// resolves slug first, then store id; no side effects
func (r *Repository) Resolve(ctx context.Context, identifier string) (*Project, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, apperrors.NotFoundf("project %q", identifier)
	}

	project, err := r.findOne(ctx, bson.D{{Key: fieldSlug, Value: identifier}})
	if err == nil {
		return project, nil
	}

	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.Persistence("find project by slug", err)
	}

	if !primitive.IsValidObjectID(identifier) {
		return nil, apperrors.NotFoundf("project %q", identifier)
	}

	oid, _ := primitive.ObjectIDFromHex(identifier) //nolint:errcheck // validated above

	project, err = r.findOne(ctx, bson.D{{Key: fieldID, Value: oid}})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NotFoundf("project %q", identifier)
	}

	if err != nil {
		return nil, apperrors.Persistence("find project by id", err)
	}

	return project, nil
}

// resolves a project and bumps its view counter in the background;
// the returned document carries the pre-increment count
func (r *Repository) GetByIdentifier(ctx context.Context, identifier string) (*Project, error) {
	project, err := r.Resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}

	id := project.ID.Hex()
	r.background.Go(ctx, "increment_views", func(ctx context.Context) error {
		_, err := r.IncrementViews(ctx, id)
		return err
	})

	return project, nil
}

// replaces generatedUI wholesale
func (r *Repository) SetGeneratedUI(ctx context.Context, id string, payload Document) error {
	if !payload.IsObject() {
		return apperrors.Validationf("generatedUI must be a JSON object")
	}

	oid, err := parseID(id)
	if err != nil {
		return err
	}

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: fieldGeneratedUI, Value: payload},
		{Key: fieldUpdatedAt, Value: r.now().UTC()},
	}}}

	result, err := r.projects.UpdateOne(ctx, bson.D{{Key: fieldID, Value: oid}}, update)
	if err != nil {
		return apperrors.Persistence("set generated ui", err)
	}

	if result.MatchedCount == 0 {
		return apperrors.NotFoundf("project %q", id)
	}

	return nil
}

// atomic +1 on metadata.likes, returns the new count
func (r *Repository) IncrementLikes(ctx context.Context, id string) (int64, error) {
	project, err := r.increment(ctx, id, fieldLikes)
	if err != nil {
		return 0, err
	}

	return project.Metadata.Likes, nil
}

// atomic +1 on metadata.views, returns the new count
func (r *Repository) IncrementViews(ctx context.Context, id string) (int64, error) {
	project, err := r.increment(ctx, id, fieldViews)
	if err != nil {
		return 0, err
	}

	return project.Metadata.Views, nil
}

func (r *Repository) increment(ctx context.Context, id, field string) (*Project, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	update := bson.D{
		{Key: "$inc", Value: bson.D{{Key: field, Value: 1}}},
		{Key: "$set", Value: bson.D{{Key: fieldUpdatedAt, Value: r.now().UTC()}}},
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(ListProjection())

	var project Project
	err = r.projects.FindOneAndUpdate(ctx, bson.D{{Key: fieldID, Value: oid}}, update, opts).Decode(&project)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NotFoundf("project %q", id)
	}

	if err != nil {
		return nil, apperrors.Persistence(fmt.Sprintf("increment %s", field), err)
	}

	return &project, nil
}

// default listing: category + search, most recent first
func (r *Repository) List(ctx context.Context, params ListParams) (*Page, error) {
	params.Entities, params.Roles, params.SortBy = nil, nil, SortRecent
	return r.find(ctx, BuildQuery(params))
}

// search listing: every filter plus sortBy, most liked first by default
func (r *Repository) Search(ctx context.Context, params ListParams) (*Page, error) {
	params.SortBy = SearchSort(params.SortBy)
	return r.find(ctx, BuildQuery(params))
}

// template projects, most liked first, capped at TemplatesLimit
func (r *Repository) ListTemplates(ctx context.Context) ([]Project, error) {
	opts := options.Find().
		SetSort(TemplatesSort()).
		SetLimit(TemplatesLimit).
		SetProjection(ListProjection())

	cursor, err := r.projects.Find(ctx, bson.D{{Key: fieldIsTemplate, Value: true}}, opts)
	if err != nil {
		return nil, apperrors.Persistence("list templates", err)
	}

	templates := []Project{}
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, apperrors.Persistence("decode templates", err)
	}

	return templates, nil
}

// removes every template (seeder --clear)
func (r *Repository) DeleteTemplates(ctx context.Context) (int64, error) {
	result, err := r.projects.DeleteMany(ctx, bson.D{{Key: fieldIsTemplate, Value: true}})
	if err != nil {
		return 0, apperrors.Persistence("delete templates", err)
	}

	return result.DeletedCount, nil
}

func (r *Repository) find(ctx context.Context, q Query) (*Page, error) {
	opts := options.Find().
		SetSort(q.Sort).
		SetSkip(q.Skip()).
		SetLimit(q.Limit()).
		SetProjection(q.Projection)

	cursor, err := r.projects.Find(ctx, q.Filter, opts)
	if err != nil {
		return nil, apperrors.Persistence("list projects", err)
	}

	projects := []Project{}
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, apperrors.Persistence("decode projects", err)
	}

	total, err := r.projects.CountDocuments(ctx, q.Filter)
	if err != nil {
		return nil, apperrors.Persistence("count projects", err)
	}

	return &Page{
		Projects:   projects,
		Pagination: pagination.NewMeta(q.Page, total),
	}, nil
}

func (r *Repository) findOne(ctx context.Context, filter bson.D) (*Project, error) {
	var project Project
	if err := r.projects.FindOne(ctx, filter).Decode(&project); err != nil {
		return nil, err
	}
	return &project, nil
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, apperrors.NotFoundf("project %q", id)
	}
	return oid, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// tags are a set: trimmed, de-duplicated, first occurrence wins
func uniqueTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))

	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}

	return out
}

// used when no runner is injected
type goLauncher struct{}

func (goLauncher) Go(ctx context.Context, task string, fn func(ctx context.Context) error) {
	go func() {
		if err := fn(context.WithoutCancel(ctx)); err != nil {
			logger.FromContext(ctx).Error("background task failed", "task", task, "error", err)
		}
	}()
}
