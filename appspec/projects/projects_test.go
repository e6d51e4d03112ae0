package projects

import (
	"context"
	"strings"
	"testing"
	"time"

	apperrors "codeberg.org/appspec/server/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const ns = "appspec.projects"

type queuedTask struct {
	name string
	fn   func(ctx context.Context) error
}

// records background work instead of running it so mock responses stay ordered
type recordingLauncher struct {
	tasks []queuedTask
}

func (l *recordingLauncher) Go(_ context.Context, task string, fn func(ctx context.Context) error) {
	l.tasks = append(l.tasks, queuedTask{name: task, fn: fn})
}

func projectDoc(id primitive.ObjectID, slug string, likes, views int32) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: "Test App"},
		{Key: "slug", Value: slug},
		{Key: "description", Value: "an app"},
		{Key: "requirements", Value: bson.D{
			{Key: "entities", Value: bson.A{"User", "Order"}},
			{Key: "roles", Value: bson.A{"admin"}},
		}},
		{Key: "metadata", Value: bson.D{
			{Key: "category", Value: "business"},
			{Key: "likes", Value: likes},
			{Key: "views", Value: views},
		}},
	}
}

func TestRepository_Create(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("stores project and queues creation event", func(mt *mtest.T) {
		launcher := &recordingLauncher{}
		var events []CreationEvent

		repo := NewRepository(mt.DB,
			WithBackground(launcher),
			WithCreationHook(func(_ context.Context, e CreationEvent) error {
				events = append(events, e)
				return nil
			}),
		)

		mt.AddMockResponses(mtest.CreateSuccessResponse())

		project, err := repo.Create(context.Background(), CreateProjectRequest{
			Name:        "  Test App ",
			Description: "desc",
			Requirements: Requirements{
				Entities: []string{"User"},
			},
			Analytics: GenerationStats{AIModel: "gpt", TokensUsed: 10, ResponseTime: 1200},
			Metadata:  MetadataInput{Tags: []string{"a", "a", " b "}},
		})
		require.NoError(mt, err)

		assert.True(mt, strings.HasPrefix(project.Slug, "test-app-"))
		assert.False(mt, project.ID.IsZero())
		assert.Equal(mt, CategoryOther, project.Metadata.Category)
		assert.Equal(mt, int64(0), project.Metadata.Views)
		assert.Equal(mt, []string{"a", "b"}, project.Metadata.Tags)
		assert.Equal(mt, []string{}, project.Requirements.Roles)
		assert.False(mt, project.Analytics.GenerationDate.IsZero())

		require.Len(mt, launcher.tasks, 1)
		assert.Equal(mt, "ingest_creation_event", launcher.tasks[0].name)

		require.NoError(mt, launcher.tasks[0].fn(context.Background()))
		require.Len(mt, events, 1)
		assert.Equal(mt, project.ID, events[0].ProjectID)
		assert.Equal(mt, int64(1200), events[0].Stats.ResponseTime)
	})

	mt.Run("retries slug on duplicate key", func(mt *mtest.T) {
		frozen := time.UnixMilli(1700000000000)
		repo := NewRepository(mt.DB, WithBackground(&recordingLauncher{}), WithClock(func() time.Time { return frozen }))

		mt.AddMockResponses(
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "E11000 duplicate key error"}),
			mtest.CreateSuccessResponse(),
		)

		project, err := repo.Create(context.Background(), CreateProjectRequest{Name: "Test App", Description: "d"})
		require.NoError(mt, err)
		assert.Equal(mt, "test-app-1700000000001", project.Slug)
	})

	mt.Run("gives up after repeated collisions", func(mt *mtest.T) {
		repo := NewRepository(mt.DB, WithBackground(&recordingLauncher{}))

		dup := mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "E11000 duplicate key error"})
		mt.AddMockResponses(dup, dup, dup)

		_, err := repo.Create(context.Background(), CreateProjectRequest{Name: "Test App", Description: "d"})
		assert.True(mt, apperrors.IsPersistence(err))
	})

	mt.Run("rejects invalid input without touching the store", func(mt *mtest.T) {
		repo := NewRepository(mt.DB, WithBackground(&recordingLauncher{}))

		_, err := repo.Create(context.Background(), CreateProjectRequest{Name: "   ", Description: "d"})
		assert.True(mt, apperrors.IsValidation(err))
	})
}

func TestRepository_Resolve(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	id := primitive.NewObjectID()

	mt.Run("by slug", func(mt *mtest.T) {
		repo := NewRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, projectDoc(id, "test-app-1", 0, 4)))

		project, err := repo.Resolve(context.Background(), "test-app-1")
		require.NoError(mt, err)
		assert.Equal(mt, id, project.ID)
		assert.Equal(mt, int64(4), project.Metadata.Views)
	})

	mt.Run("falls back to id", func(mt *mtest.T) {
		repo := NewRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, projectDoc(id, "test-app-1", 0, 0)),
		)

		project, err := repo.Resolve(context.Background(), id.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, "test-app-1", project.Slug)
	})

	mt.Run("unknown slug that is not an id", func(mt *mtest.T) {
		repo := NewRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.Resolve(context.Background(), "missing")
		assert.True(mt, apperrors.IsNotFound(err))
	})
}

func TestRepository_GetByIdentifierQueuesViewIncrement(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("increments after returning", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		launcher := &recordingLauncher{}
		repo := NewRepository(mt.DB, WithBackground(launcher))

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, projectDoc(id, "test-app-1", 0, 7)))

		project, err := repo.GetByIdentifier(context.Background(), "test-app-1")
		require.NoError(mt, err)
		assert.Equal(mt, int64(7), project.Metadata.Views)

		require.Len(mt, launcher.tasks, 1)
		assert.Equal(mt, "increment_views", launcher.tasks[0].name)

		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: projectDoc(id, "test-app-1", 0, 8)}})
		assert.NoError(mt, launcher.tasks[0].fn(context.Background()))
	})
}

func TestRepository_IncrementLikes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	id := primitive.NewObjectID()

	mt.Run("returns new count", func(mt *mtest.T) {
		repo := NewRepository(mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: projectDoc(id, "s", 3, 0)}})

		likes, err := repo.IncrementLikes(context.Background(), id.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, int64(3), likes)
	})

	mt.Run("missing project", func(mt *mtest.T) {
		repo := NewRepository(mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}})

		_, err := repo.IncrementLikes(context.Background(), id.Hex())
		assert.True(mt, apperrors.IsNotFound(err))
	})

	mt.Run("malformed id", func(mt *mtest.T) {
		repo := NewRepository(mt.DB)

		_, err := repo.IncrementLikes(context.Background(), "not-an-id")
		assert.True(mt, apperrors.IsNotFound(err))
	})
}

func TestRepository_SetGeneratedUI(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	id := primitive.NewObjectID()

	mt.Run("updates", func(mt *mtest.T) {
		repo := NewRepository(mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 1}, {Key: "nModified", Value: 1}})

		err := repo.SetGeneratedUI(context.Background(), id.Hex(), Document(`{"layout":"grid"}`))
		assert.NoError(mt, err)
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := NewRepository(mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}, {Key: "nModified", Value: 0}})

		err := repo.SetGeneratedUI(context.Background(), id.Hex(), Document(`{"layout":"grid"}`))
		assert.True(mt, apperrors.IsNotFound(err))
	})

	mt.Run("rejects non-object payload", func(mt *mtest.T) {
		repo := NewRepository(mt.DB)

		err := repo.SetGeneratedUI(context.Background(), id.Hex(), Document(`[1,2,3]`))
		assert.True(mt, apperrors.IsValidation(err))
	})
}

func TestRepository_ListPagination(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("meta reflects total", func(mt *mtest.T) {
		repo := NewRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
				projectDoc(primitive.NewObjectID(), "a-1", 0, 0),
				projectDoc(primitive.NewObjectID(), "b-2", 0, 0),
			),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(5)}}),
		)

		page, err := repo.List(context.Background(), ListParams{Page: 2, Limit: 2})
		require.NoError(mt, err)

		assert.Len(mt, page.Projects, 2)
		assert.Equal(mt, 2, page.Pagination.Page)
		assert.Equal(mt, 2, page.Pagination.Limit)
		assert.Equal(mt, int64(5), page.Pagination.Total)
		assert.Equal(mt, int64(3), page.Pagination.Pages)
	})

	mt.Run("empty result keeps an empty slice", func(mt *mtest.T) {
		repo := NewRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
		)

		page, err := repo.Search(context.Background(), ListParams{Search: "nothing", SortBy: "liked"})
		require.NoError(mt, err)
		assert.NotNil(mt, page.Projects)
		assert.Empty(mt, page.Projects)
		assert.Equal(mt, int64(0), page.Pagination.Total)
	})
}

func TestRepository_SearchDefaultsToMostLiked(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("sort sent to the store", func(mt *mtest.T) {
		repo := NewRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
		)

		_, err := repo.Search(context.Background(), ListParams{Search: "crm"})
		require.NoError(mt, err)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		require.Equal(mt, "find", started.CommandName)

		sort := started.Command.Lookup("sort").Document()
		keys, err := sort.Elements()
		require.NoError(mt, err)
		require.Len(mt, keys, 3)
		assert.Equal(mt, "metadata.likes", keys[0].Key())
		assert.Equal(mt, "createdAt", keys[1].Key())
		assert.Equal(mt, "_id", keys[2].Key())
	})
}

func TestRepository_ListTemplates(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes templates", func(mt *mtest.T) {
		repo := NewRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			projectDoc(primitive.NewObjectID(), "crm-1", 9, 0),
			projectDoc(primitive.NewObjectID(), "todo-2", 4, 0),
		))

		templates, err := repo.ListTemplates(context.Background())
		require.NoError(mt, err)
		require.Len(mt, templates, 2)
		assert.Equal(mt, int64(9), templates[0].Metadata.Likes)
	})
}

func TestUniqueTags(t *testing.T) {
	assert.Equal(t, []string{"x", "y"}, uniqueTags([]string{" x", "y", "x ", ""}))
	assert.Equal(t, []string{}, uniqueTags(nil))
}
