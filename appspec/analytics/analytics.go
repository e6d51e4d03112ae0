package analytics

import (
	"context"
	"errors"
	"strings"
	"time"

	"codeberg.org/appspec/server/internal/database"
	apperrors "codeberg.org/appspec/server/internal/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

type Option func(*Aggregator)

// sends page views through r instead of inserting them directly
func WithRecorder(r Recorder) Option {
	return func(a *Aggregator) { a.recorder = r }
}

// bounds how many sub-queries one summary or dashboard runs at once; n <= 0 is unbounded.
// with n == 1 sub-queries run one after another in declaration order.
func WithReadConcurrency(n int) Option {
	return func(a *Aggregator) { a.readLimit = n }
}

// overrides the clock (tests)
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

func NewAggregator(db *mongo.Database, opts ...Option) *Aggregator {
	a := &Aggregator{
		projects:  db.Collection(database.CollectionProjects),
		snapshots: db.Collection(database.CollectionAnalytics),
		pageviews: db.Collection(database.CollectionPageViews),
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.recorder == nil {
		a.recorder = a
	}

	return a
}

// maps a period label to its lookback window; empty means DefaultPeriod
func ParsePeriod(period string) (string, time.Duration, error) {
	period = strings.ToLower(strings.TrimSpace(period))
	if period == "" {
		period = DefaultPeriod
	}

	switch period {
	case PeriodDay:
		return period, 24 * time.Hour, nil
	case PeriodWeek:
		return period, 7 * 24 * time.Hour, nil
	case PeriodMonth:
		return period, 30 * 24 * time.Hour, nil
	case PeriodQuarter:
		return period, 90 * 24 * time.Hour, nil
	}

	return "", 0, apperrors.Validationf("period must be one of 24h, 7d, 30d, 90d")
}

// platform-wide totals plus the latest snapshot's AI usage
func (a *Aggregator) PlatformSummary(ctx context.Context) (*PlatformSummary, error) {
	summary := &PlatformSummary{}

	g, gctx := a.readGroup(ctx)

	g.Go(func() error {
		total, err := a.projects.CountDocuments(gctx, bson.D{})
		if err != nil {
			return apperrors.Persistence("count projects", err)
		}
		summary.TotalProjects = total
		return nil
	})

	g.Go(func() error {
		total, err := a.totalViews(gctx)
		summary.TotalViews = total
		return err
	})

	g.Go(func() error {
		stats, err := a.categoryStats(gctx)
		summary.CategoryStats = stats
		return err
	})

	g.Go(func() error {
		snapshot, err := a.LatestSnapshot(gctx)
		if err != nil {
			return err
		}
		if snapshot != nil {
			summary.AICalls = snapshot.AICalls
			summary.TotalTokensUsed = snapshot.TotalTokensUsed
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return summary, nil
}

// per-period view of traffic and content
func (a *Aggregator) Dashboard(ctx context.Context, period string) (*Dashboard, error) {
	period, window, err := ParsePeriod(period)
	if err != nil {
		return nil, err
	}

	since := a.now().UTC().Add(-window)
	dash := &Dashboard{Period: period, Since: since}

	g, gctx := a.readGroup(ctx)

	g.Go(func() error {
		n, err := a.pageviews.CountDocuments(gctx, sinceFilter(since))
		if err != nil {
			return apperrors.Persistence("count page views", err)
		}
		dash.RecentViews = n
		return nil
	})

	g.Go(func() error {
		top, err := a.topProjects(gctx, DashboardTopN)
		dash.TopProjects = top
		return err
	})

	g.Go(func() error {
		stats, err := a.categoryStats(gctx)
		dash.CategoryStats = stats
		return err
	})

	g.Go(func() error {
		daily := []DailyViews{}
		err := aggregateAll(gctx, a.pageviews, DailyViewsPipeline(since), &daily, "daily views")
		dash.DailyViews = daily
		return err
	})

	g.Go(func() error {
		labels, err := TopLabels(gctx, a.projects, fieldEntities, DashboardTopN)
		dash.TopEntities = labels
		return err
	})

	g.Go(func() error {
		labels, err := TopLabels(gctx, a.projects, fieldRoles, DashboardTopN)
		dash.TopRoles = labels
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return dash, nil
}

// most recent daily snapshot, nil when none exists
func (a *Aggregator) LatestSnapshot(ctx context.Context) (*Snapshot, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: fieldDate, Value: -1}})

	var snapshot Snapshot
	err := a.snapshots.FindOne(ctx, bson.D{}, opts).Decode(&snapshot)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}

	if err != nil {
		return nil, apperrors.Persistence("find latest snapshot", err)
	}

	return &snapshot, nil
}

// frequency-ranked values of an array field across all projects
func TopLabels(ctx context.Context, projects *mongo.Collection, field string, limit int) ([]LabelCount, error) {
	labels := []LabelCount{}
	if err := aggregateAll(ctx, projects, TopLabelsPipeline(field, limit), &labels, "top "+field); err != nil {
		return nil, err
	}
	return labels, nil
}

// frequency-ranked values of a scalar field across all projects
func FieldCounts(ctx context.Context, projects *mongo.Collection, field string, limit int) ([]LabelCount, error) {
	labels := []LabelCount{}
	if err := aggregateAll(ctx, projects, FieldCountsPipeline(field, limit), &labels, "count "+field); err != nil {
		return nil, err
	}
	return labels, nil
}

func (a *Aggregator) readGroup(ctx context.Context) (*errgroup.Group, context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	if a.readLimit > 0 {
		g.SetLimit(a.readLimit)
	}
	return g, gctx
}

func (a *Aggregator) categoryStats(ctx context.Context) ([]CategoryStat, error) {
	stats := []CategoryStat{}
	if err := aggregateAll(ctx, a.projects, CategoryStatsPipeline(), &stats, "category stats"); err != nil {
		return nil, err
	}
	return stats, nil
}

func (a *Aggregator) totalViews(ctx context.Context) (int64, error) {
	var rows []struct {
		Total int64 `bson:"total"`
	}

	if err := aggregateAll(ctx, a.projects, TotalViewsPipeline(), &rows, "total views"); err != nil {
		return 0, err
	}

	if len(rows) == 0 {
		return 0, nil
	}

	return rows[0].Total, nil
}

func (a *Aggregator) topProjects(ctx context.Context, n int) ([]TopProject, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: fieldViews, Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$limit", Value: n}},
		{{Key: "$project", Value: bson.D{
			{Key: "name", Value: 1},
			{Key: "slug", Value: 1},
			{Key: "views", Value: "$" + fieldViews},
			{Key: "likes", Value: "$" + fieldLikes},
			{Key: "category", Value: "$" + fieldCategory},
		}}},
	}

	top := []TopProject{}
	if err := aggregateAll(ctx, a.projects, pipeline, &top, "top projects"); err != nil {
		return nil, err
	}
	return top, nil
}

func aggregateAll(ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline, out any, op string) error {
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return apperrors.Persistence(op, err)
	}

	if err := cursor.All(ctx, out); err != nil {
		return apperrors.Persistence(op, err)
	}

	return nil
}
