package analytics

import (
	"context"
	"sort"
	"strings"
	"time"

	"codeberg.org/appspec/server/appspec/projects"
	apperrors "codeberg.org/appspec/server/internal/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// folds one project creation into today's snapshot.
// runs off the request path; its errors go to the background runner, never to the caller.
func (a *Aggregator) IngestCreationEvent(ctx context.Context, event projects.CreationEvent) error {
	now := a.now().UTC()
	day := SnapshotDate(now)

	filter := bson.D{{Key: fieldDate, Value: day}}

	update := bson.D{
		{Key: "$inc", Value: creationIncrements(event)},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: now}}},
		{Key: "$setOnInsert", Value: bson.D{{Key: "createdAt", Value: now}}},
	}

	if _, err := a.snapshots.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return apperrors.Persistence("upsert snapshot", err)
	}

	totals, err := a.projectTotals(ctx)
	if err != nil {
		return err
	}

	refresh := SnapshotRefreshPipeline(totals.Total, totals.AvgViews, now)
	if _, err := a.snapshots.UpdateOne(ctx, filter, refresh); err != nil {
		return apperrors.Persistence("refresh snapshot averages", err)
	}

	return nil
}

// UTC midnight of t
func SnapshotDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// $inc document for one creation event; label counters are merged and emitted in key order
func creationIncrements(event projects.CreationEvent) bson.D {
	inc := bson.D{
		{Key: "aiCalls", Value: int64(1)},
		{Key: "totalTokensUsed", Value: max(event.Stats.TokensUsed, 0)},
		{Key: "totalResponseTime", Value: max(event.Stats.ResponseTime, 0)},
	}

	category := event.Category
	if category == "" {
		category = projects.CategoryOther
	}
	inc = append(inc, bson.E{Key: "popularCategories." + SanitizeKey(category), Value: int64(1)})

	entities := make(map[string]int64)
	for _, entity := range event.Entities {
		if entity = strings.TrimSpace(entity); entity != "" {
			entities[SanitizeKey(entity)]++
		}
	}

	keys := make([]string, 0, len(entities))
	for k := range entities {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		inc = append(inc, bson.E{Key: "popularEntities." + k, Value: entities[k]})
	}

	return inc
}

// makes a label safe to use as a document field name
func SanitizeKey(label string) string {
	key := strings.ReplaceAll(label, ".", "_")
	if strings.HasPrefix(key, "$") {
		key = "_" + key[1:]
	}
	return key
}

type projectTotals struct {
	Total    int64   `bson:"total"`
	AvgViews float64 `bson:"avgViews"`
}

func (a *Aggregator) projectTotals(ctx context.Context) (projectTotals, error) {
	var rows []projectTotals
	if err := aggregateAll(ctx, a.projects, ProjectTotalsPipeline(), &rows, "project totals"); err != nil {
		return projectTotals{}, err
	}

	if len(rows) == 0 {
		return projectTotals{}, nil
	}

	return rows[0], nil
}
