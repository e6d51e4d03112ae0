package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// index definitions per collection
func indexModels() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		CollectionProjects: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true).SetName("slug_unique")},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}, Options: options.Index().SetName("created_at_desc")},
			{Keys: bson.D{{Key: "metadata.category", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("category_created_at")},
			{Keys: bson.D{{Key: "metadata.isTemplate", Value: 1}, {Key: "metadata.likes", Value: -1}}, Options: options.Index().SetName("template_likes")},
			{Keys: bson.D{{Key: "metadata.views", Value: -1}}, Options: options.Index().SetName("views_desc")},
		},
		CollectionAnalytics: {
			{Keys: bson.D{{Key: "date", Value: 1}}, Options: options.Index().SetUnique(true).SetName("date_unique")},
		},
		CollectionPageViews: {
			{Keys: bson.D{{Key: "timestamp", Value: -1}}, Options: options.Index().SetName("timestamp_desc")},
			{Keys: bson.D{{Key: "projectId", Value: 1}, {Key: "timestamp", Value: -1}}, Options: options.Index().SetName("project_timestamp")},
		},
	}
}

// creates the indexes the repositories rely on (slug and snapshot date uniqueness)
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for collection, models := range indexModels() {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", collection, err)
		}
	}

	return nil
}
