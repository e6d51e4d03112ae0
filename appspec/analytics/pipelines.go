package analytics

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	fieldCategory = "metadata.category"
	fieldViews    = "metadata.views"
	fieldLikes    = "metadata.likes"
	fieldEntities = "requirements.entities"
	fieldRoles    = "requirements.roles"
	fieldDate     = "date"
	fieldTime     = "timestamp"

	dayFormat = "%Y-%m-%d"
)

// count, average views and summed likes per category; count desc, category asc
func CategoryStatsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + fieldCategory},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "avgViews", Value: bson.D{{Key: "$avg", Value: "$" + fieldViews}}},
			{Key: "totalLikes", Value: bson.D{{Key: "$sum", Value: "$" + fieldLikes}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
}

// single-pass sum of metadata.views
func TotalViewsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$" + fieldViews}}},
		}}},
	}
}

// project count and mean views, feeds the daily snapshot
func ProjectTotalsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "avgViews", Value: bson.D{{Key: "$avg", Value: "$" + fieldViews}}},
		}}},
	}
}

// flattens an array field and ranks its values by frequency; count desc, label asc.
// limit <= 0 returns every label.
func TopLabelsPipeline(field string, limit int) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$" + field}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}

	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}

	return pipeline
}

// frequency of a scalar field; count desc, label asc
func FieldCountsPipeline(field string, limit int) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}

	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}

	return pipeline
}

// page views since the window start, bucketed by UTC day, ascending
func DailyViewsPipeline(since time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: sinceFilter(since)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$dateToString", Value: bson.D{
				{Key: "format", Value: dayFormat},
				{Key: "date", Value: "$" + fieldTime},
			}}}},
			{Key: "views", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "projects", Value: bson.D{{Key: "$addToSet", Value: "$projectId"}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "date", Value: "$_id"},
			{Key: "views", Value: 1},
			{Key: "uniqueProjects", Value: bson.D{{Key: "$size", Value: "$projects"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "date", Value: 1}}}},
	}
}

// recomputes the running average from the accumulators in one atomic pipeline update
func SnapshotRefreshPipeline(totalProjects int64, averageProjectViews float64, now time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "averageResponseTime", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$gt", Value: bson.A{"$aiCalls", 0}}},
				bson.D{{Key: "$divide", Value: bson.A{"$totalResponseTime", "$aiCalls"}}},
				0,
			}}}},
			{Key: "totalProjects", Value: totalProjects},
			{Key: "averageProjectViews", Value: averageProjectViews},
			{Key: "updatedAt", Value: now},
		}}},
	}
}

func sinceFilter(since time.Time) bson.D {
	return bson.D{{Key: fieldTime, Value: bson.D{{Key: "$gte", Value: since}}}}
}
