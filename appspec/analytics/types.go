package analytics

import (
	"context"
	"time"

	"codeberg.org/appspec/server/appspec/projects"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	// top-N used by the dashboard for projects, entities and roles
	DashboardTopN = 5

	PeriodDay     = "24h"
	PeriodWeek    = "7d"
	PeriodMonth   = "30d"
	PeriodQuarter = "90d"

	DefaultPeriod = PeriodWeek

	maxScrollDepth = 100
)

type Aggregator struct {
	projects  *mongo.Collection
	snapshots *mongo.Collection
	pageviews *mongo.Collection
	recorder  Recorder
	now       func() time.Time
	readLimit int
}

// where page views go: straight into the store, or through a write buffer
type Recorder interface {
	Record(ctx context.Context, view PageView) error
}

// one day's precomputed platform statistics, keyed by UTC midnight
type Snapshot struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Date                time.Time          `bson:"date" json:"date"`
	AICalls             int64              `bson:"aiCalls" json:"aiCalls"`
	TotalTokensUsed     int64              `bson:"totalTokensUsed" json:"totalTokensUsed"`
	TotalResponseTime   int64              `bson:"totalResponseTime" json:"-"`
	AverageResponseTime float64            `bson:"averageResponseTime" json:"averageResponseTime"`
	PopularCategories   map[string]int64   `bson:"popularCategories" json:"popularCategories"`
	PopularEntities     map[string]int64   `bson:"popularEntities" json:"popularEntities"`
	AverageProjectViews float64            `bson:"averageProjectViews" json:"averageProjectViews"`
	TotalProjects       int64              `bson:"totalProjects" json:"totalProjects"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// append-only telemetry event
type PageView struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty" json:"-"`
	ProjectID         primitive.ObjectID  `bson:"projectId" json:"projectId"`
	Timestamp         time.Time           `bson:"timestamp" json:"timestamp"`
	UserAgent         string              `bson:"userAgent" json:"userAgent"`
	Referrer          string              `bson:"referrer" json:"referrer"`
	SessionID         string              `bson:"sessionId" json:"sessionId"`
	TimeOnPage        *float64            `bson:"timeOnPage,omitempty" json:"timeOnPage,omitempty"`
	ScrollDepth       *float64            `bson:"scrollDepth,omitempty" json:"scrollDepth,omitempty"`
	InteractionEvents []projects.Document `bson:"interactionEvents,omitempty" json:"interactionEvents,omitempty"`
}

type PageViewInput struct {
	ProjectID         string              `json:"projectId" binding:"required"`
	UserAgent         string              `json:"userAgent" binding:"max=1000"`
	Referrer          string              `json:"referrer" binding:"max=2000"`
	SessionID         string              `json:"sessionId" binding:"max=200"`
	TimeOnPage        *float64            `json:"timeOnPage,omitempty" binding:"omitempty,min=0"`
	ScrollDepth       *float64            `json:"scrollDepth,omitempty" binding:"omitempty,min=0,max=100"`
	InteractionEvents []projects.Document `json:"interactionEvents,omitempty" binding:"max=500"`
	Timestamp         *time.Time          `json:"timestamp,omitempty"`
}

type PlatformSummary struct {
	TotalProjects   int64          `json:"totalProjects"`
	TotalViews      int64          `json:"totalViews"`
	CategoryStats   []CategoryStat `json:"categoryStats"`
	AICalls         int64          `json:"aiCalls"`
	TotalTokensUsed int64          `json:"totalTokensUsed"`
}

type CategoryStat struct {
	Category   string  `bson:"_id" json:"category"`
	Count      int64   `bson:"count" json:"count"`
	AvgViews   float64 `bson:"avgViews" json:"avgViews"`
	TotalLikes int64   `bson:"totalLikes" json:"totalLikes"`
}

type Dashboard struct {
	Period        string         `json:"period"`
	Since         time.Time      `json:"since"`
	RecentViews   int64          `json:"recentViews"`
	TopProjects   []TopProject   `json:"topProjects"`
	CategoryStats []CategoryStat `json:"categoryStats"`
	DailyViews    []DailyViews   `json:"dailyViews"`
	TopEntities   []LabelCount   `json:"topEntities"`
	TopRoles      []LabelCount   `json:"topRoles"`
}

type TopProject struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Slug     string             `bson:"slug" json:"slug"`
	Views    int64              `bson:"views" json:"views"`
	Likes    int64              `bson:"likes" json:"likes"`
	Category string             `bson:"category" json:"category"`
}

// one UTC calendar day of page views
type DailyViews struct {
	Date           string `bson:"date" json:"date"` // YYYY-MM-DD
	Views          int64  `bson:"views" json:"views"`
	UniqueProjects int64  `bson:"uniqueProjects" json:"uniqueProjects"`
}

// a label and how many projects carry it
type LabelCount struct {
	Name  string `bson:"_id" json:"name"`
	Count int64  `bson:"count" json:"count"`
}
