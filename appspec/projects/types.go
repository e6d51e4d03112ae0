package projects

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// project categories accepted by metadata.category
const (
	CategoryBusiness      = "business"
	CategoryProductivity  = "productivity"
	CategorySocial        = "social"
	CategoryEducation     = "education"
	CategoryHealthcare    = "healthcare"
	CategoryFinance       = "finance"
	CategoryEcommerce     = "ecommerce"
	CategoryEntertainment = "entertainment"
	CategoryOther         = "other"
)

// Categories lists the enumerated category set in display order
var Categories = []string{
	CategoryBusiness,
	CategoryProductivity,
	CategorySocial,
	CategoryEducation,
	CategoryHealthcare,
	CategoryFinance,
	CategoryEcommerce,
	CategoryEntertainment,
	CategoryOther,
}

type Repository struct {
	projects   *mongo.Collection
	clock      *slugClock
	now        func() time.Time
	background Launcher
	onCreate   CreationHook
}

// runs best-effort work outside the request path (see internal/background)
type Launcher interface {
	Go(ctx context.Context, task string, fn func(ctx context.Context) error)
}

// receives the analytics sub-document of every newly created project
type CreationHook func(ctx context.Context, event CreationEvent) error

type CreationEvent struct {
	ProjectID primitive.ObjectID
	Category  string
	Entities  []string
	Stats     GenerationStats
	CreatedAt time.Time
}

// one user-submitted application requirements document
type Project struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Slug         string             `bson:"slug" json:"slug"`
	Description  string             `bson:"description" json:"description"`
	Requirements Requirements       `bson:"requirements" json:"requirements"`
	GeneratedUI  Document           `bson:"generatedUI,omitempty" json:"generatedUI,omitempty"`
	Analytics    GenerationStats    `bson:"analytics" json:"analytics"`
	Metadata     Metadata           `bson:"metadata" json:"metadata"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type Requirements struct {
	AppName        string   `bson:"appName" json:"appName" binding:"max=200"`
	Entities       []string `bson:"entities" json:"entities" binding:"max=100,dive,max=100"`
	Roles          []string `bson:"roles" json:"roles" binding:"max=50,dive,max=100"`
	Features       []string `bson:"features" json:"features" binding:"max=200,dive,max=500"`
	OriginalPrompt string   `bson:"originalPrompt" json:"originalPrompt" binding:"max=20000"`
}

// describes the AI call that produced the project
type GenerationStats struct {
	AIModel        string    `bson:"aiModel" json:"aiModel" binding:"max=100"`
	TokensUsed     int64     `bson:"tokensUsed" json:"tokensUsed" binding:"min=0"`
	ResponseTime   int64     `bson:"responseTime" json:"responseTime" binding:"min=0"` // milliseconds
	GenerationDate time.Time `bson:"generationDate" json:"generationDate"`
}

type Metadata struct {
	Category   string   `bson:"category" json:"category"`
	Views      int64    `bson:"views" json:"views"`
	Likes      int64    `bson:"likes" json:"likes"`
	IsTemplate bool     `bson:"isTemplate" json:"isTemplate"`
	Tags       []string `bson:"tags" json:"tags"`
}

type CreateProjectRequest struct {
	Name         string          `json:"name" binding:"required,max=100"`
	Description  string          `json:"description" binding:"required,max=1000"`
	Requirements Requirements    `json:"requirements"`
	Analytics    GenerationStats `json:"analytics"`
	Metadata     MetadataInput   `json:"metadata"`
}

type MetadataInput struct {
	Category   string   `json:"category,omitempty" binding:"omitempty,oneof=business productivity social education healthcare finance ecommerce entertainment other"`
	Views      *int64   `json:"views,omitempty" binding:"omitempty,min=0"`
	Likes      *int64   `json:"likes,omitempty" binding:"omitempty,min=0"`
	IsTemplate bool     `json:"isTemplate,omitempty"`
	Tags       []string `json:"tags,omitempty" binding:"max=20,dive,max=50"`
}

// list/search inputs; zero values mean "use the default"
type ListParams struct {
	Page     int
	Limit    int
	Category string
	Search   string
	Entities []string
	Roles    []string
	SortBy   string
}
