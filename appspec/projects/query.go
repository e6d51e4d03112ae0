package projects

import (
	"regexp"
	"strings"

	"codeberg.org/appspec/server/internal/pagination"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultLimit   = 12
	MaxLimit       = 100
	TemplatesLimit = 20

	// category value that disables the category filter
	CategoryAll = "all"
)

// sortBy values understood by the search listing
const (
	SortRecent  = "recent"
	SortPopular = "popular"
	SortLiked   = "liked"
)

const (
	fieldID          = "_id"
	fieldName        = "name"
	fieldSlug        = "slug"
	fieldDescription = "description"
	fieldEntities    = "requirements.entities"
	fieldRoles       = "requirements.roles"
	fieldCategory    = "metadata.category"
	fieldViews       = "metadata.views"
	fieldLikes       = "metadata.likes"
	fieldIsTemplate  = "metadata.isTemplate"
	fieldGeneratedUI = "generatedUI"
	fieldCreatedAt   = "createdAt"
	fieldUpdatedAt   = "updatedAt"
)

// store-native form of a listing request
type Query struct {
	Filter     bson.D
	Sort       bson.D
	Projection bson.D
	Page       pagination.Params
}

func (q Query) Skip() int64 {
	return q.Page.Skip()
}

func (q Query) Limit() int64 {
	return int64(q.Page.Limit)
}

// translates client filter/search/sort/pagination parameters into a Query
func BuildQuery(params ListParams) Query {
	return Query{
		Filter:     BuildFilter(params),
		Sort:       SortFor(params.SortBy),
		Projection: ListProjection(),
		Page:       pagination.DefaultParams(params.Page, params.Limit, DefaultLimit, MaxLimit),
	}
}

// category AND search AND entities AND roles; each clause only when present
func BuildFilter(params ListParams) bson.D {
	filter := bson.D{}

	if category := strings.TrimSpace(params.Category); category != "" && category != CategoryAll {
		filter = append(filter, bson.E{Key: fieldCategory, Value: category})
	}

	if search := strings.TrimSpace(params.Search); search != "" {
		pattern := containsPattern(search)
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: fieldName, Value: pattern}},
			bson.D{{Key: fieldDescription, Value: pattern}},
			bson.D{{Key: fieldEntities, Value: pattern}},
		}})
	}

	if entities := cleanList(params.Entities); len(entities) > 0 {
		filter = append(filter, bson.E{Key: fieldEntities, Value: bson.D{{Key: "$all", Value: exactPatterns(entities)}}})
	}

	if roles := cleanList(params.Roles); len(roles) > 0 {
		filter = append(filter, bson.E{Key: fieldRoles, Value: bson.D{{Key: "$all", Value: exactPatterns(roles)}}})
	}

	return filter
}

// every ordering ends on _id so page boundaries are stable
func SortFor(sortBy string) bson.D {
	switch sortBy {
	case SortPopular:
		return bson.D{{Key: fieldViews, Value: -1}, {Key: fieldCreatedAt, Value: -1}, {Key: fieldID, Value: -1}}
	case SortLiked:
		return bson.D{{Key: fieldLikes, Value: -1}, {Key: fieldCreatedAt, Value: -1}, {Key: fieldID, Value: -1}}
	default:
		return bson.D{{Key: fieldCreatedAt, Value: -1}, {Key: fieldID, Value: -1}}
	}
}

// likes desc, then most recent
func TemplatesSort() bson.D {
	return bson.D{{Key: fieldLikes, Value: -1}, {Key: fieldCreatedAt, Value: -1}, {Key: fieldID, Value: -1}}
}

// list views never carry the generated UI payload
func ListProjection() bson.D {
	return bson.D{{Key: fieldGeneratedUI, Value: 0}}
}

// normalizes a sortBy value, unknown values fall back to recent
func NormalizeSort(sortBy string) string {
	switch strings.ToLower(strings.TrimSpace(sortBy)) {
	case SortPopular:
		return SortPopular
	case SortLiked:
		return SortLiked
	default:
		return SortRecent
	}
}

// search listings rank by likes unless the caller picks an order
func SearchSort(sortBy string) string {
	if strings.TrimSpace(sortBy) == "" {
		return SortLiked
	}
	return NormalizeSort(sortBy)
}

// splits a comma-separated query value into trimmed, non-empty items
func SplitList(raw string) []string {
	if raw == "" {
		return nil
	}

	return cleanList(strings.Split(raw, ","))
}

// case-insensitive substring match; the term is matched literally
func containsPattern(term string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
}

// case-insensitive whole-value match
func exactPatterns(values []string) bson.A {
	patterns := make(bson.A, 0, len(values))
	for _, v := range values {
		patterns = append(patterns, primitive.Regex{Pattern: "^" + regexp.QuoteMeta(v) + "$", Options: "i"})
	}
	return patterns
}

func cleanList(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
