package projects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func lookup(t *testing.T, d bson.D, key string) any {
	t.Helper()
	for _, e := range d {
		if e.Key == key {
			return e.Value
		}
	}
	return nil
}

func TestBuildQuery_Defaults(t *testing.T) {
	q := BuildQuery(ListParams{})

	assert.Empty(t, q.Filter)
	assert.Equal(t, 1, q.Page.Page)
	assert.Equal(t, int64(DefaultLimit), q.Limit())
	assert.Equal(t, int64(0), q.Skip())
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}, q.Sort)
	assert.Equal(t, bson.D{{Key: "generatedUI", Value: 0}}, q.Projection)
}

func TestBuildQuery_Pagination(t *testing.T) {
	q := BuildQuery(ListParams{Page: 3, Limit: 10})
	assert.Equal(t, int64(20), q.Skip())
	assert.Equal(t, int64(10), q.Limit())

	q = BuildQuery(ListParams{Page: -2, Limit: 10_000})
	assert.Equal(t, int64(0), q.Skip())
	assert.Equal(t, int64(MaxLimit), q.Limit())

	q = BuildQuery(ListParams{Page: 1 << 62, Limit: 100})
	assert.Positive(t, q.Skip())
}

func TestBuildFilter_Category(t *testing.T) {
	assert.Empty(t, BuildFilter(ListParams{Category: "all"}))
	assert.Empty(t, BuildFilter(ListParams{Category: "  "}))

	filter := BuildFilter(ListParams{Category: "Finance"})
	assert.Equal(t, "Finance", lookup(t, filter, "metadata.category"), "category match is exact and case-sensitive")
}

func TestBuildFilter_SearchIsLiteralCaseInsensitiveSubstring(t *testing.T) {
	filter := BuildFilter(ListParams{Search: " c++ (beta) ", Category: "social"})

	assert.Equal(t, "social", lookup(t, filter, "metadata.category"))

	or, ok := lookup(t, filter, "$or").(bson.A)
	require.True(t, ok)
	require.Len(t, or, 3)

	fields := []string{"name", "description", "requirements.entities"}
	for i, clause := range or {
		d := clause.(bson.D)
		require.Len(t, d, 1)
		assert.Equal(t, fields[i], d[0].Key)

		re := d[0].Value.(primitive.Regex)
		assert.Equal(t, `c\+\+ \(beta\)`, re.Pattern)
		assert.Equal(t, "i", re.Options)
	}
}

func TestBuildFilter_EntitiesAndRolesRequireAll(t *testing.T) {
	filter := BuildFilter(ListParams{
		Entities: []string{"User", " ", "Order"},
		Roles:    []string{"admin"},
	})

	entities := lookup(t, filter, "requirements.entities").(bson.D)
	all := entities[0].Value.(bson.A)
	assert.Equal(t, "$all", entities[0].Key)
	require.Len(t, all, 2)
	assert.Equal(t, primitive.Regex{Pattern: "^User$", Options: "i"}, all[0])
	assert.Equal(t, primitive.Regex{Pattern: "^Order$", Options: "i"}, all[1])

	roles := lookup(t, filter, "requirements.roles").(bson.D)
	assert.Len(t, roles[0].Value.(bson.A), 1)
}

func TestSortFor(t *testing.T) {
	tests := []struct {
		sortBy string
		first  string
	}{
		{SortRecent, "createdAt"},
		{"", "createdAt"},
		{"bogus", "createdAt"},
		{SortPopular, "metadata.views"},
		{SortLiked, "metadata.likes"},
	}

	for _, tt := range tests {
		t.Run(tt.sortBy, func(t *testing.T) {
			sort := SortFor(tt.sortBy)
			assert.Equal(t, tt.first, sort[0].Key)
			assert.Equal(t, -1, sort[0].Value)

			// total order for stable pagination
			assert.Equal(t, "_id", sort[len(sort)-1].Key)
		})
	}
}

func TestTemplatesSort(t *testing.T) {
	sort := TemplatesSort()
	require.Len(t, sort, 3)
	assert.Equal(t, "metadata.likes", sort[0].Key)
	assert.Equal(t, "createdAt", sort[1].Key)
}

func TestNormalizeSort(t *testing.T) {
	assert.Equal(t, SortPopular, NormalizeSort(" Popular "))
	assert.Equal(t, SortLiked, NormalizeSort("liked"))
	assert.Equal(t, SortRecent, NormalizeSort("oldest"))
}

func TestSearchSort(t *testing.T) {
	assert.Equal(t, SortLiked, SearchSort(""))
	assert.Equal(t, SortLiked, SearchSort("  "))
	assert.Equal(t, SortRecent, SearchSort("recent"))
	assert.Equal(t, SortPopular, SearchSort("POPULAR"))
	assert.Equal(t, SortRecent, SearchSort("oldest"))
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, SplitList(""))
	assert.Equal(t, []string{"User", "Order"}, SplitList("User, ,Order,"))
}
