package pagination

import "math"

// Params holds page-based pagination parameters from a request
type Params struct {
	Page  int
	Limit int
}

// Meta holds pagination metadata for response
type Meta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// DefaultParams returns pagination params with defaults applied.
// page < 1 becomes 1; limit < 1 becomes defaultLimit and is capped at maxLimit.
// page is capped so that Skip never overflows int64.
func DefaultParams(page, limit, defaultLimit, maxLimit int) Params {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if limit > 0 {
		if lastPage := math.MaxInt64 / int64(limit); int64(page) > lastPage {
			page = int(lastPage)
		}
	}
	return Params{
		Page:  page,
		Limit: limit,
	}
}

// Skip is the number of documents before the first one on this page
func (p Params) Skip() int64 {
	return int64(p.Page-1) * int64(p.Limit)
}

// NewMeta creates pagination metadata from params and total count
func NewMeta(params Params, total int64) Meta {
	return Meta{
		Page:  params.Page,
		Limit: params.Limit,
		Total: total,
		Pages: PageCount(total, params.Limit),
	}
}

// PageCount is ceil(total/limit)
func PageCount(total int64, limit int) int64 {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
