package analytics

import (
	"context"

	"codeberg.org/appspec/server/appspec/analytics"
)

// the aggregator operations the analytics routes need
type Aggregator interface {
	PlatformSummary(ctx context.Context) (*analytics.PlatformSummary, error)
	Dashboard(ctx context.Context, period string) (*analytics.Dashboard, error)
	RecordPageView(ctx context.Context, input analytics.PageViewInput) (*analytics.PageView, error)
}

type MessageResponse struct {
	Message string `json:"message"`
}
