package buffer

import (
	"context"

	"codeberg.org/appspec/server/appspec/analytics"
)

// redis key patterns
const (
	// pageviews:pending - JSON-encoded page views waiting to be flushed
	keyPendingPageViews = "pageviews:pending"

	// upper bound on events moved per flush round
	defaultBatchSize = 500
)

// destination of flushed page views (analytics.Aggregator)
type Sink interface {
	InsertPageViews(ctx context.Context, views []analytics.PageView) error
}
