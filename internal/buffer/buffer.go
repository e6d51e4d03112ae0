package buffer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"codeberg.org/appspec/server/appspec/analytics"
	"codeberg.org/appspec/server/internal/logger"
	"codeberg.org/appspec/server/internal/metrics"
)

// handles Redis-backed buffering of page-view events
type PageViewBuffer struct {
	client    *redis.Client
	key       string
	batchSize int64
}

// creates a new page-view buffer with Redis connection
func NewPageViewBuffer(redisURL string) (*PageViewBuffer, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	// test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("connected to redis")

	return NewPageViewBufferWithClient(client), nil
}

// wraps an existing client (tests, shared connections)
func NewPageViewBufferWithClient(client *redis.Client) *PageViewBuffer {
	return &PageViewBuffer{
		client:    client,
		key:       keyPendingPageViews,
		batchSize: defaultBatchSize,
	}
}

// closes the Redis connection
func (b *PageViewBuffer) Close() error {
	return b.client.Close()
}

// appends a page view to the pending list (analytics.Recorder)
func (b *PageViewBuffer) Record(ctx context.Context, view analytics.PageView) error {
	payload, err := encode(view)
	if err != nil {
		return err
	}

	if err := b.client.RPush(ctx, b.key, payload).Err(); err != nil {
		return fmt.Errorf("failed to buffer page view: %w", err)
	}

	metrics.PageViewsRecordedTotal.WithLabelValues("buffered").Inc()
	return nil
}

// removes up to batchSize events from the head of the list.
// undecodable entries are logged and dropped.
func (b *PageViewBuffer) Pop(ctx context.Context) ([]analytics.PageView, error) {
	raw, err := b.client.LPopCount(ctx, b.key, int(b.batchSize)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to pop page views: %w", err)
	}

	views := make([]analytics.PageView, 0, len(raw))
	for _, item := range raw {
		view, err := decode(item)
		if err != nil {
			logger.ErrorErr(err, "failed to unmarshal buffered page view")
			continue
		}
		views = append(views, view)
	}

	return views, nil
}

// puts events back at the head of the list after a failed flush
func (b *PageViewBuffer) Requeue(ctx context.Context, views []analytics.PageView) error {
	if len(views) == 0 {
		return nil
	}

	payloads := make([]any, 0, len(views))
	for i := len(views) - 1; i >= 0; i-- {
		payload, err := encode(views[i])
		if err != nil {
			return err
		}
		payloads = append(payloads, payload)
	}

	return b.client.LPush(ctx, b.key, payloads...).Err()
}

// number of events waiting to be flushed
func (b *PageViewBuffer) Len(ctx context.Context) (int64, error) {
	return b.client.LLen(ctx, b.key).Result()
}

func encode(view analytics.PageView) (string, error) {
	payload, err := json.Marshal(view)
	if err != nil {
		return "", fmt.Errorf("failed to marshal page view: %w", err)
	}
	return string(payload), nil
}

func decode(payload string) (analytics.PageView, error) {
	var view analytics.PageView
	err := json.Unmarshal([]byte(payload), &view)
	return view, err
}
