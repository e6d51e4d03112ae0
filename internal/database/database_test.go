package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0

	err := retry(context.Background(), 3, time.Millisecond, func(attempt int) error {
		calls++
		if attempt < 3 {
			return errors.New("not yet")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_ReturnsLastError(t *testing.T) {
	calls := 0

	err := retry(context.Background(), 2, time.Millisecond, func(int) error {
		calls++
		return errors.New("down")
	})

	assert.EqualError(t, err, "down")
	assert.Equal(t, 2, calls)
}

func TestRetry_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := retry(ctx, 5, time.Hour, func(int) error {
		calls++
		return errors.New("down")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestIndexModels_UniqueKeys(t *testing.T) {
	models := indexModels()

	require.Contains(t, models, CollectionProjects)
	require.Contains(t, models, CollectionAnalytics)
	require.Contains(t, models, CollectionPageViews)

	slugIndex := models[CollectionProjects][0]
	require.NotNil(t, slugIndex.Options.Unique)
	assert.True(t, *slugIndex.Options.Unique)

	dateIndex := models[CollectionAnalytics][0]
	require.NotNil(t, dateIndex.Options.Unique)
	assert.True(t, *dateIndex.Options.Unique)
}
