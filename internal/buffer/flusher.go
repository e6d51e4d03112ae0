package buffer

import (
	"context"
	"sync"
	"time"

	"codeberg.org/appspec/server/internal/logger"
	"codeberg.org/appspec/server/internal/metrics"
)

// handles periodic flushing of buffered page views from Redis to the document store
type Flusher struct {
	buffer   *PageViewBuffer
	sink     Sink
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// creates a new flusher that periodically drains the buffer into sink
func NewFlusher(buffer *PageViewBuffer, sink Sink, interval time.Duration) *Flusher {
	return &Flusher{
		buffer:   buffer,
		sink:     sink,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// begins the background flush loop
func (f *Flusher) Start() {
	f.wg.Add(1)
	go f.run()
	logger.Info("pageview flusher started", "interval", f.interval.String())
}

// gracefully stops the flusher and flushes any remaining data
func (f *Flusher) Stop() {
	f.stopOnce.Do(func() { close(f.stopCh) })
	f.wg.Wait()
	logger.Info("pageview flusher stopped")
}

func (f *Flusher) run() {
	defer f.wg.Done()

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			f.flush()
		case <-f.stopCh:
			// final flush before stopping
			logger.Info("flushing remaining page views before shutdown")
			f.flush()
			return
		}
	}
}

func (f *Flusher) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := f.Flush(ctx); err != nil {
		logger.ErrorErr(err, "pageview flush failed")
	}
}

// drains the buffer batch by batch; a failed insert puts its batch back and stops the round
func (f *Flusher) Flush(ctx context.Context) (int, error) {
	flushed := 0

	for {
		views, err := f.buffer.Pop(ctx)
		if err != nil {
			metrics.PageViewFlushesTotal.WithLabelValues("error").Inc()
			return flushed, err
		}

		if len(views) == 0 {
			break
		}

		if err := f.sink.InsertPageViews(ctx, views); err != nil {
			metrics.PageViewFlushesTotal.WithLabelValues("error").Inc()

			// re-add so we retry next flush
			f.buffer.Requeue(ctx, views) //nolint:errcheck,gosec // best-effort retry
			return flushed, err
		}

		flushed += len(views)

		if int64(len(views)) < f.buffer.batchSize {
			break
		}
	}

	if flushed > 0 {
		metrics.PageViewFlushesTotal.WithLabelValues("ok").Inc()
		logger.Debug("flushed page views", "count", flushed)
	}

	return flushed, nil
}
