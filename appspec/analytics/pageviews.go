package analytics

import (
	"context"
	"strings"

	"codeberg.org/appspec/server/appspec/projects"
	apperrors "codeberg.org/appspec/server/internal/errors"
	"codeberg.org/appspec/server/internal/metrics"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// validates a page-view event and hands it to the configured recorder
func (a *Aggregator) RecordPageView(ctx context.Context, input PageViewInput) (*PageView, error) {
	view, err := a.NewPageView(input)
	if err != nil {
		return nil, err
	}

	if err := a.recorder.Record(ctx, *view); err != nil {
		return nil, err
	}

	return view, nil
}

// builds the stored form of a page view; timestamp defaults to now, session id to a fresh uuid
func (a *Aggregator) NewPageView(input PageViewInput) (*PageView, error) {
	projectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(input.ProjectID))
	if err != nil {
		return nil, apperrors.Validationf("projectId must be a valid project id")
	}

	if input.ScrollDepth != nil && (*input.ScrollDepth < 0 || *input.ScrollDepth > maxScrollDepth) {
		return nil, apperrors.Validationf("scrollDepth must be between 0 and 100")
	}

	if input.TimeOnPage != nil && *input.TimeOnPage < 0 {
		return nil, apperrors.Validationf("timeOnPage must be at least 0")
	}

	events := make([]projects.Document, 0, len(input.InteractionEvents))
	for i, event := range input.InteractionEvents {
		if !event.IsObject() {
			return nil, apperrors.Validationf("interactionEvents[%d] must be a JSON object", i)
		}
		events = append(events, event)
	}

	timestamp := a.now().UTC()
	if input.Timestamp != nil && !input.Timestamp.IsZero() {
		timestamp = input.Timestamp.UTC()
	}

	sessionID := strings.TrimSpace(input.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	view := &PageView{
		ProjectID:   projectID,
		Timestamp:   timestamp,
		UserAgent:   input.UserAgent,
		Referrer:    input.Referrer,
		SessionID:   sessionID,
		TimeOnPage:  input.TimeOnPage,
		ScrollDepth: input.ScrollDepth,
	}

	if len(events) > 0 {
		view.InteractionEvents = events
	}

	return view, nil
}

// direct insert; the Aggregator is its own Recorder when no buffer is configured
func (a *Aggregator) Record(ctx context.Context, view PageView) error {
	if _, err := a.pageviews.InsertOne(ctx, view); err != nil {
		return apperrors.Persistence("insert page view", err)
	}

	metrics.PageViewsRecordedTotal.WithLabelValues("direct").Inc()
	return nil
}

// bulk insert used by the page-view buffer flusher
func (a *Aggregator) InsertPageViews(ctx context.Context, views []PageView) error {
	if len(views) == 0 {
		return nil
	}

	docs := make([]any, len(views))
	for i := range views {
		docs[i] = views[i]
	}

	if _, err := a.pageviews.InsertMany(ctx, docs); err != nil {
		return apperrors.Persistence("insert page views", err)
	}

	return nil
}
