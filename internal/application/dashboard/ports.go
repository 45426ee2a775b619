package dashboard

import (
	"context"
	"time"

	"github.com/turtacn/claimtrack/internal/domain/claim"
	"github.com/turtacn/claimtrack/internal/domain/narrative"
)

// Clock supplies the reference instant for I/O-facing calls.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
func SystemClock() Clock { return ClockFunc(time.Now) }

// FixedClock always returns t.
func FixedClock(t time.Time) Clock { return ClockFunc(func() time.Time { return t }) }

// ViewedEvent records that a party was shown a dashboard.
type ViewedEvent struct {
	EventID      string           `json:"event_id"`
	ExternalID   string           `json:"external_id"`
	Viewer       narrative.Viewer `json:"viewer"`
	State        claim.State      `json:"state"`
	Rule         string           `json:"rule"`
	NarrativeKey string           `json:"narrative_key"`
	OccurredAt   time.Time        `json:"occurred_at"`
}

// EventPublisher delivers dashboard events.
type EventPublisher interface {
	PublishDashboardViewed(ctx context.Context, event *ViewedEvent) error
}

// MetricsRecorder receives classification outcomes.
type MetricsRecorder interface {
	RecordClassification(state claim.State, viewer narrative.Viewer, duration time.Duration)
	RecordClassificationFailure(code string)
}

type noopPublisher struct{}

func (noopPublisher) PublishDashboardViewed(context.Context, *ViewedEvent) error { return nil }

type noopMetrics struct{}

func (noopMetrics) RecordClassification(claim.State, narrative.Viewer, time.Duration) {}
func (noopMetrics) RecordClassificationFailure(string)                              {}
