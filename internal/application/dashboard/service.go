package dashboard

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/claimtrack/internal/domain/claim"
	"github.com/turtacn/claimtrack/internal/domain/narrative"
	"github.com/turtacn/claimtrack/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/claimtrack/pkg/errors"
)

// Service is the dashboard facade used by the HTTP and CLI layers.
type Service interface {
	// Present is the pure pipeline: classify r at now and select the
	// narrative for viewer.
	Present(r *claim.Record, viewer narrative.Viewer, now time.Time) (*View, error)

	// ViewClaim loads a stored record and presents it at the request instant,
	// or at the service clock when the request has none.
	ViewClaim(ctx context.Context, req *ViewRequest) (*View, error)

	// Classify presents a record supplied by the caller.
	Classify(ctx context.Context, req *ClassifyRequest) (*View, error)

	// Rules returns the classification precedence table.
	Rules() []claim.RuleInfo
}

// ViewRequest asks for the dashboard of a stored claim.
type ViewRequest struct {
	ExternalID string
	Viewer     narrative.Viewer
	Now        *time.Time
}

// Validate checks the request fields.
func (r *ViewRequest) Validate() error {
	if r == nil {
		return errors.InvalidParam("view request is nil")
	}
	if strings.TrimSpace(r.ExternalID) == "" {
		return errors.InvalidParam("external id is required")
	}
	if !r.Viewer.IsValid() {
		return errors.InvalidParam("unknown viewer").WithDetail("viewer=" + string(r.Viewer))
	}
	return nil
}

// ClassifyRequest asks for the dashboard of a record the caller holds.
type ClassifyRequest struct {
	Record *claim.Record
	Viewer narrative.Viewer
	Now    *time.Time
}

// Validate checks the request fields. The record itself is validated by
// the classifier.
func (r *ClassifyRequest) Validate() error {
	if r == nil || r.Record == nil {
		return errors.InvalidParam("record is required")
	}
	if !r.Viewer.IsValid() {
		return errors.InvalidParam("unknown viewer").WithDetail("viewer=" + string(r.Viewer))
	}
	return nil
}

// Option configures the service.
type Option func(*serviceImpl)

// WithClock overrides the system clock.
func WithClock(c Clock) Option {
	return func(s *serviceImpl) { s.clock = c }
}

// WithPublisher sets the view event publisher.
func WithPublisher(p EventPublisher) Option {
	return func(s *serviceImpl) { s.publisher = p }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(s *serviceImpl) { s.metrics = m }
}

type serviceImpl struct {
	presenter *Presenter
	repo      claim.Repository
	clock     Clock
	publisher EventPublisher
	metrics   MetricsRecorder
	logger    logging.Logger
}

// NewService creates the dashboard service. repo may be nil for callers that
// only classify supplied records.
func NewService(repo claim.Repository, deadlines claim.DeadlineEvaluator, logger logging.Logger, opts ...Option) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &serviceImpl{
		presenter: NewPresenter(deadlines),
		repo:      repo,
		clock:     SystemClock(),
		publisher: noopPublisher{},
		metrics:   noopMetrics{},
		logger:    logger.Named("dashboard"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *serviceImpl) Present(r *claim.Record, viewer narrative.Viewer, now time.Time) (*View, error) {
	return s.presenter.Present(r, viewer, now)
}

func (s *serviceImpl) Rules() []claim.RuleInfo {
	return s.presenter.Rules()
}

func (s *serviceImpl) ViewClaim(ctx context.Context, req *ViewRequest) (*View, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if s.repo == nil {
		return nil, errors.Unavailable("claim store is not configured")
	}

	rec, err := s.repo.FindByExternalID(ctx, req.ExternalID)
	if err != nil {
		if !errors.IsNotFound(err) {
			s.logger.Error("failed to load claim record",
				logging.String("external_id", req.ExternalID),
				logging.Err(err))
		}
		return nil, err
	}
	if rec == nil {
		return nil, errors.ClaimNotFound(req.ExternalID)
	}

	view, err := s.present(rec, req.Viewer, s.instant(req.Now))
	if err != nil {
		return nil, err
	}
	s.publish(ctx, view)
	return view, nil
}

func (s *serviceImpl) Classify(ctx context.Context, req *ClassifyRequest) (*View, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.present(req.Record, req.Viewer, s.instant(req.Now))
}

func (s *serviceImpl) instant(now *time.Time) time.Time {
	if now != nil {
		return *now
	}
	return s.clock.Now()
}

// present runs the pipeline with metrics and defect logging.
func (s *serviceImpl) present(rec *claim.Record, viewer narrative.Viewer, now time.Time) (*View, error) {
	start := time.Now()
	view, err := s.presenter.Present(rec, viewer, now)
	if err != nil {
		code := errors.GetCode(err)
		s.metrics.RecordClassificationFailure(string(code))
		s.logger.Error("dashboard presentation failed",
			logging.String("external_id", rec.ExternalID),
			logging.String("viewer", string(viewer)),
			logging.String("error_code", string(code)),
			logging.Err(err))
		return nil, err
	}
	s.metrics.RecordClassification(view.State, viewer, time.Since(start))
	s.logger.Debug("dashboard presented",
		logging.String("external_id", view.ExternalID),
		logging.String("viewer", string(viewer)),
		logging.String("state", string(view.State)),
		logging.String("narrative_key", view.Narrative.Key))
	return view, nil
}

// publish emits a ViewedEvent. Delivery failures are logged only.
func (s *serviceImpl) publish(ctx context.Context, view *View) {
	event := &ViewedEvent{
		EventID:      uuid.NewString(),
		ExternalID:   view.ExternalID,
		Viewer:       view.Viewer,
		State:        view.State,
		Rule:         view.Rule,
		NarrativeKey: view.Narrative.Key,
		OccurredAt:   s.clock.Now(),
	}
	if err := s.publisher.PublishDashboardViewed(ctx, event); err != nil {
		s.logger.Warn("failed to publish dashboard view event",
			logging.String("external_id", view.ExternalID),
			logging.String("event_id", event.EventID),
			logging.Err(err))
	}
}
