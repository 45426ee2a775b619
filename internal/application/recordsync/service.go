// Package recordsync applies claim records published by the upstream claim
// store to the local repository, so the dashboard reads current data.
package recordsync

import (
	"context"

	"github.com/turtacn/claimtrack/internal/domain/claim"
	"github.com/turtacn/claimtrack/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/claimtrack/pkg/errors"
)

// Outcome labels recorded for each applied update.
const (
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// MetricsRecorder receives one outcome per update.
type MetricsRecorder interface {
	RecordSync(outcome string)
}

type noopMetrics struct{}

func (noopMetrics) RecordSync(string) {}

// Service stores claim record updates.
type Service struct {
	repo    claim.Repository
	metrics MetricsRecorder
	logger  logging.Logger
}

// NewService creates the sync service. metrics may be nil.
func NewService(repo claim.Repository, metrics MetricsRecorder, logger logging.Logger) *Service {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Service{repo: repo, metrics: metrics, logger: logger.Named("recordsync")}
}

// Apply validates rec and saves it. A record that breaks an invariant is
// rejected with errors.ErrCodeInvalidRecord and never reaches the store.
func (s *Service) Apply(ctx context.Context, rec *claim.Record) error {
	if err := claim.Validate(rec); err != nil {
		s.metrics.RecordSync(OutcomeRejected)
		s.logger.Warn("claim record update rejected",
			logging.String("external_id", externalID(rec)),
			logging.Err(err))
		return err
	}

	if err := s.repo.Save(ctx, rec); err != nil {
		s.metrics.RecordSync(OutcomeFailed)
		s.logger.Error("failed to store claim record update",
			logging.String("external_id", rec.ExternalID),
			logging.Err(err))
		return err
	}

	s.metrics.RecordSync(OutcomeApplied)
	s.logger.Debug("claim record update applied", logging.String("external_id", rec.ExternalID))
	return nil
}

// Retryable reports whether a failed Apply may succeed on redelivery.
// Malformed and invalid records never will.
func Retryable(err error) bool {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidRecord, errors.ErrCodeSerialization, errors.ErrCodeValidation, errors.CodeInvalidParam:
		return false
	}
	return true
}

func externalID(rec *claim.Record) string {
	if rec == nil {
		return ""
	}
	return rec.ExternalID
}
