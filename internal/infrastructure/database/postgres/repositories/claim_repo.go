package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"

	"github.com/lib/pq"

	"github.com/turtacn/claimtrack/internal/domain/claim"
	"github.com/turtacn/claimtrack/internal/infrastructure/database/postgres"
	"github.com/turtacn/claimtrack/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/claimtrack/pkg/errors"
)

// execer is the part of *sql.DB the repository uses.
type execer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// ClaimRepository stores whole claim records as JSONB keyed by external id.
// The identity and date columns are copied out of the record for indexing.
type ClaimRepository struct {
	log      logging.Logger
	executor execer
}

var _ claim.Repository = (*ClaimRepository)(nil)

// NewClaimRepository returns a repository over conn.
func NewClaimRepository(conn *postgres.Connection, log logging.Logger) *ClaimRepository {
	return &ClaimRepository{
		log:      log,
		executor: conn.DB(),
	}
}

const selectClaimByExternalID = `
	SELECT record, version FROM claims WHERE external_id = $1
`

const upsertClaim = `
	INSERT INTO claims (
		external_id, claimant_name, defendant_name, issued_date, response_deadline, record
	) VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (external_id) DO UPDATE SET
		claimant_name = EXCLUDED.claimant_name,
		defendant_name = EXCLUDED.defendant_name,
		issued_date = EXCLUDED.issued_date,
		response_deadline = EXCLUDED.response_deadline,
		record = EXCLUDED.record,
		version = claims.version + 1,
		updated_at = NOW()
`

// FindByExternalID loads the record for externalID. A missing row yields a
// ClaimNotFound error.
func (r *ClaimRepository) FindByExternalID(ctx context.Context, externalID string) (*claim.Record, error) {
	row := r.executor.QueryRowContext(ctx, selectClaimByExternalID, externalID)
	rec, version, err := scanClaim(row)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.ClaimNotFound(externalID)
		}
		if errors.IsCode(err, errors.ErrCodeSerialization) {
			return nil, err
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load claim record")
	}
	r.log.Debug("Loaded claim record",
		logging.String("external_id", externalID),
		logging.Int("version", version))
	return rec, nil
}

func scanClaim(row *sql.Row) (*claim.Record, int, error) {
	var (
		raw     []byte
		version int
	)
	if err := row.Scan(&raw, &version); err != nil {
		return nil, 0, err
	}
	rec := &claim.Record{}
	if err := json.Unmarshal(raw, rec); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeSerialization, "stored claim record is not valid JSON")
	}
	return rec, version, nil
}

// Save inserts or replaces the record. Records that break the record
// invariants are refused.
func (r *ClaimRepository) Save(ctx context.Context, rec *claim.Record) error {
	if err := claim.Validate(rec); err != nil {
		return err
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode claim record")
	}

	_, err = r.executor.ExecContext(ctx, upsertClaim,
		rec.ExternalID, rec.ClaimantName, rec.DefendantName,
		rec.IssuedDate.String(), rec.ResponseDeadline.String(), raw,
	)
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code.Class() == "23" {
			return errors.Wrap(err, errors.ErrCodeConflict, "claim record violates a constraint").
				WithDetail("constraint=" + pqErr.Constraint)
		}
		r.log.Error("Failed to save claim record",
			logging.String("external_id", rec.ExternalID),
			logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to save claim record")
	}
	return nil
}
