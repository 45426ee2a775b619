package claim

import "context"

// Repository is the port to the claim store. Implementations return an
// errors.ErrCodeClaimNotFound AppError when no record exists.
type Repository interface {
	FindByExternalID(ctx context.Context, externalID string) (*Record, error)
	Save(ctx context.Context, r *Record) error
}
