package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/claimtrack/internal/domain/claim"
)

// MockClaimRepository is a testify mock of claim.Repository.
type MockClaimRepository struct {
	mock.Mock
}

func (m *MockClaimRepository) FindByExternalID(ctx context.Context, externalID string) (*claim.Record, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*claim.Record), args.Error(1)
}

func (m *MockClaimRepository) Save(ctx context.Context, r *claim.Record) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}
