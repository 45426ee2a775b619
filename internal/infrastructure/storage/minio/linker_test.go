package minio

import (
	"context"
	stderrors "errors"
	"net/url"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/claimtrack/internal/domain/narrative"
)

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "c-1/hearing-requirements.pdf", ObjectKey("c-1", narrative.DocHearingRequirements))
	assert.Equal(t, "c-1/claim-form.pdf", ObjectKey("c-1", narrative.DocClaimForm))
}

func TestDocumentLinker_Links(t *testing.T) {
	ctx := context.Background()
	api := new(MockMinIOAPI)
	linker := NewDocumentLinker(newClientWithAPI(api, &MinIOConfig{Bucket: "docs", PresignExpiry: time.Minute}, nil), nil)

	u, _ := url.Parse("https://minio.local/docs/c-1/defendant-response.pdf?sig=1")
	api.On("StatObject", ctx, "docs", "c-1/defendant-response.pdf", minio.StatObjectOptions{}).Return(minio.ObjectInfo{}, nil)
	api.On("PresignedGetObject", ctx, "docs", "c-1/defendant-response.pdf", time.Minute, url.Values(nil)).Return(u, nil)
	api.On("StatObject", ctx, "docs", "c-1/hearing-requirements.pdf", minio.StatObjectOptions{}).
		Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"})

	links, err := linker.Links(ctx, "c-1", []narrative.DocumentRef{narrative.DocDefendantResponse, narrative.DocHearingRequirements})
	require.NoError(t, err)
	assert.Equal(t, map[narrative.DocumentRef]string{narrative.DocDefendantResponse: u.String()}, links)
	api.AssertExpectations(t)
}

func TestDocumentLinker_NoRefs(t *testing.T) {
	api := new(MockMinIOAPI)
	linker := NewDocumentLinker(newClientWithAPI(api, &MinIOConfig{}, nil), nil)
	links, err := linker.Links(context.Background(), "c-1", nil)
	require.NoError(t, err)
	assert.Empty(t, links)
	api.AssertNotCalled(t, "StatObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDocumentLinker_PresignFailure(t *testing.T) {
	ctx := context.Background()
	api := new(MockMinIOAPI)
	linker := NewDocumentLinker(newClientWithAPI(api, &MinIOConfig{}, nil), nil)
	api.On("StatObject", ctx, "claim-documents", mock.Anything, minio.StatObjectOptions{}).Return(minio.ObjectInfo{}, nil)
	api.On("PresignedGetObject", ctx, "claim-documents", mock.Anything, 15*time.Minute, url.Values(nil)).Return(nil, stderrors.New("clock skew"))

	links, err := linker.Links(ctx, "c-1", []narrative.DocumentRef{narrative.DocClaimForm})
	assert.Nil(t, links)
	assert.Error(t, err)
}
