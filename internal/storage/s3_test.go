package storage

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapS3Error(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "not found type", err: &types.NotFound{}, want: ErrNotFound},
		{name: "no such key type", err: &types.NoSuchKey{}, want: ErrNotFound},
		{name: "api not found", err: &smithy.GenericAPIError{Code: "NoSuchKey"}, want: ErrNotFound},
		{name: "api access denied", err: &smithy.GenericAPIError{Code: "AccessDenied"}, want: ErrAccessDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, wrapS3Error(tt.err), tt.want)
		})
	}

	other := errors.New("connection reset")
	wrapped := wrapS3Error(other)
	assert.ErrorIs(t, wrapped, other)
	assert.NotErrorIs(t, wrapped, ErrNotFound)
}

func TestNewS3Storage(t *testing.T) {
	_, err := NewS3Storage(S3Config{}, nil)
	assert.Error(t, err)

	s, err := NewS3Storage(S3Config{
		Endpoint:     "http://localhost:9000",
		Bucket:       "media",
		PublicURL:    "https://cdn.example.com/",
		UsePathStyle: true,
	}, nil)
	require.NoError(t, err)

	url, err := s.URL(t.Context(), "default/0001/01/thumb_1_default_small.jpg", 0)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/default/0001/01/thumb_1_default_small.jpg", url)

	_, err = s.URL(t.Context(), "../secret", 0)
	assert.True(t, IsInvalidKey(err))
}
