package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockObjectAPI struct {
	mock.Mock
}

func (m *mockObjectAPI) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func (m *mockObjectAPI) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.DeleteObjectOutput), args.Error(1)
}

func TestS3Store_Save(t *testing.T) {
	client := new(mockObjectAPI)
	store := newS3Store(client, "stok-docs", "uploads/", zerolog.Nop())

	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Bucket) == "stok-docs" &&
			strings.HasPrefix(aws.ToString(in.Key), "uploads/dealers/") &&
			strings.HasSuffix(aws.ToString(in.Key), ".pdf") &&
			aws.ToString(in.ContentType) == "application/pdf"
	})).Return(&s3.PutObjectOutput{}, nil)

	path, err := store.Save(context.Background(), "dealers", "levha.pdf", "application/pdf", strings.NewReader("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "s3://stok-docs/uploads/dealers/"))

	client.AssertExpectations(t)
}

func TestS3Store_SaveError(t *testing.T) {
	client := new(mockObjectAPI)
	store := newS3Store(client, "stok-docs", "", zerolog.Nop())

	client.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	_, err := store.Save(context.Background(), "dealers", "a.pdf", "application/pdf", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to put object to S3")
}

func TestS3Store_Delete(t *testing.T) {
	client := new(mockObjectAPI)
	store := newS3Store(client, "stok-docs", "uploads/", zerolog.Nop())

	client.On("DeleteObject", mock.Anything, mock.MatchedBy(func(in *s3.DeleteObjectInput) bool {
		return aws.ToString(in.Key) == "uploads/dealers/a.pdf"
	})).Return(&s3.DeleteObjectOutput{}, nil)

	require.NoError(t, store.Delete(context.Background(), "s3://stok-docs/uploads/dealers/a.pdf"))
	assert.Error(t, store.Delete(context.Background(), "/uploads/dealers/a.pdf"))

	client.AssertExpectations(t)
}
