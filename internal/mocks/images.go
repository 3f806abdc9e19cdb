package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// ImageStore is a mock implementation of service.ImageStore
type ImageStore struct {
	mock.Mock
}

func (m *ImageStore) PutImage(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, body, contentType)
	return args.String(0), args.Error(1)
}

func (m *ImageStore) DeleteImage(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}
