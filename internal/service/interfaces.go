package service

import (
	"context"
)

// ImageStore persists recipe images and serves them by public URL.
// config.S3Config is the production implementation.
type ImageStore interface {
	PutImage(ctx context.Context, key string, body []byte, contentType string) (string, error)
	DeleteImage(ctx context.Context, url string) error
}
