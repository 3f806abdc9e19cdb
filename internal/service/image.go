package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/apperrors"
)

var imageExtensions = map[string]string{
	"png":  "png",
	"jpeg": "jpg",
	"jpg":  "jpg",
	"gif":  "gif",
	"webp": "webp",
}

// DecodedImage is the payload of a base64 image data URI.
type DecodedImage struct {
	Data        []byte
	Extension   string
	ContentType string
}

// ImageService decodes recipe images and stores them in the image store.
type ImageService struct {
	store    ImageStore
	maxBytes int64
	log      *slog.Logger
}

func NewImageService(store ImageStore, maxBytes int64, log *slog.Logger) *ImageService {
	return &ImageService{store: store, maxBytes: maxBytes, log: log.With("component", "image_service")}
}

// Upload stores the image carried by dataURI under recipes/<uuid>.<ext>
// and returns its public URL.
func (s *ImageService) Upload(ctx context.Context, dataURI string) (string, error) {
	img, err := DecodeImageDataURI(dataURI, s.maxBytes)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("recipes/%s.%s", uuid.New(), img.Extension)
	url, err := s.store.PutImage(ctx, key, img.Data, img.ContentType)
	if err != nil {
		return "", apperrors.Internal("failed to store image", err)
	}

	s.log.Debug("image stored", "key", key, "bytes", len(img.Data))
	return url, nil
}

// Remove deletes a stored image. Failures are logged and otherwise ignored.
func (s *ImageService) Remove(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.store.DeleteImage(ctx, url); err != nil {
		s.log.Warn("failed to delete image", "url", url, "error", err)
	}
}

// DecodeImageDataURI parses data:image/<ext>;base64,<payload>. A positive
// maxBytes caps the decoded size.
func DecodeImageDataURI(dataURI string, maxBytes int64) (*DecodedImage, error) {
	invalid := func(msg string) error {
		return apperrors.InvalidArgument("invalid image").WithDetails(map[string]string{"image": msg})
	}

	meta, payload, ok := strings.Cut(dataURI, ",")
	if !ok || !strings.HasPrefix(meta, "data:image/") || !strings.HasSuffix(meta, ";base64") {
		return nil, invalid("image must be a base64 encoded data URI")
	}

	format := strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(meta, "data:image/"), ";base64"))
	ext, ok := imageExtensions[format]
	if !ok {
		return nil, invalid(fmt.Sprintf("unsupported image format %q", format))
	}

	if maxBytes > 0 && int64(base64.StdEncoding.DecodedLen(len(payload))) > maxBytes+2 {
		return nil, invalid(fmt.Sprintf("image exceeds %d bytes", maxBytes))
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, invalid("image is not valid base64")
	}
	if len(data) == 0 {
		return nil, invalid("image is empty")
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, invalid(fmt.Sprintf("image exceeds %d bytes", maxBytes))
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, invalid("payload is not an image")
	}

	return &DecodedImage{Data: data, Extension: ext, ContentType: contentType}, nil
}
