package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"yatube/internal/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrNotImage      = errors.New("uploaded file is not a supported image")
	ErrImageTooLarge = errors.New("uploaded image is too large")
)

// ImagePrefix is the storage prefix of post images.
const ImagePrefix = "posts/"

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageUploadResult describes a stored image.
type ImageUploadResult struct {
	Key         string
	ContentType string
	Size        int64
}

// ImageUploader validates uploaded images and puts them into storage.
type ImageUploader struct {
	store    storage.Storage
	maxBytes int64
}

func NewImageUploader(store storage.Storage, maxBytes int64) *ImageUploader {
	return &ImageUploader{store: store, maxBytes: maxBytes}
}

// UploadFile stores a multipart upload, see Upload.
func (u *ImageUploader) UploadFile(ctx context.Context, header *multipart.FileHeader) (*ImageUploadResult, error) {
	if u.maxBytes > 0 && header.Size > u.maxBytes {
		return nil, ErrImageTooLarge
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	return u.Upload(ctx, file)
}

// Upload sniffs the content, rejects anything but jpeg/png/gif/webp and
// stores it under posts/<uuid><ext>.
func (u *ImageUploader) Upload(ctx context.Context, r io.Reader) (*ImageUploadResult, error) {
	limit := u.maxBytes
	if limit <= 0 {
		limit = 1 << 62
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, ErrImageTooLarge
	}

	mtype := mimetype.Detect(data)
	ext, ok := allowedImageTypes[mtype.String()]
	if !ok {
		return nil, ErrNotImage
	}

	result := &ImageUploadResult{
		Key:         ImagePrefix + uuid.NewString() + ext,
		ContentType: mtype.String(),
		Size:        int64(len(data)),
	}
	if err := u.store.Write(ctx, result.Key, bytes.NewReader(data), result.Size, result.ContentType); err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}
	return result, nil
}

// Remove deletes a stored image. An empty key is ignored.
func (u *ImageUploader) Remove(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := u.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}
