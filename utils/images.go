// utils/images.go
package utils

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"go-propmarket/models"
)

// ImageStore uploads and deletes property pictures in a blob store.
type ImageStore interface {
	Upload(ctx context.Context, file io.Reader) (models.PropertyImage, error)
	Delete(ctx context.Context, publicID string) error
}

// CloudinaryStore stores property pictures in Cloudinary.
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryStore builds an image store backed by a Cloudinary account.
func NewCloudinaryStore(cloudName, apiKey, apiSecret, folder string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	return &CloudinaryStore{cld: cld, folder: folder}, nil
}

func (s *CloudinaryStore) Upload(ctx context.Context, file io.Reader) (models.PropertyImage, error) {
	res, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{Folder: s.folder})
	if err != nil {
		return models.PropertyImage{}, fmt.Errorf("%w: cloudinary upload: %v", models.ErrUpstreamUnavailable, err)
	}
	return models.PropertyImage{URL: res.SecureURL, PublicID: res.PublicID}, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, publicID string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("%w: cloudinary destroy: %v", models.ErrUpstreamUnavailable, err)
	}
	return nil
}
