package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/AnshRaj112/socialapp-backend/internal/config"
	"github.com/AnshRaj112/socialapp-backend/internal/models"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinary(cfg config.CloudinaryConfig) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &Cloudinary{cld: cld, folder: cfg.Folder}, nil
}

func (s *Cloudinary) Upload(ctx context.Context, f File) (models.Image, error) {
	res, err := s.cld.Upload.Upload(ctx, bytes.NewReader(f.Data), uploader.UploadParams{
		Folder:       s.folder,
		ResourceType: "auto",
	})
	if err != nil {
		return models.Image{}, fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}
	if res.Error.Message != "" {
		return models.Image{}, fmt.Errorf("failed to upload to Cloudinary: %s", res.Error.Message)
	}
	return models.Image{URL: res.SecureURL, PublicID: res.PublicID}, nil
}

func (s *Cloudinary) Delete(ctx context.Context, publicID string) error {
	res, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("failed to delete from Cloudinary: %w", err)
	}
	if res.Error.Message != "" {
		return errors.New("failed to delete from Cloudinary: " + res.Error.Message)
	}
	// "not found" means it is already gone
	if res.Result != "ok" && res.Result != "not found" {
		return fmt.Errorf("failed to delete from Cloudinary: result %q", res.Result)
	}
	return nil
}
