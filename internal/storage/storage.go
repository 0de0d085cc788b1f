// Package storage uploads and releases binary assets (profile, cover and post
// images) on an external object store.
package storage

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/AnshRaj112/socialapp-backend/internal/apperr"
	"github.com/AnshRaj112/socialapp-backend/internal/models"
)

// MaxImageSize is the per-file upload limit.
const MaxImageSize = 5 << 20

// File is an uploaded file held in memory.
type File struct {
	Data        []byte
	Filename    string
	ContentType string
}

// AssetStore is implemented by every asset backend. Delete of an id that no
// longer exists is not an error.
type AssetStore interface {
	Upload(ctx context.Context, f File) (models.Image, error)
	Delete(ctx context.Context, publicID string) error
}

// CheckImage rejects anything that is not an image/* type or exceeds
// MaxImageSize. The declared type is ignored in favour of the sniffed one.
func CheckImage(f File) error {
	if len(f.Data) == 0 {
		return apperr.Validation("Empty file")
	}
	if len(f.Data) > MaxImageSize {
		return apperr.Validation(fmt.Sprintf("File too large (max %dMB)", MaxImageSize>>20))
	}
	if !strings.HasPrefix(http.DetectContentType(f.Data), "image/") {
		return apperr.Validation("Only image files are allowed")
	}
	return nil
}
