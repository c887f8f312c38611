package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/Marga-Ghale/ora-interior-backend/internal/storage"
)

const defaultPresignExpiry = 5 * time.Minute

// UploadService hands out presigned PUT URLs for direct browser uploads.
type UploadService interface {
	Presign(ctx context.Context, fileName, contentType string) (string, error)
	Expiry() time.Duration
}

type uploadService struct {
	presigner Presigner
	expiry    time.Duration
}

// NewUploadService accepts a nil presigner; every request then fails with
// ErrStorageUnavailable.
func NewUploadService(presigner Presigner, expiry time.Duration) UploadService {
	if expiry <= 0 {
		expiry = defaultPresignExpiry
	}
	return &uploadService{presigner: presigner, expiry: expiry}
}

func (s *uploadService) Expiry() time.Duration { return s.expiry }

func (s *uploadService) Presign(ctx context.Context, fileName, contentType string) (string, error) {
	fileName = strings.TrimSpace(fileName)
	contentType = strings.TrimSpace(contentType)

	// An empty content type signs the upload without one.
	if fileName == "" {
		return "", newValidationError("fileName", "required")
	}

	key, err := storage.CleanKey(fileName)
	if err != nil {
		return "", newValidationError("fileName", err.Error())
	}
	if s.presigner == nil {
		return "", ErrStorageUnavailable
	}

	url, err := s.presigner.PresignPut(ctx, key, contentType, s.expiry)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidKey) {
			return "", newValidationError("fileName", err.Error())
		}
		log.Printf("[Upload] ❌ Presign %s failed: %v", key, err)
		return "", err
	}
	return url, nil
}
