package services

import (
	"context"
	"fmt"
	"mime"
	"mime/multipart"
	"path/filepath"

	"github.com/kendall-kelly/printshop-api/artwork"
	appConfig "github.com/kendall-kelly/printshop-api/config"
	"github.com/kendall-kelly/printshop-api/utils"
)

// ArtworkStorage validates artwork files and keeps them in an ObjectStore
type ArtworkStorage struct {
	objects ObjectStore
}

var artworkStorageInstance artwork.FileStore

// NewArtworkStorage wraps an object store
func NewArtworkStorage(objects ObjectStore) *ArtworkStorage {
	return &ArtworkStorage{objects: objects}
}

// InitArtworkStorage builds the storage backend selected by STORAGE_BACKEND
func InitArtworkStorage(ctx context.Context, cfg *appConfig.Config) (artwork.FileStore, error) {
	var objects ObjectStore
	switch cfg.StorageBackend {
	case appConfig.StorageLocal:
		utils.UploadDir = cfg.UploadDir
		objects = NewLocalStorage(cfg.UploadDir)
	default:
		s3Service, err := NewS3Service(ctx, cfg)
		if err != nil {
			return nil, err
		}
		objects = s3Service
	}

	artworkStorageInstance = NewArtworkStorage(objects)
	return artworkStorageInstance, nil
}

// GetArtworkStorage returns the initialized artwork storage
func GetArtworkStorage() artwork.FileStore {
	return artworkStorageInstance
}

// SetArtworkStorage sets the artwork storage instance (primarily for testing)
func SetArtworkStorage(storage artwork.FileStore) {
	artworkStorageInstance = storage
}

// StoreArtwork validates the file and uploads it under a fresh key
func (s *ArtworkStorage) StoreArtwork(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateArtworkFile(fileHeader); err != nil {
		return "", err
	}

	contentType, _ := utils.ArtworkContentType(fileHeader.Filename)
	key := utils.NewStorageKey(fileHeader.Filename)
	if err := s.objects.PutObject(ctx, key, contentType, fileHeader); err != nil {
		return "", fmt.Errorf("failed to store artwork: %w", err)
	}

	return key, nil
}

// ArtworkURL returns a URL for previewing the artwork
func (s *ArtworkStorage) ArtworkURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	url, err := s.objects.PresignedURL(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to generate artwork URL: %w", err)
	}
	return url, nil
}

// DownloadURL returns a URL that downloads the print-ready file under its original name
func (s *ArtworkStorage) DownloadURL(ctx context.Context, key, filename string) (string, error) {
	if key == "" {
		return "", nil
	}
	if filename == "" {
		filename = "artwork" + filepath.Ext(key)
	}

	url, err := s.objects.DownloadURL(ctx, key, filename)
	if err != nil {
		return "", fmt.Errorf("failed to generate download URL: %w", err)
	}
	return url, nil
}

// DeleteArtwork removes the artwork file
func (s *ArtworkStorage) DeleteArtwork(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	if err := s.objects.DeleteObject(ctx, key); err != nil {
		return fmt.Errorf("failed to delete artwork: %w", err)
	}
	return nil
}

// attachmentDisposition builds a Content-Disposition header value for a download
func attachmentDisposition(filename string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": filepath.Base(filename)})
}
