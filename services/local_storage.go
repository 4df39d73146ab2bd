package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/url"
	"os"
	"path/filepath"

	"github.com/kendall-kelly/printshop-api/utils"
)

// LocalStorage keeps artwork on the local disk and serves it through /api/v1/uploads.
// It is meant for development and single-instance deployments.
type LocalStorage struct {
	dir string
}

// NewLocalStorage creates a disk-backed object store rooted at dir
func NewLocalStorage(dir string) *LocalStorage {
	return &LocalStorage{dir: dir}
}

// Dir returns the directory files are stored in
func (l *LocalStorage) Dir() string {
	return l.dir
}

// PutObject writes the uploaded file to disk under key
func (l *LocalStorage) PutObject(ctx context.Context, key, contentType string, fileHeader *multipart.FileHeader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return utils.SaveUploadedFile(fileHeader, l.dir, key)
}

// PresignedURL returns the public upload path; local files are not access controlled
func (l *LocalStorage) PresignedURL(ctx context.Context, key string) (string, error) {
	return utils.GetUploadURL(key), nil
}

// DownloadURL returns the upload path asking the server to send an attachment
func (l *LocalStorage) DownloadURL(ctx context.Context, key, filename string) (string, error) {
	if key == "" {
		return "", nil
	}
	query := url.Values{"download": {filename}}
	return utils.GetUploadURL(key) + "?" + query.Encode(), nil
}

// DeleteObject removes the file; a missing file is not an error
func (l *LocalStorage) DeleteObject(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	err := os.Remove(filepath.Join(l.dir, filepath.Base(key)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete local file: %w", err)
	}
	return nil
}
