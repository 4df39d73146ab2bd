package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	// MaxFileSize is 25MB in bytes
	MaxFileSize = 25 * 1024 * 1024
)

var (
	// UploadDir is the directory where uploaded files are stored
	// Can be overridden for testing
	UploadDir = "./uploads"

	// artworkTypes maps accepted artwork extensions to their content type
	artworkTypes = map[string]string{
		".png":  "image/png",
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".pdf":  "application/pdf",
		".svg":  "image/svg+xml",
	}
)

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ValidateArtworkFile validates the uploaded file format and size
func ValidateArtworkFile(fileHeader *multipart.FileHeader) error {
	if fileHeader == nil {
		return &FileUploadError{Code: "MISSING_FILE", Message: "An artwork file is required"}
	}

	if fileHeader.Size <= 0 {
		return &FileUploadError{Code: "EMPTY_FILE", Message: "The uploaded file is empty"}
	}

	// Check file size
	if fileHeader.Size > MaxFileSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxFileSize/(1024*1024)),
		}
	}

	// Check file extension
	if _, ok := ArtworkContentType(fileHeader.Filename); !ok {
		return &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: "Only PNG, JPG, PDF and SVG files are allowed",
		}
	}

	return nil
}

// ArtworkContentType returns the content type for an artwork filename
func ArtworkContentType(filename string) (string, bool) {
	contentType, ok := artworkTypes[strings.ToLower(filepath.Ext(filename))]
	return contentType, ok
}

// NewStorageKey returns a collision-free storage key that keeps the file's extension
func NewStorageKey(filename string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(filename))
}

// IsStorageKey reports whether name could have come from NewStorageKey, so it is safe to
// join onto the upload directory
func IsStorageKey(name string) bool {
	ext := filepath.Ext(name)
	if _, ok := artworkTypes[ext]; !ok {
		return false
	}
	_, err := uuid.Parse(strings.TrimSuffix(name, ext))
	return err == nil
}

// SaveUploadedFile saves the uploaded file under key in uploadDir
func SaveUploadedFile(fileHeader *multipart.FileHeader, uploadDir, key string) (err error) {
	// Create uploads directory if it doesn't exist
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	// Open the uploaded file
	src, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer func() {
		if closeErr := src.Close(); closeErr != nil {
			fmt.Printf("warning: failed to close source file: %v\n", closeErr)
		}
	}()

	// Create the destination file
	dst, err := os.Create(filepath.Join(uploadDir, filepath.Base(key)))
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer func() {
		if closeErr := dst.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close destination file: %w", closeErr)
		}
	}()

	// Copy the file
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}

	return nil
}

// GetUploadURL returns the URL path for accessing a locally stored file
func GetUploadURL(key string) string {
	if key == "" {
		return ""
	}
	return fmt.Sprintf("/api/v1/uploads/%s", key)
}
