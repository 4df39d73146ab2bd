package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"sync"
)

// MockObjectStore is an in-memory ObjectStore for testing
type MockObjectStore struct {
	objects   map[string][]byte // map of key to file content
	uploadErr error
	deleteErr error
	deleted   []string
	mu        sync.RWMutex
}

// NewMockObjectStore creates a new in-memory object store
func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{
		objects: make(map[string][]byte),
	}
}

// SetAsMockForTesting installs artwork storage over this mock as the global instance
func (m *MockObjectStore) SetAsMockForTesting() *ArtworkStorage {
	storage := NewArtworkStorage(m)
	SetArtworkStorage(storage)
	return storage
}

// FailUploads makes every following PutObject return err; nil restores uploads
func (m *MockObjectStore) FailUploads(err error) {
	m.mu.Lock()
	m.uploadErr = err
	m.mu.Unlock()
}

// FailDeletes makes every following DeleteObject return err; nil restores deletes
func (m *MockObjectStore) FailDeletes(err error) {
	m.mu.Lock()
	m.deleteErr = err
	m.mu.Unlock()
}

// PutObject keeps the file content in memory
func (m *MockObjectStore) PutObject(ctx context.Context, key, contentType string, fileHeader *multipart.FileHeader) error {
	m.mu.RLock()
	uploadErr := m.uploadErr
	m.mu.RUnlock()
	if uploadErr != nil {
		return uploadErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	m.mu.Lock()
	m.objects[key] = content
	m.mu.Unlock()

	return nil
}

// PresignedURL returns a fake presigned URL for a stored object
func (m *MockObjectStore) PresignedURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	m.mu.RLock()
	_, exists := m.objects[key]
	m.mu.RUnlock()

	if !exists {
		return "", fmt.Errorf("file not found in mock storage: %s", key)
	}

	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/artwork/%s?mock=true", key), nil
}

// DownloadURL returns a fake presigned download URL for a stored object
func (m *MockObjectStore) DownloadURL(ctx context.Context, key, filename string) (string, error) {
	url, err := m.PresignedURL(ctx, key)
	if err != nil || url == "" {
		return url, err
	}
	return url + "&download=" + filename, nil
}

// DeleteObject removes the object from memory
func (m *MockObjectStore) DeleteObject(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)

	return nil
}

// Objects returns all stored objects (for testing assertions)
func (m *MockObjectStore) Objects() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	objects := make(map[string][]byte, len(m.objects))
	for k, v := range m.objects {
		objects[k] = v
	}
	return objects
}

// Deleted returns the keys removed so far, in order
func (m *MockObjectStore) Deleted() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.deleted...)
}

// Exists checks if an object exists in mock storage
func (m *MockObjectStore) Exists(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.objects[key]
	return exists
}

// Clear removes all objects and injected failures
func (m *MockObjectStore) Clear() {
	m.mu.Lock()
	m.objects = make(map[string][]byte)
	m.deleted = nil
	m.uploadErr = nil
	m.deleteErr = nil
	m.mu.Unlock()
}
