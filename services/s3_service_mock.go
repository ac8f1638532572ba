package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"sort"
	"sync"

	"github.com/kendall-kelly/cafe-pos-api/utils"
)

// mockObject is one stored image
type mockObject struct {
	body        []byte
	contentType string
}

// MockS3Service is an in-memory S3Interface. Keys are deterministic
// ("products/mock_<filename>") so tests can assert on them.
type MockS3Service struct {
	mu      sync.RWMutex
	objects map[string]mockObject
	failure error
}

// NewMockS3Service creates an empty mock bucket
func NewMockS3Service() *MockS3Service {
	return &MockS3Service{objects: make(map[string]mockObject)}
}

// FailWith makes every following call return err; nil restores normal behaviour
func (m *MockS3Service) FailWith(err error) {
	m.mu.Lock()
	m.failure = err
	m.mu.Unlock()
}

// UploadFile stores the file content under a predictable key
func (m *MockS3Service) UploadFile(_ context.Context, fileHeader *multipart.FileHeader) (string, error) {
	if err := m.failed(); err != nil {
		return "", err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	body, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	key := productImagePrefix + "/mock_" + filepath.Base(fileHeader.Filename)

	m.mu.Lock()
	m.objects[key] = mockObject{body: body, contentType: utils.ContentType(key)}
	m.mu.Unlock()

	return key, nil
}

// GetPresignedURL returns a fake bucket URL for a stored key
func (m *MockS3Service) GetPresignedURL(_ context.Context, s3Key string) (string, error) {
	if s3Key == "" {
		return "", nil
	}
	if err := m.failed(); err != nil {
		return "", err
	}
	if !m.FileExists(s3Key) {
		return "", fmt.Errorf("file not found in mock S3: %s", s3Key)
	}

	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=true", s3Key), nil
}

// DeleteFile drops a key; unknown keys are ignored like S3 does
func (m *MockS3Service) DeleteFile(_ context.Context, s3Key string) error {
	if s3Key == "" {
		return nil
	}
	if err := m.failed(); err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.objects, s3Key)
	m.mu.Unlock()

	return nil
}

// FileExists reports whether key is stored
func (m *MockS3Service) FileExists(s3Key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[s3Key]
	return ok
}

// Object returns the stored body and content type of key
func (m *MockS3Service) Object(s3Key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[s3Key]
	return obj.body, obj.contentType, ok
}

// Keys lists stored keys in order
func (m *MockS3Service) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.objects))
	for key := range m.objects {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (m *MockS3Service) failed() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.failure
}
