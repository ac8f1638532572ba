package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	// MaxFileSize is 5MB in bytes
	MaxFileSize = 5 * 1024 * 1024

	// ImageCacheControl is sent with every product image
	ImageCacheControl = "public, max-age=86400"

	maxStemLength = 40
)

// allowedImageTypes maps accepted extensions to their content type
var allowedImageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

var unsafeNameChars = regexp.MustCompile(`[^a-z0-9._-]+`)

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// IsAllowedImage reports whether filename has an accepted image extension
func IsAllowedImage(filename string) bool {
	_, ok := allowedImageTypes[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// ContentType returns the content type for an accepted image filename
func ContentType(filename string) string {
	if ct, ok := allowedImageTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// ValidateImageFile validates the uploaded file format and size
func ValidateImageFile(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxFileSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxFileSize/(1024*1024)),
		}
	}

	if !IsAllowedImage(fileHeader.Filename) {
		return &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: "Only .png, .jpg, .jpeg and .webp files are allowed",
		}
	}

	return nil
}

// NewImageName returns a collision-free storage name for an uploaded image:
// a random prefix and the original name reduced to lowercase URL-safe
// characters, so "Iced Latte.PNG" becomes "<uuid>_iced-latte.png"
func NewImageName(original string) string {
	base := strings.ToLower(filepath.Base(original))
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	stem = strings.Trim(unsafeNameChars.ReplaceAllString(stem, "-"), "-.")
	if len(stem) > maxStemLength {
		stem = stem[:maxStemLength]
	}
	if stem == "" {
		stem = "image"
	}

	return fmt.Sprintf("%s_%s%s", uuid.NewString(), stem, ext)
}

// SaveUploadedFile writes the upload into uploadDir and returns the stored
// name. The file appears under its final name only once fully written.
func SaveUploadedFile(fileHeader *multipart.FileHeader, uploadDir string) (string, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(uploadDir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, io.LimitReader(src, MaxFileSize+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	if written > MaxFileSize {
		return "", &FileUploadError{Code: "FILE_TOO_LARGE", Message: "File exceeds the maximum upload size"}
	}

	filename := NewImageName(fileHeader.Filename)
	if err := os.Rename(tmp.Name(), filepath.Join(uploadDir, filename)); err != nil {
		return "", fmt.Errorf("failed to store file: %w", err)
	}

	return filename, nil
}

// GetImageURL returns the URL path for accessing the uploaded image
func GetImageURL(filename string) string {
	if filename == "" {
		return ""
	}
	return fmt.Sprintf("/api/v1/uploads/%s", filename)
}
