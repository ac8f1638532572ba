package utils

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestFileHeader creates a mock multipart.FileHeader for testing
func createTestFileHeader(filename string, size int64, content []byte) *multipart.FileHeader {
	// Create a buffer to write our multipart form
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	// Create form file
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", "image/png")
	part, _ := writer.CreatePart(h)
	part.Write(content)
	writer.Close()

	// Parse the multipart form
	reader := multipart.NewReader(body, writer.Boundary())
	form, _ := reader.ReadForm(int64(len(content)) + 1024)
	defer form.RemoveAll()

	if len(form.File["file"]) > 0 {
		fileHeader := form.File["file"][0]
		// Override size for testing purposes
		fileHeader.Size = size
		return fileHeader
	}

	return nil
}

func TestValidateImageFile_Success(t *testing.T) {
	// Test with valid PNG file under size limit
	content := []byte("fake png content")
	fileHeader := createTestFileHeader("test.png", int64(len(content)), content)
	require.NotNil(t, fileHeader)

	err := ValidateImageFile(fileHeader)
	assert.NoError(t, err)
}

func TestValidateImageFile_FileTooLarge(t *testing.T) {
	// Test with file exceeding size limit (6MB)
	content := []byte("fake png content")
	fileHeader := createTestFileHeader("large.png", 6*1024*1024, content)
	require.NotNil(t, fileHeader)

	err := ValidateImageFile(fileHeader)
	assert.Error(t, err)

	fileErr, ok := err.(*FileUploadError)
	require.True(t, ok, "Error should be of type FileUploadError")
	assert.Equal(t, "FILE_TOO_LARGE", fileErr.Code)
	assert.Contains(t, fileErr.Message, "File size exceeds maximum allowed size")
}

func TestValidateImageFile_AcceptedFormats(t *testing.T) {
	for _, name := range []string{"latte.jpg", "latte.jpeg", "latte.webp", "latte.png"} {
		t.Run(name, func(t *testing.T) {
			content := []byte("fake image content")
			fileHeader := createTestFileHeader(name, int64(len(content)), content)
			require.NotNil(t, fileHeader)

			assert.NoError(t, ValidateImageFile(fileHeader))
		})
	}
}

func TestValidateImageFile_InvalidFormat_GIF(t *testing.T) {
	// Test with GIF file (not allowed)
	content := []byte("fake gif content")
	fileHeader := createTestFileHeader("test.gif", int64(len(content)), content)
	require.NotNil(t, fileHeader)

	err := ValidateImageFile(fileHeader)
	assert.Error(t, err)

	fileErr, ok := err.(*FileUploadError)
	require.True(t, ok, "Error should be of type FileUploadError")
	assert.Equal(t, "INVALID_FILE_FORMAT", fileErr.Code)
	assert.Contains(t, fileErr.Message, "Only .png, .jpg, .jpeg and .webp files are allowed")
}

func TestValidateImageFile_InvalidFormat_NoExtension(t *testing.T) {
	// Test with file without extension
	content := []byte("fake content")
	fileHeader := createTestFileHeader("testfile", int64(len(content)), content)
	require.NotNil(t, fileHeader)

	err := ValidateImageFile(fileHeader)
	assert.Error(t, err)

	fileErr, ok := err.(*FileUploadError)
	require.True(t, ok, "Error should be of type FileUploadError")
	assert.Equal(t, "INVALID_FILE_FORMAT", fileErr.Code)
}

func TestValidateImageFile_CaseInsensitive(t *testing.T) {
	// Test with uppercase extension
	content := []byte("fake png content")
	fileHeader := createTestFileHeader("test.PNG", int64(len(content)), content)
	require.NotNil(t, fileHeader)

	err := ValidateImageFile(fileHeader)
	assert.NoError(t, err, "Validation should be case-insensitive")
}

func TestFileUploadError_Error(t *testing.T) {
	err := &FileUploadError{
		Code:    "TEST_CODE",
		Message: "Test error message",
	}

	assert.Equal(t, "Test error message", err.Error())
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/png", ContentType("menu.PNG"))
	assert.Equal(t, "image/jpeg", ContentType("menu.jpg"))
	assert.Equal(t, "application/octet-stream", ContentType("menu.txt"))
}

func TestSaveUploadedFile(t *testing.T) {
	content := []byte("fake png content")
	fileHeader := createTestFileHeader("espresso.png", int64(len(content)), content)
	require.NotNil(t, fileHeader)

	dir := filepath.Join(t.TempDir(), "uploads")
	filename, err := SaveUploadedFile(fileHeader, dir)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(filename, "_espresso.png"))
	saved, err := os.ReadFile(filepath.Join(dir, filename))
	require.NoError(t, err)
	assert.Equal(t, content, saved)
}

func TestGetImageURL(t *testing.T) {
	assert.Equal(t, "/api/v1/uploads/a.png", GetImageURL("a.png"))
	assert.Equal(t, "", GetImageURL(""))
}

func TestSaveUploadedFile_TooLarge(t *testing.T) {
	content := bytes.Repeat([]byte{0x89}, MaxFileSize+1)
	fileHeader := createTestFileHeader("huge.png", 1024, content)
	require.NotNil(t, fileHeader)

	dir := t.TempDir()
	_, err := SaveUploadedFile(fileHeader, dir)

	var fileErr *FileUploadError
	require.ErrorAs(t, err, &fileErr)
	assert.Equal(t, "FILE_TOO_LARGE", fileErr.Code)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "partial uploads must not be left behind")
}

func TestNewImageName(t *testing.T) {
	tests := []struct {
		original string
		suffix   string
	}{
		{"espresso.png", "_espresso.png"},
		{"Iced Latte.PNG", "_iced-latte.png"},
		{"../../etc/passwd.jpg", "_passwd.jpg"},
		{"  ###.webp", "_image.webp"},
		{"croissant", "_croissant"},
		{strings.Repeat("a", 60) + ".jpeg", "_" + strings.Repeat("a", 40) + ".jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.original, func(t *testing.T) {
			name := NewImageName(tt.original)
			assert.True(t, strings.HasSuffix(name, tt.suffix), "got %q", name)
			assert.NotContains(t, name, "/")
			assert.Len(t, name, 36+len(tt.suffix))
		})
	}

	assert.NotEqual(t, NewImageName("a.png"), NewImageName("a.png"))
}
