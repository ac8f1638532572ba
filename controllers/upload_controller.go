package controllers

import (
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cafe-pos-api/utils"
)

// UploadController serves product images kept in local storage
type UploadController struct {
	dir string
}

// NewUploadController creates an upload controller reading from dir
func NewUploadController(dir string) *UploadController {
	return &UploadController{dir: dir}
}

// validUploadName rejects names that could leave the upload directory or
// point at in-progress uploads
func validUploadName(name string) bool {
	return name != "" &&
		!strings.HasPrefix(name, ".") &&
		!strings.Contains(name, "..") &&
		!strings.ContainsAny(name, `/\`)
}

// GetUploadedImage handles GET /api/v1/uploads/:filename
func (u *UploadController) GetUploadedImage(c *gin.Context) {
	filename := c.Param("filename")
	if !validUploadName(filename) {
		respondError(c, http.StatusBadRequest, "INVALID_FILENAME", "Invalid filename")
		return
	}
	if !utils.IsAllowedImage(filename) {
		respondError(c, http.StatusBadRequest, "INVALID_FILE_TYPE", "Only .png, .jpg, .jpeg and .webp files are supported")
		return
	}

	root, err := os.OpenRoot(u.dir)
	if errors.Is(err, fs.ErrNotExist) {
		respondError(c, http.StatusNotFound, "FILE_NOT_FOUND", "Image not found")
		return
	}
	if err != nil {
		log.Printf("Failed to open upload directory %s: %v", u.dir, err)
		respondError(c, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to read image")
		return
	}
	defer root.Close()

	file, err := root.Open(filename)
	if err != nil {
		respondError(c, http.StatusNotFound, "FILE_NOT_FOUND", "Image not found")
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil || info.IsDir() {
		respondError(c, http.StatusNotFound, "FILE_NOT_FOUND", "Image not found")
		return
	}

	c.Header("Content-Type", utils.ContentType(filename))
	c.Header("Cache-Control", utils.ImageCacheControl)
	http.ServeContent(c.Writer, c.Request, filename, info.ModTime(), file)
}
