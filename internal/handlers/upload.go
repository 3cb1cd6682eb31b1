package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vnfurniture/internal/apperror"
	"vnfurniture/internal/storage"
	"vnfurniture/internal/upload"
)

// UploadImage stores a product image posted as multipart field "file" and
// answers with its public URL.
func (h *Handler) UploadImage(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		_ = c.Error(apperror.Validation("No file received"))
		return
	}
	file, err := fh.Open()
	if err != nil {
		_ = c.Error(apperror.Validation("Could not read file"))
		return
	}
	defer file.Close()

	url, err := upload.New(h.Bucket, nil).Accept(c, upload.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        file,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

// ServeMemoryObject serves objects of an in-process bucket.
func ServeMemoryObject(bucket *storage.Memory) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := strings.TrimPrefix(c.Param("path"), "/")
		obj, ok := bucket.Get(path)
		if !ok {
			c.Status(http.StatusNotFound)
			return
		}
		c.Header("Cache-Control", "public, max-age=31536000, immutable")
		c.Data(http.StatusOK, obj.ContentType, obj.Data)
	}
}
