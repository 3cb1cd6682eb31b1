// Package upload stages product images: it checks that a file really is an
// image, stores it under a random name and reports the public URL.
package upload

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"vnfurniture/internal/apperror"
	"vnfurniture/internal/logger"
	"vnfurniture/internal/storage"
)

const (
	// Folder is the key prefix of every product image.
	Folder = "product-images"

	MaxSize int64 = 5 << 20
)

// File is one picked or dropped file.
type File struct {
	Name        string
	ContentType string
	Data        io.Reader
}

// Dropzone accepts one image at a time. The last finished upload owns the
// preview when uploads overlap.
type Dropzone struct {
	bucket     storage.Bucket
	onUploaded func(url string)
	newName    func() string

	mu        sync.Mutex
	preview   string
	uploading bool
}

// New returns a Dropzone reporting uploaded URLs to onImageUploaded.
func New(bucket storage.Bucket, onImageUploaded func(url string)) *Dropzone {
	if onImageUploaded == nil {
		onImageUploaded = func(string) {}
	}
	return &Dropzone{bucket: bucket, onUploaded: onImageUploaded, newName: uuid.NewString}
}

// Accept validates f and uploads it. Files that are not images are rejected
// before storage is contacted.
func (d *Dropzone) Accept(ctx context.Context, f File) (string, error) {
	if f.ContentType != "" && !isImageType(f.ContentType) {
		return "", apperror.Validation("Please upload an image file")
	}
	if f.Data == nil {
		return "", apperror.Validation("No file received")
	}

	data, err := io.ReadAll(io.LimitReader(f.Data, MaxSize+1))
	if err != nil {
		return "", apperror.Validation("Could not read file")
	}
	if len(data) == 0 {
		return "", apperror.Validation("The file is empty")
	}
	if int64(len(data)) > MaxSize {
		return "", apperror.Validation("Image must be 5 MB or smaller")
	}

	mt := mimetype.Detect(data)
	if !sniffedImage(mt) {
		return "", apperror.Validation("Please upload an image file")
	}

	key := ObjectKey(d.newName(), extension(f.Name, mt))

	d.setUploading(true)
	err = d.bucket.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), mt.String())
	if err != nil {
		d.mu.Lock()
		d.uploading = false
		d.preview = ""
		d.mu.Unlock()
		logger.Error(ctx, "image upload failed", err, zap.String("key", key))
		return "", apperror.Remote("Error uploading image", err)
	}

	publicURL := d.bucket.PublicURL(key)
	d.mu.Lock()
	d.uploading = false
	d.preview = publicURL
	d.mu.Unlock()

	logger.Info(ctx, "📸 image uploaded", zap.String("key", key), zap.String("type", mt.String()))
	d.onUploaded(publicURL)
	return publicURL, nil
}

// Clear drops the preview and reports "no image". The stored object stays.
func (d *Dropzone) Clear() {
	d.mu.Lock()
	d.preview = ""
	d.mu.Unlock()
	d.onUploaded("")
}

func (d *Dropzone) Preview() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.preview
}

// Uploading is true while a transfer is in flight.
func (d *Dropzone) Uploading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.uploading
}

func (d *Dropzone) setUploading(v bool) {
	d.mu.Lock()
	d.uploading = v
	d.mu.Unlock()
}

func isImageType(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
}

func sniffedImage(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if isImageType(m.String()) {
			return true
		}
	}
	return false
}

// extension keeps the original extension, falling back to the sniffed one.
func extension(name string, mt *mimetype.MIME) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" || len(ext) > 6 {
		ext = mt.Extension()
	}
	return ext
}

// ObjectKey is the storage key of an image named name with extension ext.
func ObjectKey(name, ext string) string {
	return Folder + "/" + name + ext
}

// ObjectKeyFromURL maps a public image URL back to its storage key using the
// URL's last path segment. It returns "" when there is none.
func ObjectKeyFromURL(raw string) string {
	if raw == "" {
		return ""
	}
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	}
	name := path.Base(p)
	if name == "" || name == "." || name == "/" {
		return ""
	}
	return Folder + "/" + name
}
