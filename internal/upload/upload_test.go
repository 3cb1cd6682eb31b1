package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vnfurniture/internal/apperror"
	"vnfurniture/internal/storage"
)

// pngHeader is enough for content sniffing to see a PNG.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

type countingBucket struct {
	*storage.Memory
	uploads int
}

func (b *countingBucket) Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) error {
	b.uploads++
	return b.Memory.Upload(ctx, path, r, size, contentType)
}

func newDropzone(t *testing.T) (*Dropzone, *countingBucket, *[]string) {
	t.Helper()
	bucket := &countingBucket{Memory: storage.NewMemory("products", "http://cdn.test")}
	var reported []string
	d := New(bucket, func(url string) { reported = append(reported, url) })
	d.newName = func() string { return "fixed" }
	return d, bucket, &reported
}

func TestAcceptImage(t *testing.T) {
	d, bucket, reported := newDropzone(t)

	url, err := d.Accept(context.Background(), File{Name: "Sofa.PNG", ContentType: "image/png", Data: bytes.NewReader(pngHeader)})
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.test/products/product-images/fixed.png", url)
	assert.Equal(t, []string{url}, *reported)
	assert.Equal(t, url, d.Preview())
	assert.False(t, d.Uploading())

	obj, ok := bucket.Get("product-images/fixed.png")
	require.True(t, ok)
	assert.Equal(t, "image/png", obj.ContentType)
}

func TestAcceptUsesSniffedExtension(t *testing.T) {
	d, bucket, _ := newDropzone(t)
	_, err := d.Accept(context.Background(), File{Name: "photo", Data: bytes.NewReader(pngHeader)})
	require.NoError(t, err)
	assert.Equal(t, []string{"product-images/fixed.png"}, bucket.Paths())
}

func TestAcceptRejectsNonImages(t *testing.T) {
	cases := []File{
		{Name: "notes.txt", ContentType: "text/plain", Data: strings.NewReader("hello")},
		{Name: "fake.png", ContentType: "image/png", Data: strings.NewReader("just text pretending")},
		{Name: "doc.pdf", Data: strings.NewReader("%PDF-1.4\n")},
		{Name: "empty.png", ContentType: "image/png", Data: strings.NewReader("")},
	}
	for _, f := range cases {
		d, bucket, reported := newDropzone(t)
		_, err := d.Accept(context.Background(), f)
		require.Error(t, err, f.Name)
		assert.True(t, apperror.Is(err, 422), f.Name)
		assert.Zero(t, bucket.uploads, f.Name)
		assert.Empty(t, *reported, f.Name)
	}
}

func TestAcceptRejectsOversize(t *testing.T) {
	d, bucket, _ := newDropzone(t)
	big := append(append([]byte{}, pngHeader...), make([]byte, MaxSize)...)
	_, err := d.Accept(context.Background(), File{Name: "big.png", ContentType: "image/png", Data: bytes.NewReader(big)})
	require.Error(t, err)
	assert.Zero(t, bucket.uploads)
}

func TestAcceptUploadFailure(t *testing.T) {
	d, bucket, reported := newDropzone(t)
	bucket.Fail = errors.New("bucket offline")

	_, err := d.Accept(context.Background(), File{Name: "a.png", Data: bytes.NewReader(pngHeader)})
	require.Error(t, err)
	assert.Equal(t, "Error uploading image", apperror.Message(err))
	assert.Empty(t, d.Preview())
	assert.Empty(t, *reported)
}

func TestClearKeepsObject(t *testing.T) {
	d, bucket, reported := newDropzone(t)
	url, err := d.Accept(context.Background(), File{Name: "a.png", Data: bytes.NewReader(pngHeader)})
	require.NoError(t, err)

	d.Clear()
	assert.Empty(t, d.Preview())
	assert.Equal(t, []string{url, ""}, *reported)
	assert.Len(t, bucket.Paths(), 1)
}

func TestObjectKeyFromURL(t *testing.T) {
	assert.Equal(t, "product-images/abc.jpg", ObjectKeyFromURL("http://cdn.test/products/product-images/abc.jpg"))
	assert.Equal(t, "product-images/abc.jpg", ObjectKeyFromURL("http://cdn.test/products/product-images/abc.jpg?v=1"))
	assert.Equal(t, "", ObjectKeyFromURL(""))
	assert.Equal(t, "", ObjectKeyFromURL("http://cdn.test/"))
}
