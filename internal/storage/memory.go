package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// Object is a stored blob held by Memory.
type Object struct {
	Data        []byte
	ContentType string
}

// Memory is an in-process Bucket. Objects are served by the app itself under
// baseURL (see handlers.ServeMemoryObject).
type Memory struct {
	mu      sync.RWMutex
	bucket  string
	baseURL string
	objects map[string]Object

	// Fail, when set, makes Upload and Remove return it.
	Fail error
}

func NewMemory(bucket, baseURL string) *Memory {
	return &Memory{
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]Object),
	}
}

func (m *Memory) Upload(_ context.Context, path string, r io.Reader, _ int64, contentType string) error {
	if m.Fail != nil {
		return m.Fail
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return fmt.Errorf("read upload: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = Object{Data: buf.Bytes(), ContentType: contentType}
	return nil
}

func (m *Memory) PublicURL(path string) string {
	return fmt.Sprintf("%s/%s/%s", m.baseURL, m.bucket, strings.TrimLeft(path, "/"))
}

func (m *Memory) Remove(_ context.Context, paths ...string) error {
	if m.Fail != nil {
		return m.Fail
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range paths {
		delete(m.objects, p)
	}
	return nil
}

// Get returns a stored object.
func (m *Memory) Get(path string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[path]
	return o, ok
}

// Paths lists stored object paths in order.
func (m *Memory) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.objects))
	for p := range m.objects {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
