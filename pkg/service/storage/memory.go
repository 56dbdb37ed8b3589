package storage

import (
	"context"
	"io"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/domain/interfaces"
)

// Memory keeps blobs in process, for development and tests
type Memory struct {
	mu      sync.RWMutex
	objects map[string][]byte
	types   map[string]string
	baseURL string
}

var _ interfaces.BlobStorage = &Memory{}

// NewMemory creates an in-process blob storage. Public URLs are rooted at baseURL.
func NewMemory(baseURL string) *Memory {
	return &Memory{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func key(bucket, p string) string {
	return bucket + "/" + p
}

func (m *Memory) Upload(ctx context.Context, bucket, p string, r io.Reader, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return goerr.Wrap(err, "failed to read upload", goerr.V("bucket", bucket), goerr.V("path", p))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key(bucket, p)] = data
	m.types[key(bucket, p)] = contentType
	return nil
}

func (m *Memory) Remove(ctx context.Context, bucket string, paths ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range paths {
		delete(m.objects, key(bucket, p))
		delete(m.types, key(bucket, p))
	}
	return nil
}

func (m *Memory) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	root := bucket + "/"
	var paths []string
	for k := range m.objects {
		if strings.HasPrefix(k, root+prefix) {
			paths = append(paths, strings.TrimPrefix(k, root))
		}
	}
	slices.Sort(paths)
	return paths, nil
}

func (m *Memory) PublicURL(bucket, p string) string {
	return m.baseURL + "/" + url.PathEscape(bucket) + "/" + strings.ReplaceAll(url.PathEscape(p), "%2F", "/")
}

// Get returns a stored object and its content type
func (m *Memory) Get(bucket, p string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key(bucket, p)]
	return data, m.types[key(bucket, p)], ok
}
