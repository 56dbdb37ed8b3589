package storage

import (
	"context"
	"errors"
	"io"
	"net/url"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/domain/interfaces"
	"github.com/secmon-lab/tablero/pkg/utils/safe"
	"google.golang.org/api/iterator"
)

// GCS stores every logical bucket as a prefix of one Cloud Storage bucket:
// object "<prefix>/<bucket>/<path>".
type GCS struct {
	client  *storage.Client
	bucket  string
	prefix  string
	baseURL string
}

var _ interfaces.BlobStorage = &GCS{}

type GCSOption func(*GCS)

// WithObjectPrefix places all objects below prefix
func WithObjectPrefix(prefix string) GCSOption {
	return func(g *GCS) {
		g.prefix = strings.Trim(prefix, "/")
	}
}

// WithBaseURL overrides the public URL base, e.g. for a CDN in front of the bucket
func WithBaseURL(baseURL string) GCSOption {
	return func(g *GCS) {
		g.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// NewGCS creates a Cloud Storage backed blob storage
func NewGCS(ctx context.Context, bucket string, opts ...GCSOption) (*GCS, error) {
	if bucket == "" {
		return nil, goerr.New("GCS bucket is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	g := &GCS{
		client:  client,
		bucket:  bucket,
		baseURL: "https://storage.googleapis.com/" + bucket,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *GCS) objectName(bucket, p string) string {
	return path.Join(g.prefix, bucket, p)
}

func (g *GCS) Upload(ctx context.Context, bucket, p string, r io.Reader, contentType string) error {
	name := g.objectName(bucket, p)
	w := g.client.Bucket(g.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		safe.Close(ctx, w)
		return goerr.Wrap(err, "failed to write object", goerr.V("object", name))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize object", goerr.V("object", name))
	}
	return nil
}

func (g *GCS) Remove(ctx context.Context, bucket string, paths ...string) error {
	for _, p := range paths {
		name := g.objectName(bucket, p)
		err := g.client.Bucket(g.bucket).Object(name).Delete(ctx)
		if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
			return goerr.Wrap(err, "failed to delete object", goerr.V("object", name))
		}
	}
	return nil
}

func (g *GCS) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	root := g.objectName(bucket, "") + "/"
	iter := g.client.Bucket(g.bucket).Objects(ctx, &storage.Query{Prefix: root + prefix})

	var paths []string
	for {
		attrs, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list objects", goerr.V("prefix", root+prefix))
		}
		paths = append(paths, strings.TrimPrefix(attrs.Name, root))
	}
	return paths, nil
}

func (g *GCS) PublicURL(bucket, p string) string {
	segments := strings.Split(g.objectName(bucket, p), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return g.baseURL + "/" + strings.Join(segments, "/")
}

// Close closes the storage client
func (g *GCS) Close() error {
	return g.client.Close()
}
