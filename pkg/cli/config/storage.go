package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/domain/interfaces"
	"github.com/secmon-lab/tablero/pkg/service/storage"
	"github.com/secmon-lab/tablero/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Storage holds CLI flags for blob storage
type Storage struct {
	backend string
	bucket  string
	prefix  string
	baseURL string
}

// Flags returns CLI flags for blob storage
func (s *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "storage-backend",
			Usage:       "Blob storage backend (gcs, memory, or empty to disable uploads)",
			Category:    "Storage",
			Sources:     cli.EnvVars("TABLERO_STORAGE_BACKEND"),
			Destination: &s.backend,
		},
		&cli.StringFlag{
			Name:        "storage-bucket",
			Usage:       "Cloud Storage bucket name",
			Category:    "Storage",
			Sources:     cli.EnvVars("TABLERO_STORAGE_BUCKET"),
			Destination: &s.bucket,
		},
		&cli.StringFlag{
			Name:        "storage-prefix",
			Usage:       "Object name prefix inside the bucket",
			Category:    "Storage",
			Sources:     cli.EnvVars("TABLERO_STORAGE_PREFIX"),
			Destination: &s.prefix,
		},
		&cli.StringFlag{
			Name:        "storage-base-url",
			Usage:       "Public URL base of stored files",
			Category:    "Storage",
			Sources:     cli.EnvVars("TABLERO_STORAGE_BASE_URL"),
			Destination: &s.baseURL,
		},
	}
}

// Configure returns the blob storage, or nil when uploads are disabled
func (s *Storage) Configure(ctx context.Context) (interfaces.BlobStorage, error) {
	switch s.backend {
	case "":
		logging.Default().Info("Blob storage not configured, materials are disabled")
		return nil, nil

	case "gcs":
		var opts []storage.GCSOption
		if s.prefix != "" {
			opts = append(opts, storage.WithObjectPrefix(s.prefix))
		}
		if s.baseURL != "" {
			opts = append(opts, storage.WithBaseURL(s.baseURL))
		}
		st, err := storage.NewGCS(ctx, s.bucket, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize GCS storage", goerr.V("bucket", s.bucket))
		}
		logging.Default().Info("Using Cloud Storage", "bucket", s.bucket, "prefix", s.prefix)
		return st, nil

	case "memory":
		baseURL := s.baseURL
		if baseURL == "" {
			baseURL = "http://localhost:8080/files"
		}
		logging.Default().Info("Using in-memory blob storage (development mode)")
		return storage.NewMemory(baseURL), nil

	default:
		return nil, goerr.New("invalid storage backend", goerr.V("backend", s.backend))
	}
}
