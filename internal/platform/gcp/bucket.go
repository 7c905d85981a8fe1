package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	apperrors "github.com/yungbote/coursekit/internal/pkg/errors"
	"github.com/yungbote/coursekit/internal/platform/logger"
)

const objectTimeout = 2 * time.Minute

// ObjectStore reads and writes whole objects; snapshots are small enough to
// hold in memory.
type ObjectStore interface {
	ReadObject(ctx context.Context, bucket, key string) ([]byte, error)
	WriteObject(ctx context.Context, bucket, key string, data []byte) error
	Close() error
}

type objectStore struct {
	log    *logger.Logger
	client *storage.Client
}

func NewObjectStore(ctx context.Context, log *logger.Logger, cfg StorageConfig) (ObjectStore, error) {
	if err := ValidateStorageConfig(cfg); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	client, err := newStorageClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	serviceLog := log.With("service", "ObjectStore")
	serviceLog.Debug("Object storage initialized", "mode", cfg.Mode, "emulator_host", cfg.EmulatorHost, "inferred", cfg.Inferred)
	return &objectStore{log: serviceLog, client: client}, nil
}

func newStorageClient(ctx context.Context, cfg StorageConfig) (*storage.Client, error) {
	if cfg.IsEmulatorMode() {
		_ = os.Setenv("STORAGE_EMULATOR_HOST", cfg.EmulatorHost)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	}
	opts := ClientOptionsFromEnv()
	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	return storage.NewClient(ctx, opts...)
}

func (s *objectStore) ReadObject(ctx context.Context, bucket, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, objectTimeout)
	defer cancel()

	r, err := s.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
			return nil, fmt.Errorf("gs://%s/%s: %w", bucket, key, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open GCS reader: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read GCS object: %w", err)
	}
	s.log.Debug("Read object", "bucket", bucket, "key", key, "bytes", len(data))
	return data, nil
}

// WriteObject uploads data in one writer; the object only becomes visible when
// the writer closes cleanly.
func (s *objectStore) WriteObject(ctx context.Context, bucket, key string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, objectTimeout)
	defer cancel()

	w := s.client.Bucket(bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentTypeForKey(key)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	s.log.Debug("Wrote object", "bucket", bucket, "key", key, "bytes", len(data))
	return nil
}

func (s *objectStore) Close() error {
	return s.client.Close()
}

func contentTypeForKey(key string) string {
	switch k := strings.ToLower(strings.TrimSpace(key)); {
	case strings.HasSuffix(k, ".json"):
		return "application/json"
	case strings.HasSuffix(k, ".csv"):
		return "text/csv; charset=utf-8"
	case strings.HasSuffix(k, ".md"):
		return "text/markdown; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
