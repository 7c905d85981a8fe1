package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	apperrors "github.com/yungbote/coursekit/internal/pkg/errors"
	"github.com/yungbote/coursekit/internal/platform/gcp"
	"github.com/yungbote/coursekit/internal/platform/logger"
)

// ObjectOpener builds the GCS client on first use so local-only runs never need
// cloud credentials.
type ObjectOpener func(ctx context.Context) (gcp.ObjectStore, error)

type Store struct {
	log  *logger.Logger
	open ObjectOpener

	mu      sync.Mutex
	objects gcp.ObjectStore
}

// New returns a Store. open may be nil, in which case gs:// locations fail.
func New(log *logger.Logger, open ObjectOpener) *Store {
	return &Store{log: log.With("service", "SnapshotStore"), open: open}
}

func (s *Store) Read(ctx context.Context, uri string) ([]byte, error) {
	loc, err := ParseLocation(uri)
	if err != nil {
		return nil, err
	}
	switch loc.Scheme {
	case SchemeGCS:
		objects, err := s.objectStore(ctx)
		if err != nil {
			return nil, err
		}
		return objects.ReadObject(ctx, loc.Bucket, loc.Key)
	default:
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(loc.Path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%s: %w", loc.Path, apperrors.ErrNotFound)
			}
			return nil, fmt.Errorf("read %s: %w", loc.Path, err)
		}
		s.log.Debug("Read snapshot", "path", loc.Path, "bytes", len(data))
		return data, nil
	}
}

// Write stores data at uri as a single unit: either the whole payload lands or
// the previous content stays in place.
func (s *Store) Write(ctx context.Context, uri string, data []byte) error {
	loc, err := ParseLocation(uri)
	if err != nil {
		return err
	}
	switch loc.Scheme {
	case SchemeGCS:
		objects, err := s.objectStore(ctx)
		if err != nil {
			return err
		}
		return objects.WriteObject(ctx, loc.Bucket, loc.Key, data)
	default:
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeFileAtomic(loc.Path, data); err != nil {
			return err
		}
		s.log.Debug("Wrote snapshot", "path", loc.Path, "bytes", len(data))
		return nil
	}
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects == nil {
		return nil
	}
	err := s.objects.Close()
	s.objects = nil
	return err
}

func (s *Store) objectStore(ctx context.Context) (gcp.ObjectStore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects != nil {
		return s.objects, nil
	}
	if s.open == nil {
		return nil, fmt.Errorf("%w: object storage is not configured", ErrUnsupportedScheme)
	}
	objects, err := s.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open object storage: %w", err)
	}
	s.objects = objects
	return objects, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	committed = true
	return nil
}
