package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/recipebox/core/internal/domain/entities"
	"github.com/recipebox/core/internal/ports"
)

const emptyCollection = "[]"

// FileStore implements the RecordStore interface over a single JSON file.
//
// Every call goes to disk; nothing is cached between calls. Writes fully
// overwrite the file, so two callers working from the same snapshot will
// lose one of their changes unless the caller serializes them.
type FileStore struct {
	path    string
	atomic  bool
	metrics *Metrics
}

// FileStoreOption configures a FileStore
type FileStoreOption func(*FileStore)

// WithAtomicWrites makes Save write to a temporary file and rename it over
// the target, so readers never observe a partially written file.
func WithAtomicWrites() FileStoreOption {
	return func(s *FileStore) {
		s.atomic = true
	}
}

// WithMetrics records every store operation on m
func WithMetrics(m *Metrics) FileStoreOption {
	return func(s *FileStore) {
		s.metrics = m
	}
}

// NewFileStore creates a new file-backed record store
func NewFileStore(path string, opts ...FileStoreOption) ports.RecordStore {
	s := &FileStore{path: path}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FileStore) ReadRaw(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err == nil {
		s.metrics.observe("read", nil)
		return data, nil
	}

	if !errors.Is(err, fs.ErrNotExist) {
		s.metrics.observe("read", err)
		return nil, fmt.Errorf("%w: %w", entities.ErrStoreRead, err)
	}

	if err := os.WriteFile(s.path, []byte(emptyCollection), 0o644); err != nil {
		s.metrics.observe("bootstrap", err)
		return nil, fmt.Errorf("%w: %w", entities.ErrStoreCreate, err)
	}
	s.metrics.observe("bootstrap", nil)

	return []byte(emptyCollection), nil
}

func (s *FileStore) Load(ctx context.Context) (entities.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	s.metrics.observe("read", err)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entities.ErrStoreRead, err)
	}

	coll, err := entities.DecodeCollection(data)
	if err != nil {
		s.metrics.observe("parse", err)
		return entities.Collection{}, nil
	}

	return coll, nil
}

func (s *FileStore) LoadOrEmpty(ctx context.Context) entities.Collection {
	if ctx.Err() != nil {
		return entities.Collection{}
	}

	data, err := os.ReadFile(s.path)
	s.metrics.observe("read", err)
	if err != nil || len(data) == 0 {
		return entities.Collection{}
	}

	coll, err := entities.DecodeCollection(data)
	if err != nil {
		s.metrics.observe("parse", err)
		return entities.Collection{}
	}

	return coll
}

func (s *FileStore) Save(ctx context.Context, coll entities.Collection) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := entities.EncodeCollection(coll)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", entities.ErrStoreWrite, err)
	}

	if s.atomic {
		err = writeFileAtomic(s.path, data)
	} else {
		err = os.WriteFile(s.path, data, 0o644)
	}
	s.metrics.observe("write", err)
	if err != nil {
		return fmt.Errorf("%w: %w", entities.ErrStoreWrite, err)
	}

	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}

	return nil
}
