package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/masumislambadsha/zavisoft/internal/repository"
	"github.com/masumislambadsha/zavisoft/pkg/database"
	apperrors "github.com/masumislambadsha/zavisoft/pkg/errors"
)

// document is the on-disk layout: a single YAML mapping from key to blob.
type document struct {
	Entries map[string]string `yaml:"entries"`
}

// KV implements repository.KV as one YAML file rewritten in full after every
// write or Delete. It suits a single storefront process.
type KV struct {
	path string

	mu      sync.RWMutex
	entries map[string]string
}

// Open loads the store at path, creating its directory when missing. A
// missing file is an empty store.
func Open(path string) (*KV, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	kv := &KV{path: path, entries: make(map[string]string)}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return kv, nil
	case err != nil:
		return nil, fmt.Errorf("read storage file %s: %w", path, err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse storage file %s: %w", path, err)
	}
	if doc.Entries != nil {
		kv.entries = doc.Entries
	}
	return kv, nil
}

// Path returns the backing file.
func (s *KV) Path() string { return s.path }

// Get returns the blob stored under key.
func (s *KV) Get(ctx context.Context, key string) (_ []byte, err error) {
	_, end := database.TraceOp(ctx, database.SystemFile, "kv.get", key)
	defer func() { end(err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.entries[key]
	if !ok {
		return nil, apperrors.NotFound("key", key)
	}
	return []byte(v), nil
}

// CompareAndSet stores value under key and rewrites the file when key still
// holds old. The in-memory snapshot is restored if the rewrite fails.
func (s *KV) CompareAndSet(ctx context.Context, key string, old, value []byte) (_ bool, err error) {
	_, end := database.TraceOp(ctx, database.SystemFile, "kv.compare_and_set", key)
	defer func() { end(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.entries[key]
	if !repository.Matches([]byte(prev), had, old) {
		return false, nil
	}
	s.entries[key] = string(value)
	if err := s.flush(); err != nil {
		if had {
			s.entries[key] = prev
		} else {
			delete(s.entries, key)
		}
		return false, err
	}
	return true, nil
}

// Delete removes key and rewrites the file. Deleting an absent key does not
// touch the file.
func (s *KV) Delete(ctx context.Context, key string) (err error) {
	_, end := database.TraceOp(ctx, database.SystemFile, "kv.delete", key)
	defer func() { end(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.entries[key]
	if !had {
		return nil
	}
	delete(s.entries, key)
	if err := s.flush(); err != nil {
		s.entries[key] = prev
		return err
	}
	return nil
}

// Ping reports whether the storage directory is still accessible.
func (s *KV) Ping(context.Context) error {
	if _, err := os.Stat(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("stat storage directory: %w", err)
	}
	return nil
}

// flush writes the snapshot to a temp file in the same directory and renames
// it over the target. Callers hold s.mu.
func (s *KV) flush() error {
	data, err := yaml.Marshal(&document{Entries: s.entries})
	if err != nil {
		return fmt.Errorf("encode storage file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp storage file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp storage file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp storage file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp storage file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace storage file: %w", err)
	}
	return nil
}
