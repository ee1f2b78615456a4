// Package filestore persists a client's session slot as a JSON object on disk.
// The admin CLI uses it the way a browser uses local storage.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	apperrors "github.com/kjsce/kj-connect/internal/errors"
	"github.com/kjsce/kj-connect/internal/ports"
)

var _ ports.SessionStore = (*Store)(nil)

// Store is a ports.SessionStore backed by a single JSON file of string values.
type Store struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report a discarded state file.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns a store rooted at path. The file and its directory are created on first write.
func New(path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, errors.New("filestore: path is required")
	}
	s := &Store{path: path, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Get returns the value stored under key or ports.ErrNotFound. An unparseable
// state file yields a corrupt_session error.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return nil, err
	}
	v, ok := data[key]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return []byte(v), nil
}

// Set stores value under key and rewrites the file atomically. An unparseable
// state file is replaced rather than blocking the write.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.loadForWrite(ctx)
	if err != nil {
		return err
	}
	data[key] = string(value)
	return s.save(data)
}

// Delete removes key. Missing keys and a missing file are not errors; an
// unparseable state file is reset to empty.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if apperrors.IsCorruptSession(err) {
		s.logger.DebugContext(ctx, "resetting unreadable state file", "path", s.path, "error", err)
		return s.save(map[string]string{})
	}
	if err != nil {
		return err
	}
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)
	return s.save(data)
}

func (s *Store) load() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}
	data := map[string]string{}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, apperrors.CorruptSession(fmt.Errorf("parse state file %s: %w", s.path, err))
	}
	return data, nil
}

func (s *Store) loadForWrite(ctx context.Context) (map[string]string, error) {
	data, err := s.load()
	if apperrors.IsCorruptSession(err) {
		s.logger.DebugContext(ctx, "discarding unreadable state file", "path", s.path, "error", err)
		return map[string]string{}, nil
	}
	return data, err
}

func (s *Store) save(data map[string]string) (err error) {
	if mkErr := os.MkdirAll(filepath.Dir(s.path), 0o700); mkErr != nil {
		return fmt.Errorf("create state dir: %w", mkErr)
	}
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, os.Remove(tmp.Name()))
		}
	}()

	if _, err = tmp.Write(raw); err != nil {
		return errors.Join(fmt.Errorf("write state: %w", err), tmp.Close())
	}
	if err = tmp.Chmod(0o600); err != nil {
		return errors.Join(fmt.Errorf("chmod state: %w", err), tmp.Close())
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close state: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
