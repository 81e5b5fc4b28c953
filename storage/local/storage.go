// Package local implements storage.Storage on a filesystem rooted at a base
// directory. The filesystem is an afero.Fs so tests can swap in memory.
//
// Usage:
//
//	s := local.New("/var/lib/supremetask")
//	// inputs/add/2024-01-02T03-04-05+0000 lands at
//	// /var/lib/supremetask/inputs/add/2024-01-02T03-04-05+0000
package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	supremetask "github.com/marwan116/supreme-task"
	"github.com/marwan116/supreme-task/storage"
)

var (
	_ storage.Storage = (*Storage)(nil)
	_ storage.Lister  = (*Storage)(nil)
)

// Option configures the Storage.
type Option func(*Storage)

// WithFs replaces the backing filesystem. The base path is applied on top
// of it.
func WithFs(fsys afero.Fs) Option {
	return func(s *Storage) { s.source = fsys }
}

// WithFileMode sets the permission bits of written files.
func WithFileMode(mode os.FileMode) Option {
	return func(s *Storage) { s.fileMode = mode }
}

// Storage writes each key as a file below a base directory.
type Storage struct {
	basePath string
	source   afero.Fs
	fs       afero.Fs
	fileMode os.FileMode
}

// New creates a local storage rooted at basePath on the OS filesystem.
func New(basePath string, opts ...Option) *Storage {
	s := &Storage{
		basePath: basePath,
		source:   afero.NewOsFs(),
		fileMode: 0o644,
	}
	for _, o := range opts {
		o(s)
	}
	s.fs = afero.NewBasePathFs(s.source, basePath)
	return s
}

// Name returns "local".
func (s *Storage) Name() string { return "local" }

// BasePath returns the root directory.
func (s *Storage) BasePath() string { return s.basePath }

// Fs returns the filesystem rooted at the base path.
func (s *Storage) Fs() afero.Fs { return s.fs }

// WritePath writes data to the file for key, creating parent directories.
func (s *Storage) WritePath(_ context.Context, key string, data []byte) error {
	name := s.filename(key)
	if err := s.fs.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return fmt.Errorf("local: mkdir for %q: %w", key, err)
	}
	if err := afero.WriteFile(s.fs, name, data, s.fileMode); err != nil {
		return fmt.Errorf("local: write %q: %w", key, err)
	}
	return nil
}

// ReadPath reads the file for key.
func (s *Storage) ReadPath(_ context.Context, key string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, s.filename(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", supremetask.ErrKeyNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("local: read %q: %w", key, err)
	}
	return data, nil
}

// List walks dir and returns the keys of all regular files below it.
func (s *Storage) List(_ context.Context, dir string) ([]string, error) {
	root := s.filename(dir)
	exists, err := afero.DirExists(s.fs, root)
	if err != nil {
		return nil, fmt.Errorf("local: stat %q: %w", dir, err)
	}
	if !exists {
		return nil, nil
	}

	var keys []string
	err = afero.Walk(s.fs, root, func(p string, info fs.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() {
			return nil
		}
		keys = append(keys, strings.TrimPrefix(filepath.ToSlash(p), "/"))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("local: list %q: %w", dir, err)
	}
	sort.Strings(keys)
	return keys, nil
}

// filename maps a key to an absolute path inside the base filesystem.
func (s *Storage) filename(key string) string {
	return filepath.FromSlash(path.Join("/", key))
}
