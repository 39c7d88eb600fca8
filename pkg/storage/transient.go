package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// AudioExt is the extension given to every transient audio file.
const AudioExt = ".mp3"

// Store hands out transient files under a single directory.
type Store struct {
	fs  afero.Fs
	dir string
	now func() time.Time
}

// NewStore creates a Store rooted at dir. The directory is created lazily.
func NewStore(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: dir, now: time.Now}
}

// Fs returns the filesystem the store writes to.
func (s *Store) Fs() afero.Fs {
	return s.fs
}

// Dir returns the transient directory.
func (s *Store) Dir() string {
	return s.dir
}

// Lease is one reserved transient path. The file behind it belongs to a single
// request and must be released before that request finishes.
type Lease struct {
	Path string

	fs   afero.Fs
	once sync.Once
	err  error
}

// Acquire reserves a new transient path named after the current time plus a
// random suffix. Nothing is written yet.
func (s *Store) Acquire() (*Lease, error) {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create transient dir: %w", err)
	}
	name := fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), uuid.NewString(), AudioExt)
	return &Lease{Path: filepath.Join(s.dir, name), fs: s.fs}, nil
}

// Release deletes the leased file. A file that was never written is fine.
// Calling Release more than once returns the first result.
func (l *Lease) Release() error {
	l.once.Do(func() {
		err := l.fs.Remove(l.Path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			l.err = fmt.Errorf("failed to remove transient file: %w", err)
		}
	})
	return l.err
}

// Sweep removes transient files older than maxAge and returns how many were removed.
// Leftovers appear when the process dies mid-request.
func (s *Store) Sweep(maxAge time.Duration) (int, error) {
	cutoff := s.now().Add(-maxAge)
	return s.removeWhere(func(info os.FileInfo) bool {
		return info.ModTime().Before(cutoff)
	})
}

// Purge removes every transient file.
func (s *Store) Purge() (int, error) {
	return s.removeWhere(func(os.FileInfo) bool { return true })
}

func (s *Store) removeWhere(match func(os.FileInfo) bool) (int, error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read transient dir: %w", err)
	}

	removed := 0
	var errs []error
	for _, entry := range entries {
		if entry.IsDir() || !match(entry) {
			continue
		}
		if err := s.fs.Remove(filepath.Join(s.dir, entry.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}
