// Package media manages the device-local staging directory for entry photos.
// A staged file bridges the gap between "user attached a photo" and "photo
// durably stored remotely": it survives restarts and is removed only once the
// upload queue has confirmed the remote URL.
package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Transform converts a picked image into the bytes that get stored and
// uploaded. Production wires an image compressor here; the default is an
// identity copy.
type Transform func(dst io.Writer, src io.Reader) error

func identity(dst io.Writer, src io.Reader) error {
	_, err := io.Copy(dst, src)
	return err
}

// Store is a directory of staged photo files keyed by entry id.
type Store struct {
	dir       string
	ext       string
	transform Transform
}

// NewStore creates the staging directory if needed. A nil transform means
// files are staged byte-for-byte.
func NewStore(dir string, transform Transform) (*Store, error) {
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	if transform == nil {
		transform = identity
	}
	return &Store{dir: dir, ext: "jpg", transform: transform}, nil
}

// Ext returns the file extension staged photos are stored with.
func (s *Store) Ext() string {
	return s.ext
}

// Path returns the staging path for an entry id. The file may not exist.
func (s *Store) Path(entryID string) string {
	return filepath.Join(s.dir, entryID+"."+s.ext)
}

// Stage writes the (transformed) photo bytes for entryID and returns the
// staged path. An existing staged file is replaced.
func (s *Store) Stage(entryID string, src io.Reader) (string, error) {
	dst := s.Path(entryID)

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dst, err)
	}

	if err := s.transform(f, src); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("stage photo for %s: %w", entryID, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", dst, err)
	}
	return dst, nil
}

// StageFile stages a photo from an existing file on disk.
func (s *Store) StageFile(entryID, srcPath string) (string, error) {
	f, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", srcPath, err)
	}
	defer f.Close()
	return s.Stage(entryID, f)
}

// Open returns a reader over the staged file for entryID.
func (s *Store) Open(entryID string) (*os.File, error) {
	return os.Open(s.Path(entryID))
}

// Remove deletes the staged file for entryID. A missing file is not an error.
func (s *Store) Remove(entryID string) error {
	err := os.Remove(s.Path(entryID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove staged photo for %s: %w", entryID, err)
	}
	return nil
}

// RemoveAll clears the whole staging directory. Used on sign-out.
func (s *Store) RemoveAll() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read %s: %w", s.dir, err)
	}
	for _, e := range entries {
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			return fmt.Errorf("remove %s: %w", e.Name(), err)
		}
	}
	return nil
}
