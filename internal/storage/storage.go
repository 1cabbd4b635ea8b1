// Package storage is the blob store: write bytes, get back a retrievable
// path and URL. Files live in a flat local directory served under /uploads.
package storage

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// SavedFile describes one stored blob.
type SavedFile struct {
	Name string // original client file name
	Path string // filesystem path
	URL  string // retrievable URL path
}

// Store writes blobs to a local directory.
type Store struct {
	dir string
}

// New ensures the upload directory exists and returns a store over it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create upload dir")
	}
	return &Store{dir: dir}, nil
}

// Dir returns the root upload directory.
func (s *Store) Dir() string { return s.dir }

// Save writes data under a random file id, keeping the original extension.
// The prefix groups related uploads ("proof", "import", "").
func (s *Store) Save(prefix, filename string, data []byte) (SavedFile, error) {
	id := uuid.New().String()
	id = strings.ReplaceAll(id, "-", "")
	if prefix != "" {
		id = prefix + "_" + id
	}
	if ext := filepath.Ext(filename); ext != "" {
		id += ext
	}
	path := filepath.Join(s.dir, id)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return SavedFile{}, errors.Wrap(err, "write blob")
	}
	return SavedFile{
		Name: filepath.Base(filename),
		Path: path,
		URL:  "/uploads/" + id,
	}, nil
}

// Resolve maps a bare upload file name back to its path, rejecting anything
// that is not a plain name inside the upload directory.
func (s *Store) Resolve(filename string) (string, error) {
	if filename != filepath.Base(filename) || filename == "." || filename == "" {
		return "", errors.New("invalid filename")
	}
	path := filepath.Join(s.dir, filename)
	if _, err := os.Stat(path); err != nil {
		return "", errors.Wrap(err, "stat blob")
	}
	return path, nil
}

// Read returns the contents of a stored blob by path.
func (s *Store) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	return data, errors.Wrap(err, "read blob")
}

// Remove deletes a stored blob by path.
func (s *Store) Remove(path string) error {
	return errors.Wrap(os.Remove(path), "remove blob")
}
