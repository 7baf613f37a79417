// Package storage keeps uploaded book cover images on the local filesystem.
// Books reference them by a "/images/<name>" path served by the static file
// route.
package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrEmptyFile = errors.New("no file provided")

type ImageStore struct {
	dir string
}

func NewImageStore(dir string) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &ImageStore{dir: dir}, nil
}

// Save writes the upload under a random name, keeping the original extension,
// and returns the public path to store on the book.
func (s *ImageStore) Save(src io.Reader, originalName string) (string, error) {
	if src == nil {
		return "", ErrEmptyFile
	}

	name := uuid.New().String() + strings.ToLower(filepath.Ext(originalName))
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	n, err := io.Copy(dst, src)
	if err != nil {
		return "", err
	}
	if n == 0 {
		os.Remove(dst.Name())
		return "", ErrEmptyFile
	}

	return "/images/" + name, nil
}

// Remove deletes a previously saved image. Missing files are not an error;
// the reference is stale either way.
func (s *ImageStore) Remove(publicPath string) error {
	name := strings.TrimPrefix(publicPath, "/images/")
	if name == "" || name == publicPath {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Dir returns the directory backing the store, for the static file server.
func (s *ImageStore) Dir() string {
	return s.dir
}
