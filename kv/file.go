package kv

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// File is a Store keeping each value in its own file within a directory. Next to the value file there is a file
// holding its SHA-256 sum; a value whose sum does not match is reported as ErrCorrupted. The two files are replaced
// by renaming freshly written temporary files, so a reader sees either the old or the new content of each, but a
// crash between the two renames leaves a mismatch that will be reported as corruption.
type File struct {
	dir string
}

// NewFile returns a store rooted at dir, creating the directory if needed.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		return nil, errors.New("file store: empty directory")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("file store: %w", err)
	}
	return &File{dir: dir}, nil
}

// paths maps the key to file names within the store directory. Escaping takes care of separators, but not of the
// dot names, which are rejected.
func (s *File) paths(key string) (data, sum string, err error) {
	if err := CheckKey(key); err != nil {
		return "", "", err
	}
	base := filepath.Join(s.dir, url.PathEscape(key))
	return base + ".data", base + ".sum", nil
}

func (s *File) Get(_ context.Context, key string) ([]byte, error) {
	dataPath, sumPath, err := s.paths(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(dataPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	savedSum, err := os.ReadFile(sumPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: missing checksum: %w", key, ErrCorrupted)
	}
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(data)
	if !bytes.Equal(savedSum, sum[:]) {
		return nil, fmt.Errorf("%s: checksum mismatch: %w", key, ErrCorrupted)
	}
	return data, nil
}

func (s *File) Set(_ context.Context, key string, value []byte) error {
	dataPath, sumPath, err := s.paths(key)
	if err != nil {
		return err
	}
	sum := sha256.Sum256(value)
	if err := writeFile(dataPath, value); err != nil {
		return err
	}
	return writeFile(sumPath, sum[:])
}

func (s *File) Close() error {
	return nil
}

func writeFile(pathname string, b []byte) error {
	f, err := os.CreateTemp(filepath.Dir(pathname), filepath.Base(pathname)+".*")
	if err != nil {
		return err
	}
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return err
	}
	return os.Rename(f.Name(), pathname)
}
