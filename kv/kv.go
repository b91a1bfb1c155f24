package kv

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Get when nothing is stored under the key.
	ErrNotFound = errors.New("key not found")

	// ErrCorrupted is returned by Get when the stored value fails an integrity check.
	ErrCorrupted = errors.New("stored value is corrupted")

	// ErrUnknownBackend is returned by Open.
	ErrUnknownBackend = errors.New("unknown backend")

	// ErrInvalidKey is returned for keys that not every backend can store.
	ErrInvalidKey = errors.New("invalid key")
)

// CheckKey returns an error wrapping ErrInvalidKey if the key cannot be used with every backend.
func CheckKey(key string) error {
	switch key {
	case "", ".", "..":
		return fmt.Errorf("%q: %w", key, ErrInvalidKey)
	}
	return nil
}

// Store is a durable map from string keys to byte values. Set overwrites any previous value.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
)

// Open creates a store of the named backend. The location is a directory for "file", a database file for
// "sqlite", and a DSN for "mysql"; it is ignored for "memory".
func Open(backend, location string) (Store, error) {
	switch backend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendFile:
		return NewFile(location)
	case BackendSQLite:
		return OpenSQLite(location)
	case BackendMySQL:
		return OpenMySQL(location)
	default:
		return nil, fmt.Errorf("%q: %w", backend, ErrUnknownBackend)
	}
}
