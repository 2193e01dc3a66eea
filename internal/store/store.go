// Package store persists small JSON documents under string keys.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
)

// ErrNotFound is returned by Get for a key that was never written or was deleted.
var ErrNotFound = errors.New("not found")

// Store is a key/value store for local state. Writes replace the previous
// value; the last write wins.
type Store interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
	Close() error
}

// Kind selects a Store backend.
type Kind string

const (
	KindFile   Kind = "file"
	KindSQLite Kind = "sqlite"
)

// SQLiteFile is the database file name inside the data directory.
const SQLiteFile = "sunday.db"

// Open opens the backend of the given kind rooted at dir.
func Open(kind Kind, dir string) (Store, error) {
	switch kind {
	case KindFile, "":
		return NewFileStore(dir)
	case KindSQLite:
		return OpenSQLite(filepath.Join(dir, SQLiteFile), WithMkdirAll())
	default:
		return nil, fmt.Errorf("unknown storage kind %q", kind)
	}
}

// GetJSON decodes the value under key into v. found is false when the key is absent.
func GetJSON(s Store, key string, v any) (found bool, err error) {
	data, err := s.Get(key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// PutJSON encodes v and stores it under key.
func PutJSON(s Store, key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.Put(key, data)
}

// validKey reports whether key is safe to use as a file name.
func validKey(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
