// Package blobstore is a small file-backed key/value store for opaque client
// state, replacing the desktop shell's persist/load-by-key bridge.
package blobstore

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/model"
)

var ErrBadKey = errors.New("invalid blob key")

type Store struct {
	Logger *slog.Logger
	dir    string
}

func New(logger *slog.Logger, dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("blobstore: create data dir: %w", err)
	}

	return &Store{
		Logger: logger.With("module", "blobstore"),
		dir:    dir,
	}, nil
}

func (s *Store) Save(key string, data []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	// Write-then-rename so a crashed write never leaves a torn blob.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}

	s.Logger.Debug("blob saved", "key", key, "size", len(data))

	return nil
}

func (s *Store) Load(key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, model.NewError("blob", model.ErrNotFound)
		}
		return nil, err
	}

	return data, nil
}

func (s *Store) path(key string) (string, error) {
	if key == "" || !validKey(key) {
		return "", ErrBadKey
	}
	return filepath.Join(s.dir, key+".json"), nil
}

func validKey(key string) bool {
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.':
		default:
			return false
		}
	}
	return key != "." && key != ".."
}
