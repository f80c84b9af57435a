package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// FileKV stores each collection in its own JSON file under basePath.
type FileKV struct {
	basePath string
}

// NewFileKV creates a new FileKV and ensures the base directory exists.
func NewFileKV(basePath string) (*FileKV, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &FileKV{basePath: basePath}, nil
}

// pathFor returns the file path for a collection key.
func (s *FileKV) pathFor(key string) string {
	return filepath.Join(s.basePath, unsafeKeyChars.ReplaceAllString(key, "_")+".json")
}

// Get reads the file stored for key.
func (s *FileKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.pathFor(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read collection file: %w", err)
	}
	return data, true, nil
}

// Put writes data to a temporary file and renames it over the old one, so a
// reader never sees a half-written collection.
func (s *FileKV) Put(_ context.Context, key string, data []byte) error {
	target := s.pathFor(key)
	tmp, err := os.CreateTemp(s.basePath, filepath.Base(target)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write collection file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close collection file: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace collection file: %w", err)
	}
	return nil
}
