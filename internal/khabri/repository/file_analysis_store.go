package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"market-khabri/internal/entity"
	"market-khabri/pkg/logger"
)

// NewFileAnalysisStore creates a store that keeps one file per key under root.
func NewFileAnalysisStore(root string, log *logger.Logger) AnalysisStore {
	return &fileAnalysisStore{root: root, logger: log}
}

type fileAnalysisStore struct {
	root   string
	logger *logger.Logger
}

func (s *fileAnalysisStore) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if key == "" || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid store key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}

// Write stores data atomically: it is written to a temporary file and renamed into place.
func (s *fileAnalysisStore) Write(ctx context.Context, key string, data []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", key, err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move %s into place: %w", key, err)
	}

	s.logger.DebugContext(ctx, "Stored document", logger.StringField("key", key), logger.IntField("bytes", len(data)))
	return nil
}

func (s *fileAnalysisStore) Read(_ context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("key %s: %w", key, entity.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

func (s *fileAnalysisStore) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && p == s.root {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list store: %w", err)
	}

	sort.Strings(keys)
	return keys, nil
}

func (s *fileAnalysisStore) ModTime(_ context.Context, key string) (time.Time, error) {
	p, err := s.path(key)
	if err != nil {
		return time.Time{}, err
	}
	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return time.Time{}, fmt.Errorf("key %s: %w", key, entity.ErrNotFound)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to stat %s: %w", key, err)
	}
	return info.ModTime(), nil
}
