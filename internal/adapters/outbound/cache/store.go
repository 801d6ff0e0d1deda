package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/scoutlint/scout/internal/domain"
)

// Store is a file-based implementation of domain.ReportCache.
type Store struct{}

// New creates a new file-based report cache.
func New() *Store {
	return &Store{}
}

// Load reads the last report from disk. Returns (nil, nil) if none was saved.
func (s *Store) Load(projectPath string) (*domain.Report, error) {
	data, err := os.ReadFile(cachePath(projectPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // no cache is not an error
		}
		return nil, err
	}

	var report domain.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("reading cached report: %w", err)
	}
	return &report, nil
}

// Save writes report to disk, creating directories as needed.
func (s *Store) Save(projectPath string, report *domain.Report) error {
	if err := os.MkdirAll(cacheDir(projectPath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(cachePath(projectPath), data, 0644)
}

// Invalidate removes the cached report for the given project path.
func (s *Store) Invalidate(projectPath string) error {
	if err := os.Remove(cachePath(projectPath)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func cacheDir(projectPath string) string {
	return filepath.Join(projectPath, ".scout", "cache")
}

func cachePath(projectPath string) string {
	return filepath.Join(cacheDir(projectPath), "last-report.json")
}
