package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/scoutlint/scout/internal/domain"
)

const historyFile = ".scout/history/runs.json"

// maxEntries bounds the history file; the oldest runs are dropped first.
const maxEntries = 500

// FileHistory implements domain.RunHistory using JSON file storage.
type FileHistory struct{}

func New() *FileHistory {
	return &FileHistory{}
}

// Save appends entry, assigning it an ID when it has none.
func (h *FileHistory) Save(projectPath string, entry domain.RunEntry) error {
	entries, err := h.Load(projectPath)
	if err != nil {
		return err
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entries = append(entries, entry)
	if len(entries) > maxEntries {
		entries = entries[len(entries)-maxEntries:]
	}

	fp := filepath.Join(projectPath, historyFile)
	if err := os.MkdirAll(filepath.Dir(fp), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(fp, data, 0644)
}

func (h *FileHistory) Load(projectPath string) ([]domain.RunEntry, error) {
	fp := filepath.Join(projectPath, historyFile)

	data, err := os.ReadFile(fp)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []domain.RunEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("reading %s: %w", historyFile, err)
	}

	return entries, nil
}

// EntryFor summarizes a finished report.
func EntryFor(r *domain.Report) domain.RunEntry {
	return domain.RunEntry{
		Timestamp: r.Timestamp.UTC().Format(time.RFC3339),
		Target:    r.Target,
		Commit:    r.Commit,
		Tool:      r.Tool,
		Sections:  len(r.Sections),
		Roots:     len(r.Roots),
		Findings:  len(r.Findings),
	}
}
