package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"madlib-maker/shared/models"
)

// FileDraftStore keeps the draft as a JSON file.
type FileDraftStore struct {
	path string
}

// NewFileDraftStore stores the draft at path.
func NewFileDraftStore(path string) *FileDraftStore {
	return &FileDraftStore{path: path}
}

// DefaultDraftPath returns the draft location under the user config dir.
func DefaultDraftPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "madlib-maker", "draft.json"), nil
}

func (s *FileDraftStore) Load(_ context.Context) (models.StateRecord, bool, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return models.StateRecord{}, false, nil
	}
	if err != nil {
		return models.StateRecord{}, false, fmt.Errorf("read draft: %w", err)
	}
	var rec models.StateRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return models.StateRecord{}, false, fmt.Errorf("parse draft %s: %w", s.path, err)
	}
	return rec, true, nil
}

func (s *FileDraftStore) Save(_ context.Context, rec models.StateRecord) error {
	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create draft dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write draft: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace draft: %w", err)
	}
	return nil
}

// Clear removes the draft. A missing draft is not an error.
func (s *FileDraftStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove draft: %w", err)
	}
	return nil
}
