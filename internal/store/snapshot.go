package store

import (
	"encoding/json"
	"fmt"

	"github.com/daqo/pomodoro/internal/models"

	"gorm.io/gorm"
)

// snapshotVersion identifies the blob layout, for future additive changes.
const snapshotVersion = 1

type snapshot struct {
	Version int            `json:"version"`
	Entries []models.Entry `json:"entries"`
}

// ExportSnapshot serializes the full entry history as one opaque blob,
// ordered by id.
func (s *Store) ExportSnapshot() ([]byte, error) {
	entries, err := s.All()
	if err != nil {
		return nil, err
	}
	raw, err := json.MarshalIndent(&snapshot{Version: snapshotVersion, Entries: entries}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize snapshot: %w", err)
	}
	return raw, nil
}

// ImportSnapshot replaces the entry history with the contents of a blob
// previously produced by ExportSnapshot, preserving the original ids.
func (s *Store) ImportSnapshot(data []byte) error {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parse snapshot: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&models.Entry{}).Error; err != nil {
			return fmt.Errorf("clear entries: %w", err)
		}
		for i := range snap.Entries {
			if err := tx.Create(&snap.Entries[i]).Error; err != nil {
				return fmt.Errorf("restore entry %d: %w", snap.Entries[i].ID, err)
			}
		}
		return nil
	})
}
