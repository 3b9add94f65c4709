package database

import (
	"fmt"

	"github.com/daqo/pomodoro/internal/models"

	"gorm.io/gorm"
)

// A migration step is idempotent: it probes the schema before touching it,
// so running the full list on every load is safe. Steps are additive only —
// columns are never dropped or renamed, existing rows are preserved.
type migrationStep struct {
	name string
	run  func(db *gorm.DB) error
}

var migrationSteps = []migrationStep{
	{
		name: "create entries table",
		run: func(db *gorm.DB) error {
			if db.Migrator().HasTable(&models.Entry{}) {
				return nil
			}
			return db.Migrator().CreateTable(&models.Entry{})
		},
	},
	{
		name: "add entry type column",
		run: func(db *gorm.DB) error {
			if db.Migrator().HasColumn(&models.Entry{}, "type") {
				return nil
			}
			if err := db.Migrator().AddColumn(&models.Entry{}, "Kind"); err != nil {
				return err
			}
			// rows that predate the column are plain work intervals
			return db.Model(&models.Entry{}).
				Where("type IS NULL OR type = ''").
				Update("type", models.KindWork).Error
		},
	},
	{
		name: "create backups table",
		run: func(db *gorm.DB) error {
			if db.Migrator().HasTable(&models.Backup{}) {
				return nil
			}
			return db.Migrator().CreateTable(&models.Backup{})
		},
	},
}

// Migrate applies all schema migration steps in order. It runs once at
// startup, before any query.
func Migrate(db *gorm.DB) error {
	for _, step := range migrationSteps {
		if err := step.run(db); err != nil {
			return fmt.Errorf("migration %q: %w", step.name, err)
		}
	}
	return nil
}
