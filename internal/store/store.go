package store

import (
	"fmt"
	"time"

	"github.com/daqo/pomodoro/internal/models"

	"gorm.io/gorm"
)

// Store is the query and mutation surface over the entries table. It is
// constructed once at startup and passed by handle; it assumes a single
// active writer (the timer engine plus the HTTP handlers it serves).
type Store struct {
	db *gorm.DB

	// Now is the clock used to stamp new entries. Overridable in tests.
	Now func() time.Time
}

func New(db *gorm.DB) *Store {
	return &Store{db: db, Now: time.Now}
}

// Insert persists a new incomplete entry. The store assigns both the id and
// the started-at timestamp; callers must not guess timestamps themselves.
func (s *Store) Insert(name string, durationMinutes float64, date string, kind models.EntryKind) (*models.Entry, error) {
	entry := models.Entry{
		Name:            name,
		DurationMinutes: durationMinutes,
		Date:            date,
		Kind:            kind,
		StartedAt:       s.Now().UnixMilli(),
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}
	return &entry, nil
}

// Get returns the entry with the given id, or nil if it does not exist.
func (s *Store) Get(id uint) (*models.Entry, error) {
	var entry models.Entry
	if err := s.db.First(&entry, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return &entry, nil
}

// MarkComplete sets completed=true on the given entry. Marking an
// already-complete entry again is a no-op.
func (s *Store) MarkComplete(id uint) error {
	if err := s.db.Model(&models.Entry{}).
		Where("id = ?", id).
		Update("completed", true).Error; err != nil {
		return fmt.Errorf("mark complete: %w", err)
	}
	return nil
}

// QueryByDate returns all entries scheduled on the given day, ascending by
// started-at (ties broken by id).
func (s *Store) QueryByDate(date string) ([]models.Entry, error) {
	var entries []models.Entry
	if err := s.db.
		Where("date = ?", date).
		Order("started_at ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("query by date: %w", err)
	}
	return entries, nil
}

// QueryOngoing returns the incomplete entry with the highest id, or nil if
// everything is complete.
func (s *Store) QueryOngoing() (*models.Entry, error) {
	var entry models.Entry
	err := s.db.
		Where("completed = ?", false).
		Order("id DESC").
		First(&entry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("query ongoing: %w", err)
	}
	return &entry, nil
}

// QueryMonthlyCounts returns, for the given month, the number of completed
// work entries per day. Rest entries and incomplete entries never count.
func (s *Store) QueryMonthlyCounts(year int, month time.Month) (map[string]int, error) {
	prefix := fmt.Sprintf("%04d-%02d-", year, int(month))

	rows, err := s.db.Model(&models.Entry{}).
		Select("date, COUNT(*) AS n").
		Where("type = ? AND completed = ? AND date LIKE ?", models.KindWork, true, prefix+"%").
		Group("date").
		Rows()
	if err != nil {
		return nil, fmt.Errorf("query monthly counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var date string
		var n int
		if err := rows.Scan(&date, &n); err != nil {
			return nil, fmt.Errorf("scan monthly counts: %w", err)
		}
		counts[date] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read monthly counts: %w", err)
	}
	return counts, nil
}

// All returns every entry ascending by id.
func (s *Store) All() ([]models.Entry, error) {
	var entries []models.Entry
	if err := s.db.Order("id ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("query all entries: %w", err)
	}
	return entries, nil
}

// Reset deletes the whole entry history. The only way entries are ever
// removed; individual deletion does not exist.
func (s *Store) Reset() error {
	if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.Entry{}).Error; err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	return nil
}
