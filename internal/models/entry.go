package models

import "time"

// EntryKind distinguishes work intervals from the rest intervals chained
// after them. The stored values predate this type and stay as-is.
type EntryKind string

const (
	KindWork EntryKind = "pomodoro"
	KindRest EntryKind = "rest"
)

// Entry represents one persisted work or rest interval.
// StartedAt is epoch milliseconds assigned by the store at insertion;
// Date is the local calendar day the interval belongs to.
type Entry struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"size:100;not null" json:"name"`
	DurationMinutes float64   `gorm:"column:duration;not null" json:"duration_minutes"`
	Date            string    `gorm:"size:10;index;not null" json:"date"` // YYYY-MM-DD
	Completed       bool      `gorm:"not null;default:false" json:"completed"`
	StartedAt       int64     `gorm:"column:started_at;not null" json:"started_at"`
	Kind            EntryKind `gorm:"column:type;size:16;default:pomodoro" json:"type"`
}

func (Entry) TableName() string { return "entries" }

// Deadline is the absolute instant the interval is due to complete.
func (e *Entry) Deadline() time.Time {
	return time.UnixMilli(e.StartedAt).Add(time.Duration(e.DurationMinutes * float64(time.Minute)))
}
