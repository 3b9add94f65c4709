package util

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxLabelLength is the maximum label length in characters after trimming.
const MaxLabelLength = 100

// MaxWorkMinutes is the upper bound for a caller-supplied work duration.
const MaxWorkMinutes = 60

// ValidateLabel checks a work interval label (1-100 characters after trim).
func ValidateLabel(label string) error {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return fmt.Errorf("label is empty")
	}
	if utf8.RuneCountInString(trimmed) > MaxLabelLength {
		return fmt.Errorf("label too long, max %d characters", MaxLabelLength)
	}
	return nil
}

// ValidateDuration checks a work duration in minutes (0 < d <= 60).
func ValidateDuration(minutes float64) error {
	if minutes <= 0 {
		return fmt.Errorf("duration must be positive, got %v", minutes)
	}
	if minutes > MaxWorkMinutes {
		return fmt.Errorf("duration too long, max %d minutes", MaxWorkMinutes)
	}
	return nil
}

// ValidateDate checks a calendar date string (must be YYYY-MM-DD).
func ValidateDate(dateStr string) error {
	if dateStr == "" {
		return fmt.Errorf("date is empty")
	}
	_, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}
	return nil
}

// LocalDate formats t as YYYY-MM-DD from its local calendar components.
// Deriving the day from UTC would shift entries across midnight in
// late-offset zones, so the components are taken as-is.
func LocalDate(t time.Time) string {
	year, month, day := t.Date()
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
}
