package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/daqo/pomodoro/internal/database"
	"github.com/daqo/pomodoro/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return New(db)
}

func TestInsertAssignsIDAndStartedAt(t *testing.T) {
	st := newTestStore(t)

	fixed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	st.Now = func() time.Time { return fixed }

	first, err := st.Insert("Draft report", 25, "2024-03-01", models.KindWork)
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	second, err := st.Insert("Review notes", 10, "2024-03-01", models.KindWork)
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if first.ID == 0 {
		t.Error("Insert() assigned id 0, want nonzero")
	}
	if second.ID <= first.ID {
		t.Errorf("ids not increasing: first %d, second %d", first.ID, second.ID)
	}
	if first.StartedAt != fixed.UnixMilli() {
		t.Errorf("StartedAt = %d, want %d", first.StartedAt, fixed.UnixMilli())
	}
	if first.Completed {
		t.Error("new entry is completed, want incomplete")
	}
}

func TestMarkCompleteIsIdempotent(t *testing.T) {
	st := newTestStore(t)

	entry, err := st.Insert("Draft report", 25, "2024-03-01", models.KindWork)
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if err := st.MarkComplete(entry.ID); err != nil {
		t.Fatalf("MarkComplete() error = %v", err)
	}
	if err := st.MarkComplete(entry.ID); err != nil {
		t.Fatalf("second MarkComplete() error = %v", err)
	}

	got, err := st.Get(entry.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil || !got.Completed {
		t.Error("entry not completed after MarkComplete")
	}
}

func TestQueryOngoingReturnsHighestIncompleteID(t *testing.T) {
	st := newTestStore(t)

	first, _ := st.Insert("First", 25, "2024-03-01", models.KindWork)
	if err := st.MarkComplete(first.ID); err != nil {
		t.Fatalf("MarkComplete() error = %v", err)
	}
	second, _ := st.Insert("Second", 25, "2024-03-01", models.KindWork)

	got, err := st.QueryOngoing()
	if err != nil {
		t.Fatalf("QueryOngoing() error = %v", err)
	}
	if got == nil {
		t.Fatal("QueryOngoing() = nil, want entry")
	}
	if got.ID != second.ID {
		t.Errorf("QueryOngoing() id = %d, want %d", got.ID, second.ID)
	}
}

func TestQueryOngoingEmptyWhenAllComplete(t *testing.T) {
	st := newTestStore(t)

	entry, _ := st.Insert("Only", 25, "2024-03-01", models.KindWork)
	if err := st.MarkComplete(entry.ID); err != nil {
		t.Fatalf("MarkComplete() error = %v", err)
	}

	got, err := st.QueryOngoing()
	if err != nil {
		t.Fatalf("QueryOngoing() error = %v", err)
	}
	if got != nil {
		t.Errorf("QueryOngoing() = %+v, want nil", got)
	}
}

func TestQueryByDateOrdersByStartedAt(t *testing.T) {
	st := newTestStore(t)

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	times := []time.Time{base.Add(2 * time.Hour), base, base.Add(time.Hour)}
	for i, instant := range times {
		captured := instant
		st.Now = func() time.Time { return captured }
		if _, err := st.Insert("Entry", 25, "2024-03-01", models.KindWork); err != nil {
			t.Fatalf("Insert() #%d error = %v", i, err)
		}
	}
	st.Now = func() time.Time { return base }
	if _, err := st.Insert("Other day", 25, "2024-03-02", models.KindWork); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	entries, err := st.QueryByDate("2024-03-01")
	if err != nil {
		t.Fatalf("QueryByDate() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("QueryByDate() returned %d entries, want 3", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].StartedAt < entries[i-1].StartedAt {
			t.Errorf("entries out of order at %d: %d after %d", i, entries[i].StartedAt, entries[i-1].StartedAt)
		}
	}
}

func TestQueryMonthlyCountsOnlyCompletedWork(t *testing.T) {
	st := newTestStore(t)

	// 3 completed work, 2 completed rest, 1 incomplete work on the same day
	for i := 0; i < 3; i++ {
		e, _ := st.Insert("Work", 25, "2024-03-01", models.KindWork)
		if err := st.MarkComplete(e.ID); err != nil {
			t.Fatalf("MarkComplete() error = %v", err)
		}
	}
	for i := 0; i < 2; i++ {
		e, _ := st.Insert("Rest", 5, "2024-03-01", models.KindRest)
		if err := st.MarkComplete(e.ID); err != nil {
			t.Fatalf("MarkComplete() error = %v", err)
		}
	}
	if _, err := st.Insert("Unfinished", 25, "2024-03-01", models.KindWork); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	// different month must not leak in
	e, _ := st.Insert("April work", 25, "2024-04-02", models.KindWork)
	if err := st.MarkComplete(e.ID); err != nil {
		t.Fatalf("MarkComplete() error = %v", err)
	}

	counts, err := st.QueryMonthlyCounts(2024, time.March)
	if err != nil {
		t.Fatalf("QueryMonthlyCounts() error = %v", err)
	}

	if len(counts) != 1 {
		t.Fatalf("QueryMonthlyCounts() returned %d days, want 1: %v", len(counts), counts)
	}
	if counts["2024-03-01"] != 3 {
		t.Errorf("count for 2024-03-01 = %d, want 3", counts["2024-03-01"])
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	st := newTestStore(t)

	work, _ := st.Insert("Draft report", 25, "2024-03-01", models.KindWork)
	if err := st.MarkComplete(work.ID); err != nil {
		t.Fatalf("MarkComplete() error = %v", err)
	}
	if _, err := st.Insert("Rest", 5, "2024-03-01", models.KindRest); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if _, err := st.Insert("Next day", 15, "2024-03-02", models.KindWork); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	raw, err := st.ExportSnapshot()
	if err != nil {
		t.Fatalf("ExportSnapshot() error = %v", err)
	}

	before := map[string][]models.Entry{}
	for _, date := range []string{"2024-03-01", "2024-03-02"} {
		entries, err := st.QueryByDate(date)
		if err != nil {
			t.Fatalf("QueryByDate(%q) error = %v", date, err)
		}
		before[date] = entries
	}

	// discard the store and re-import into a fresh one
	fresh := newTestStore(t)
	if err := fresh.ImportSnapshot(raw); err != nil {
		t.Fatalf("ImportSnapshot() error = %v", err)
	}

	for date, want := range before {
		got, err := fresh.QueryByDate(date)
		if err != nil {
			t.Fatalf("QueryByDate(%q) after import error = %v", date, err)
		}
		if len(got) != len(want) {
			t.Fatalf("date %s: %d entries after import, want %d", date, len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("date %s entry %d = %+v, want %+v", date, i, got[i], want[i])
			}
		}
	}
}

func TestImportSnapshotRejectsMalformedBlob(t *testing.T) {
	st := newTestStore(t)

	if _, err := st.Insert("Keep me", 25, "2024-03-01", models.KindWork); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if err := st.ImportSnapshot([]byte("{not json")); err == nil {
		t.Fatal("ImportSnapshot() with malformed blob error = nil, want error")
	}

	// the failed import must not have wiped the existing history
	entries, err := st.QueryByDate("2024-03-01")
	if err != nil {
		t.Fatalf("QueryByDate() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("entries after failed import = %d, want 1", len(entries))
	}
}

func TestResetClearsHistory(t *testing.T) {
	st := newTestStore(t)

	if _, err := st.Insert("Gone", 25, "2024-03-01", models.KindWork); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if err := st.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	all, err := st.All()
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(all) != 0 {
		t.Errorf("entries after reset = %d, want 0", len(all))
	}
}
