package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/daqo/pomodoro/internal/database"
	"github.com/daqo/pomodoro/internal/effects"
	"github.com/daqo/pomodoro/internal/engine"
	"github.com/daqo/pomodoro/internal/store"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	st := store.New(db)
	clock := engine.NewBackgroundClock(time.Hour) // never ticks during a test
	t.Cleanup(clock.Stop)
	eng := engine.New(st, clock, effects.Noop{}, effects.Noop{}, engine.Config{})

	r := gin.New()
	timerHandler := NewTimerHandler(eng)
	r.POST("/api/timer/start", timerHandler.Start)
	r.POST("/api/timer/complete", timerHandler.ManualComplete)
	r.GET("/api/timer/status", timerHandler.Status)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var parsed map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("parse response %q: %v", w.Body.String(), err)
	}
	return w, parsed
}

func TestTimerStartAndStatus(t *testing.T) {
	r := newTestRouter(t)

	w, resp := doJSON(t, r, http.MethodPost, "/api/timer/start",
		`{"label":"Draft report","duration_minutes":25,"date":"2024-03-01"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("start status = %d, want 200: %s", w.Code, w.Body.String())
	}
	data := resp["data"].(map[string]interface{})
	entry := data["entry"].(map[string]interface{})
	if entry["name"] != "Draft report" {
		t.Errorf("entry name = %v, want Draft report", entry["name"])
	}
	if entry["type"] != "pomodoro" {
		t.Errorf("entry type = %v, want pomodoro", entry["type"])
	}

	w, resp = doJSON(t, r, http.MethodGet, "/api/timer/status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status code = %d, want 200", w.Code)
	}
	status := resp["data"].(map[string]interface{})["status"].(map[string]interface{})
	if status["state"] != "running" {
		t.Errorf("state = %v, want running", status["state"])
	}
}

func TestTimerStartRejectsBadInput(t *testing.T) {
	r := newTestRouter(t)

	testCases := []struct {
		name string
		body string
	}{
		{"empty label", `{"label":"","duration_minutes":25}`},
		{"zero duration", `{"label":"Task","duration_minutes":0}`},
		{"duration too long", `{"label":"Task","duration_minutes":90}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w, _ := doJSON(t, r, http.MethodPost, "/api/timer/start", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: %s", w.Code, w.Body.String())
			}
		})
	}

	// nothing started
	_, resp := doJSON(t, r, http.MethodGet, "/api/timer/status", "")
	status := resp["data"].(map[string]interface{})["status"].(map[string]interface{})
	if status["state"] != "idle" {
		t.Errorf("state after rejected starts = %v, want idle", status["state"])
	}
}

func TestTimerManualComplete(t *testing.T) {
	r := newTestRouter(t)

	w, _ := doJSON(t, r, http.MethodPost, "/api/timer/start",
		`{"label":"Draft report","duration_minutes":25}`)
	if w.Code != http.StatusOK {
		t.Fatalf("start status = %d, want 200", w.Code)
	}

	w, resp := doJSON(t, r, http.MethodPost, "/api/timer/complete", "")
	if w.Code != http.StatusOK {
		t.Fatalf("complete status = %d, want 200: %s", w.Code, w.Body.String())
	}
	entry := resp["data"].(map[string]interface{})["entry"].(map[string]interface{})
	if entry["completed"] != true {
		t.Errorf("entry completed = %v, want true", entry["completed"])
	}

	// no interval running anymore
	w, _ = doJSON(t, r, http.MethodPost, "/api/timer/complete", "")
	if w.Code != http.StatusConflict {
		t.Errorf("second complete status = %d, want 409", w.Code)
	}
}
