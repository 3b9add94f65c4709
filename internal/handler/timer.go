package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/daqo/pomodoro/internal/engine"
	"github.com/daqo/pomodoro/internal/util"

	"github.com/gin-gonic/gin"
)

// TimerHandler exposes the timer commands to the presentation layer.
type TimerHandler struct {
	Engine *engine.Engine
}

func NewTimerHandler(e *engine.Engine) *TimerHandler {
	return &TimerHandler{Engine: e}
}

type startReq struct {
	Label           string  `json:"label"`
	DurationMinutes float64 `json:"duration_minutes"`
	Date            string  `json:"date"` // optional; defaults to today
}

// Start begins a new work interval.
func (h *TimerHandler) Start(c *gin.Context) {
	var req startReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	entry, err := h.Engine.Start(req.Label, req.DurationMinutes, req.Date)
	switch {
	case errors.Is(err, engine.ErrInvalidLabel):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "label must be 1-100 characters")
		return
	case errors.Is(err, engine.ErrInvalidDuration):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "duration must be in (0, 60] minutes")
		return
	case errors.Is(err, engine.ErrInvalidDate):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "date must be YYYY-MM-DD")
		return
	case errors.Is(err, engine.ErrAlreadyRunning):
		util.Error(c, http.StatusConflict, util.CodeConflict, "an interval is already running")
		return
	case err != nil:
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "start failed")
		return
	}

	util.Success(c, util.Response{
		"entry": entry,
	})
}

// ManualComplete ends the running interval early, without chaining a rest.
func (h *TimerHandler) ManualComplete(c *gin.Context) {
	entry, err := h.Engine.ManualComplete()
	if errors.Is(err, engine.ErrNotRunning) {
		util.Error(c, http.StatusConflict, util.CodeConflict, "no interval running")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "complete failed")
		return
	}

	util.Success(c, util.Response{
		"entry": entry,
	})
}

// Status reports the current engine state with remaining time recomputed
// from the deadline.
func (h *TimerHandler) Status(c *gin.Context) {
	util.Success(c, util.Response{
		"status": h.Engine.Status(),
	})
}

// Reconcile is called by the front end on regaining visibility: it corrects
// the displayed countdown and silences any looping alert.
func (h *TimerHandler) Reconcile(c *gin.Context) {
	util.Success(c, util.Response{
		"status": h.Engine.Reconcile(),
	})
}

// ClickEntry resumes an incomplete, unexpired entry, or marks it complete.
func (h *TimerHandler) ClickEntry(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	entry, err := h.Engine.ClickEntry(uint(id))
	if errors.Is(err, engine.ErrEntryNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "entry not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "click failed")
		return
	}

	util.Success(c, util.Response{
		"entry":  entry,
		"status": h.Engine.Status(),
	})
}
