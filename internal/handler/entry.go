package handler

import (
	"net/http"
	"time"

	"github.com/daqo/pomodoro/internal/store"
	"github.com/daqo/pomodoro/internal/util"

	"github.com/gin-gonic/gin"
)

// EntryHandler exposes the read-only history queries.
type EntryHandler struct {
	Store *store.Store
}

func NewEntryHandler(st *store.Store) *EntryHandler {
	return &EntryHandler{Store: st}
}

// ListByDate returns all entries for one day, ascending by start time.
// Defaults to today in local time.
func (h *EntryHandler) ListByDate(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = util.LocalDate(time.Now())
	} else if err := util.ValidateDate(date); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "date must be YYYY-MM-DD")
		return
	}

	entries, err := h.Store.QueryByDate(date)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	util.Success(c, util.Response{
		"date":    date,
		"entries": entries,
	})
}

// Ongoing returns the single incomplete entry, if any.
func (h *EntryHandler) Ongoing(c *gin.Context) {
	entry, err := h.Store.QueryOngoing()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	util.Success(c, util.Response{
		"entry": entry,
	})
}

// MonthlyCounts returns date -> completed-work-entry count for one month.
// Month parameter: ?month=2024-03, defaulting to the current month.
func (h *EntryHandler) MonthlyCounts(c *gin.Context) {
	monthStr := c.Query("month")
	if monthStr == "" {
		monthStr = time.Now().Format("2006-01")
	}

	t, err := time.Parse("2006-01", monthStr)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "month must be YYYY-MM")
		return
	}

	counts, err := h.Store.QueryMonthlyCounts(t.Year(), t.Month())
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	util.Success(c, util.Response{
		"month":  monthStr,
		"counts": counts,
	})
}
