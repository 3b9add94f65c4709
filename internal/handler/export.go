package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/daqo/pomodoro/internal/models"
	"github.com/daqo/pomodoro/internal/store"
	"github.com/daqo/pomodoro/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler streams the interval history as CSV or XLSX.
type ExportHandler struct {
	Store *store.Store
}

func NewExportHandler(st *store.Store) *ExportHandler {
	return &ExportHandler{Store: st}
}

var exportHeaders = []string{"Label", "Kind", "Duration (min)", "Date", "Started at", "Completed"}

func exportRow(e *models.Entry) []string {
	kind := "work"
	if e.Kind == models.KindRest {
		kind = "rest"
	}
	completed := "no"
	if e.Completed {
		completed = "yes"
	}
	return []string{
		e.Name,
		kind,
		strconv.FormatFloat(e.DurationMinutes, 'f', -1, 64),
		e.Date,
		time.UnixMilli(e.StartedAt).Format(time.RFC3339),
		completed,
	}
}

// ExportCSV exports the full history as CSV.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	entries, err := h.Store.All()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"entries_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for i := range entries {
		writer.Write(exportRow(&entries[i]))
	}
}

// ExportXLSX exports the full history as XLSX.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	entries, err := h.Store.All()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	f := excelize.NewFile()
	sheetName := "Entries"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "create sheet failed")
		return
	}
	f.SetActiveSheet(index)

	for i, header := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for idx := range entries {
		row := idx + 2
		for col, value := range exportRow(&entries[idx]) {
			cell := fmt.Sprintf("%c%d", 'A'+col, row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	f.SetColWidth(sheetName, "A", "A", 30)
	f.SetColWidth(sheetName, "B", "C", 12)
	f.SetColWidth(sheetName, "D", "E", 22)
	f.SetColWidth(sheetName, "F", "F", 10)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"entries_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "export failed")
	}
}
