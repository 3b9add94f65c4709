package handler

import (
	"net/http"

	"github.com/daqo/pomodoro/internal/engine"
	"github.com/daqo/pomodoro/internal/store"
	"github.com/daqo/pomodoro/internal/util"

	"github.com/gin-gonic/gin"
)

// AdminHandler holds the full-store reset, the only way entries are ever
// deleted.
type AdminHandler struct {
	Store  *store.Store
	Engine *engine.Engine
}

func NewAdminHandler(st *store.Store, e *engine.Engine) *AdminHandler {
	return &AdminHandler{Store: st, Engine: e}
}

// Reset aborts any running interval and wipes the whole entry history.
func (h *AdminHandler) Reset(c *gin.Context) {
	h.Engine.Abort()
	if err := h.Store.Reset(); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "reset failed")
		return
	}

	util.Success(c, util.Response{
		"message": "history cleared",
	})
}
