package handler

import (
	"net/http"
	"time"

	"github.com/daqo/pomodoro/internal/config"
	"github.com/daqo/pomodoro/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler logs the single configured owner in against the bcrypt hash
// from the config file.
type AuthHandler struct {
	Auth config.AuthConfig
}

func NewAuthHandler(auth config.AuthConfig) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

type loginReq struct {
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.Auth.PasswordHash), []byte(req.Password)); err != nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "wrong password")
		return
	}

	ttl := time.Duration(h.Auth.ExpireHours) * time.Hour
	token, err := util.GenerateToken(h.Auth.Secret, ttl)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "issue token failed")
		return
	}

	util.Success(c, util.Response{
		"token": token,
	})
}
