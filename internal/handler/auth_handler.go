package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ssekandi/psms-api/internal/middleware"
	"github.com/ssekandi/psms-api/internal/service"
	appErrors "github.com/ssekandi/psms-api/pkg/errors"
	"github.com/ssekandi/psms-api/pkg/response"
)

// AuthHandler serves login and identity.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login godoc
// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body service.LoginInput true "Credentials"
// @Success 200 {object} response.Envelope{data=service.LoginResult}
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var input service.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.ErrValidation.Wrap(err))
		return
	}
	result, err := h.auth.Login(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Me returns the authenticated caller's account.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.Me(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}
