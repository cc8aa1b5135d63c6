package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bdu-suport/bdu-suport-api/internal/models"
	"github.com/bdu-suport/bdu-suport-api/internal/service"
	appErrors "github.com/bdu-suport/bdu-suport-api/pkg/errors"
	"github.com/bdu-suport/bdu-suport-api/pkg/response"
)

// AuthHandler exposes back-office authentication endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login godoc
// @Summary Authenticate a back-office account
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	resp, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// AuditTrail godoc
// @Summary List the caller's recent back-office actions
// @Tags Auth
// @Produce json
// @Param limit query int false "Max entries (default 50)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /auth/audit-logs [get]
func (h *AuthHandler) AuditTrail(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := h.auth.AuditTrail(c.Request.Context(), claims.AccountID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
