package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bdu-suport/bdu-suport-api/internal/service"
	appErrors "github.com/bdu-suport/bdu-suport-api/pkg/errors"
	"github.com/bdu-suport/bdu-suport-api/pkg/response"
)

// MiniAppHandler exposes the Zalo mini-app session endpoints.
type MiniAppHandler struct {
	sessions *service.SessionService
}

// NewMiniAppHandler constructs MiniAppHandler.
func NewMiniAppHandler(sessions *service.SessionService) *MiniAppHandler {
	return &MiniAppHandler{sessions: sessions}
}

// RegisterSession godoc
// @Summary Exchange a Zalo access token for a mini-app session
// @Tags MiniApp
// @Accept json
// @Produce json
// @Param payload body service.RegisterSessionRequest true "Zalo access token"
// @Success 200 {object} response.Envelope
// @Router /miniapp/auth/session [post]
func (h *MiniAppHandler) RegisterSession(c *gin.Context) {
	var req service.RegisterSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	profile, err := h.sessions.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// ValidateSession godoc
// @Summary Check whether the presented mini-app session is still alive
// @Tags MiniApp
// @Produce json
// @Param access_token header string true "Zalo access token"
// @Success 200 {object} response.Envelope
// @Router /miniapp/auth/session [get]
func (h *MiniAppHandler) ValidateSession(c *gin.Context) {
	session, err := h.sessions.Validate(c.Request.Context(), c.GetHeader("access_token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}
