package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bdu-suport/bdu-suport-api/internal/models"
	"github.com/bdu-suport/bdu-suport-api/internal/service"
	appErrors "github.com/bdu-suport/bdu-suport-api/pkg/errors"
	"github.com/bdu-suport/bdu-suport-api/pkg/response"
)

// RegistrationHandler exposes the admission registration review endpoints.
type RegistrationHandler struct {
	reviews *service.ReviewService
	exports *service.ExportService
}

// NewRegistrationHandler constructs RegistrationHandler.
func NewRegistrationHandler(reviews *service.ReviewService, exports *service.ExportService) *RegistrationHandler {
	return &RegistrationHandler{reviews: reviews, exports: exports}
}

func registrationFilterFromQuery(c *gin.Context) models.RegistrationFilter {
	var filter models.RegistrationFilter

	int64Param := func(name string) *int64 {
		if raw := c.Query(name); raw != "" {
			if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
				return &v
			}
		}
		return nil
	}

	filter.EvaluationMethodID = int64Param("evaluation_method")
	filter.MajorID = int64Param("major")
	filter.CollegeExamGroupID = int64Param("college_exam_group")
	filter.TrainingLocationID = int64Param("training_location")
	if raw := c.Query("review_status"); raw != "" {
		status := models.ReviewStatus(raw)
		filter.ReviewStatus = &status
	}
	if raw := c.Query("year"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			filter.Year = &v
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	return filter
}

// List godoc
// @Summary List admission registrations
// @Tags Registrations
// @Produce json
// @Param evaluation_method query int false "Filter by evaluation method"
// @Param major query int false "Filter by major"
// @Param college_exam_group query int false "Filter by exam group"
// @Param training_location query int false "Filter by training location (via major)"
// @Param review_status query string false "PENDING, APPROVED or REJECTED"
// @Param year query int false "Admission year (via major)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admission-registrations [get]
func (h *RegistrationHandler) List(c *gin.Context) {
	registrations, pagination, err := h.reviews.List(c.Request.Context(), registrationFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, registrations, pagination)
}

// Get godoc
// @Summary Get one admission registration
// @Tags Registrations
// @Produce json
// @Param id path int true "Registration ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admission-registrations/{id} [get]
func (h *RegistrationHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid registration id"))
		return
	}
	registration, err := h.reviews.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, registration, nil)
}

// Review godoc
// @Summary Approve or reject a pending registration
// @Tags Registrations
// @Accept json
// @Produce json
// @Param id path int true "Registration ID"
// @Param payload body service.ReviewRequest true "Review decision"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admission-registrations/{id}/review [post]
func (h *RegistrationHandler) Review(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid registration id"))
		return
	}

	var req service.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	registration, err := h.reviews.Review(c.Request.Context(), id, req, *claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, registration, nil)
}

// Export godoc
// @Summary Export the filtered registration list
// @Tags Registrations
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /admission-registrations/export [get]
func (h *RegistrationHandler) Export(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", string(service.ExportFormatCSV)))
	file, err := h.exports.Export(c.Request.Context(), registrationFilterFromQuery(c), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
