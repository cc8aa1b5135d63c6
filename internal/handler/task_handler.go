package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bdu-suport/bdu-suport-api/internal/dw"
	"github.com/bdu-suport/bdu-suport-api/internal/service"
	appErrors "github.com/bdu-suport/bdu-suport-api/pkg/errors"
	"github.com/bdu-suport/bdu-suport-api/pkg/response"
)

// TaskHandler exposes the scheduler-facing trigger endpoints: notification
// fan-out and data-warehouse ingestion. An external cron calls these.
type TaskHandler struct {
	notifications *service.NotificationService
	warehouse     *service.DWService
}

// NewTaskHandler constructs TaskHandler.
func NewTaskHandler(notifications *service.NotificationService, warehouse *service.DWService) *TaskHandler {
	return &TaskHandler{notifications: notifications, warehouse: warehouse}
}

// AttendanceNotificationRequest triggers attendance notification fan-out.
type AttendanceNotificationRequest struct {
	StudentCode  int64   `json:"student_code" binding:"required"`
	StudentName  string  `json:"student_name" binding:"required"`
	RecipientIDs []int64 `json:"recipient_ids" binding:"required,min=1"`
	Date         string  `json:"date" binding:"required"`
}

// ClassificationNotificationRequest triggers classification fan-out.
type ClassificationNotificationRequest struct {
	StudentCode  int64   `json:"student_code" binding:"required"`
	RecipientIDs []int64 `json:"recipient_ids" binding:"required,min=1"`
	Date         string  `json:"date" binding:"required"`
}

// IngestRequest carries raw upstream rows for the key mapper.
type IngestRequest struct {
	Rows []dw.Record `json:"rows" binding:"required"`
}

func parseTaskDate(raw string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	return date, nil
}

// ComposeAttendance godoc
// @Summary Compose attendance notifications for a student
// @Tags Tasks
// @Accept json
// @Produce json
// @Param payload body AttendanceNotificationRequest true "Fan-out parameters"
// @Success 202 {object} response.Envelope
// @Security BearerAuth
// @Router /tasks/notifications/attendance [post]
func (h *TaskHandler) ComposeAttendance(c *gin.Context) {
	var req AttendanceNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	date, err := parseTaskDate(req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}

	recipients := h.notifications.ResolveRecipients(c.Request.Context(), req.RecipientIDs)
	h.notifications.ComposeAttendance(c.Request.Context(), req.StudentCode, req.StudentName, recipients, date)
	response.JSON(c, http.StatusAccepted, gin.H{"status": "accepted"}, nil)
}

// ComposeClassification godoc
// @Summary Compose classification notifications for a student
// @Tags Tasks
// @Accept json
// @Produce json
// @Param payload body ClassificationNotificationRequest true "Fan-out parameters"
// @Success 202 {object} response.Envelope
// @Security BearerAuth
// @Router /tasks/notifications/classification [post]
func (h *TaskHandler) ComposeClassification(c *gin.Context) {
	var req ClassificationNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	date, err := parseTaskDate(req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}

	recipients := h.notifications.ResolveRecipients(c.Request.Context(), req.RecipientIDs)
	h.notifications.ComposeClassification(c.Request.Context(), req.StudentCode, recipients, date)
	response.JSON(c, http.StatusAccepted, gin.H{"status": "accepted"}, nil)
}

// IngestAttendances godoc
// @Summary Ingest raw attendance rows into the warehouse store
// @Tags Tasks
// @Accept json
// @Produce json
// @Param payload body IngestRequest true "Raw upstream rows"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /tasks/dw/attendances [post]
func (h *TaskHandler) IngestAttendances(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	count, err := h.warehouse.IngestAttendances(c.Request.Context(), req.Rows)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"ingested": count}, nil)
}

// IngestClassifications godoc
// @Summary Ingest raw classification rows into the warehouse store
// @Tags Tasks
// @Accept json
// @Produce json
// @Param payload body IngestRequest true "Raw upstream rows"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /tasks/dw/classifications [post]
func (h *TaskHandler) IngestClassifications(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	count, err := h.warehouse.IngestClassifications(c.Request.Context(), req.Rows)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"ingested": count}, nil)
}
