package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bdu-suport/bdu-suport-api/internal/models"
)

type dwGateway interface {
	GetAttendancesByStudentCodeAndDateRange(ctx context.Context, studentCode int64, start, end time.Time) ([]models.DWAttendance, error)
	GetStudentAcademicClassifications(ctx context.Context, studentCode int64, date time.Time) ([]models.DWClassification, error)
}

type miniAppUserFinder interface {
	FindUserByID(ctx context.Context, id int64) (*models.MiniAppUser, error)
}

// NotificationService composes mini-app notifications from data-warehouse
// records. It is fire-and-forget: every failure is logged, none is raised,
// and a failing (record, recipient) pair never aborts the remaining pairs.
// The external scheduler's retry cadence is the recovery mechanism.
type NotificationService struct {
	gateway       dwGateway
	notifications notificationCreator
	users         miniAppUserFinder
	metrics       *MetricsService
	logger        *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(gateway dwGateway, notifications notificationCreator, users miniAppUserFinder, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{gateway: gateway, notifications: notifications, users: users, metrics: metrics, logger: logger}
}

// ResolveRecipients loads mini-app users by id. Unknown ids are logged and
// skipped so one stale recipient never blocks a scheduled run.
func (s *NotificationService) ResolveRecipients(ctx context.Context, ids []int64) []models.MiniAppUser {
	recipients := make([]models.MiniAppUser, 0, len(ids))
	for _, id := range ids {
		user, err := s.users.FindUserByID(ctx, id)
		if err != nil {
			s.logger.Warn("skipping unknown notification recipient", zap.Int64("mini_app_user_id", id), zap.Error(err))
			continue
		}
		recipients = append(recipients, *user)
	}
	return recipients
}

// ComposeAttendance fans out one notification per (attendance record,
// recipient) pair for the student's attendance on the given day.
func (s *NotificationService) ComposeAttendance(ctx context.Context, studentCode int64, studentName string, recipients []models.MiniAppUser, date time.Time) {
	attendances, err := s.gateway.GetAttendancesByStudentCodeAndDateRange(ctx, studentCode, date, date)
	if err != nil {
		s.logger.Error("failed to fetch attendances",
			zap.Int64("student_code", studentCode),
			zap.Time("date", date),
			zap.Error(err))
		return
	}

	for _, attendance := range attendances {
		attendanceDate := attendance.AttendanceDate.Format("02-01-2006")
		content := fmt.Sprintf(
			"Sinh viên %d - %s tham gia môn học %s - %s vào ngày %s (buổi: %s) với trạng thái điểm danh: %s",
			attendance.StudentCode, studentName, attendance.SubjectCode, attendance.SubjectName,
			attendanceDate, attendance.Lesson, attendance.Status,
		)

		for _, recipient := range recipients {
			err := s.notifications.CreateNotification(ctx, &models.MiniappNotification{
				UserID:  recipient.ID,
				Content: content,
			})
			s.metrics.RecordNotification("attendance", err == nil)
			if err != nil {
				s.logger.Error("failed to create attendance notification",
					zap.Int64("student_code", attendance.StudentCode),
					zap.String("subject_code", attendance.SubjectCode),
					zap.String("attendance_date", attendanceDate),
					zap.Int64("recipient_id", recipient.ID),
					zap.Error(err))
				continue
			}
		}
	}
}

// ComposeClassification fans out one notification per (classification record,
// recipient) pair for the student's academic results at the reference date.
func (s *NotificationService) ComposeClassification(ctx context.Context, studentCode int64, recipients []models.MiniAppUser, date time.Time) {
	classifications, err := s.gateway.GetStudentAcademicClassifications(ctx, studentCode, date)
	if err != nil {
		s.logger.Error("failed to fetch classifications",
			zap.Int64("student_code", studentCode),
			zap.Time("date", date),
			zap.Error(err))
		return
	}

	for _, classification := range classifications {
		content := fmt.Sprintf(
			"Kết quả học tập của sinh viên %d - %s trong học kỳ %d năm %d là: %s",
			classification.StudentID, classification.FullName,
			classification.Semester, classification.AcademicYear, classification.Classification,
		)

		for _, recipient := range recipients {
			err := s.notifications.CreateNotification(ctx, &models.MiniappNotification{
				UserID:  recipient.ID,
				Content: content,
			})
			s.metrics.RecordNotification("classification", err == nil)
			if err != nil {
				s.logger.Error("failed to create classification notification",
					zap.Int64("student_id", classification.StudentID),
					zap.Int("semester", classification.Semester),
					zap.Int("academic_year", classification.AcademicYear),
					zap.Int64("recipient_id", recipient.ID),
					zap.Error(err))
				continue
			}
		}
	}
}
