package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bdu-suport/bdu-suport-api/internal/models"
	"github.com/bdu-suport/bdu-suport-api/internal/repository"
	appErrors "github.com/bdu-suport/bdu-suport-api/pkg/errors"
	"github.com/bdu-suport/bdu-suport-api/pkg/mailer"
)

type registrationRepository interface {
	List(ctx context.Context, filter models.RegistrationFilter) ([]models.RegistrationDetail, int, error)
	FindDetailByID(ctx context.Context, id int64) (*models.RegistrationDetail, error)
	Review(ctx context.Context, id int64, reviewer string, decide repository.ReviewFunc) (*models.RegistrationDetail, error)
}

type auditRecorder interface {
	Record(ctx context.Context, accountID, action, subject string) error
}

type notificationCreator interface {
	CreateNotification(ctx context.Context, notification *models.MiniappNotification) error
}

type emailDispatcher interface {
	Dispatch(msg mailer.Message) error
}

// ReviewService drives the admission registration review workflow: the
// single-transition state machine plus its audit, in-app notification and
// email side effects.
type ReviewService struct {
	registrations registrationRepository
	audit         auditRecorder
	notifications notificationCreator
	mail          emailDispatcher
	metrics       *MetricsService
	validator     *validator.Validate
	logger        *zap.Logger
	enforceQuota  bool
}

// NewReviewService constructs the service.
func NewReviewService(
	registrations registrationRepository,
	audit auditRecorder,
	notifications notificationCreator,
	mail emailDispatcher,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	enforceQuota bool,
) *ReviewService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewService{
		registrations: registrations,
		audit:         audit,
		notifications: notifications,
		mail:          mail,
		metrics:       metrics,
		validator:     validate,
		logger:        logger,
		enforceQuota:  enforceQuota,
	}
}

// ReviewRequest is the review decision payload.
type ReviewRequest struct {
	Decision models.ReviewDecision `json:"decision" validate:"required,oneof=approve reject"`
}

// List returns registrations matching the filter with pagination metadata.
// Recalled registrations never appear.
func (s *ReviewService) List(ctx context.Context, filter models.RegistrationFilter) ([]models.RegistrationDetail, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	rows, total, err := s.registrations.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registrations")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return rows, pagination, nil
}

// Get returns one registration by id. Recalled or missing ids are NOT FOUND.
func (s *ReviewService) Get(ctx context.Context, id int64) (*models.RegistrationDetail, error) {
	detail, err := s.registrations.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get registration")
	}
	return detail, nil
}

// Review applies the approve/reject decision exactly once. The check-then-set
// runs inside a row-locked transaction; once the transition is committed the
// audit entry, the in-app notification and the result email follow in that
// order. The side effects are best-effort and never fail the review.
func (s *ReviewService) Review(ctx context.Context, id int64, req ReviewRequest, reviewer models.JWTClaims) (*models.RegistrationDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}

	approve := req.Decision == models.ReviewDecisionApprove

	detail, err := s.registrations.Review(ctx, id, reviewer.AccountID, func(detail *models.RegistrationDetail, approvedCount int) (models.ReviewStatus, error) {
		if detail.IsReviewed {
			return "", appErrors.ErrAlreadyReviewed
		}
		if approve {
			if !detail.IsPassed {
				return "", appErrors.ErrNotEligible
			}
			if s.enforceQuota && approvedCount >= detail.MajorExpectedTarget {
				return "", appErrors.ErrQuotaExceeded
			}
			return models.ReviewStatusApproved, nil
		}
		return models.ReviewStatusRejected, nil
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to review registration")
	}

	s.metrics.RecordReview(string(req.Decision))

	if err := s.audit.Record(ctx, reviewer.AccountID, "Xét duyệt đơn đăng ký",
		fmt.Sprintf("%s - %s - %s", detail.StudentFullName, detail.MajorName, detail.AcademicLevelName)); err != nil {
		s.logger.Warn("failed to record review audit", zap.Int64("registration_id", id), zap.Error(err))
	}

	s.createReviewNotification(ctx, detail)
	s.dispatchResultEmail(detail)

	return detail, nil
}

func (s *ReviewService) createReviewNotification(ctx context.Context, detail *models.RegistrationDetail) {
	if detail.StudentMiniAppID == nil {
		return
	}

	content := fmt.Sprintf("Đơn xét tuyển ngành %s của học sinh %s đã được duyệt!", detail.MajorName, detail.StudentFullName)
	if detail.ReviewStatus == models.ReviewStatusRejected {
		content = fmt.Sprintf("Đơn xét tuyển ngành %s của học sinh %s không đủ điều kiện xét duyệt!", detail.MajorName, detail.StudentFullName)
	}

	err := s.notifications.CreateNotification(ctx, &models.MiniappNotification{
		UserID:  *detail.StudentMiniAppID,
		Content: content,
	})
	s.metrics.RecordNotification("review_result", err == nil)
	if err != nil {
		s.logger.Error("failed to create review notification",
			zap.Int64("registration_id", detail.ID),
			zap.Int64("mini_app_user_id", *detail.StudentMiniAppID),
			zap.Error(err))
	}
}

func (s *ReviewService) dispatchResultEmail(detail *models.RegistrationDetail) {
	evaluationMethod := "N/A"
	if detail.EvaluationMethodName != nil {
		evaluationMethod = *detail.EvaluationMethodName
	}
	examGroup := "N/A"
	if detail.CollegeExamGroupName != nil {
		examGroup = *detail.CollegeExamGroupName
	}

	msg := mailer.Message{
		To:           []string{detail.StudentEmail},
		Subject:      "[Trường Đại học Bình Dương] Thông Báo Kết Quả Xét Duyệt Đơn Xét Tuyển Đại Học",
		TemplateName: "approve_registration",
		Context: map[string]interface{}{
			"student_fullname":        detail.StudentFullName,
			"student_gender":          detail.StudentGender,
			"student_citizen_id":      detail.StudentCitizenID,
			"student_email":           detail.StudentEmail,
			"student_phone":           detail.StudentPhone,
			"student_address":         detail.StudentAddress,
			"student_city":            detail.StudentCity,
			"student_high_school":     detail.StudentHighSchool,
			"major_name":              detail.MajorName,
			"evaluation_method_name":  evaluationMethod,
			"college_exam_group_name": examGroup,
			"academic_level_name":     detail.AcademicLevelName,
			"final_score":             detail.FinalScore,
			"created_at":              detail.CreatedAt.Format("02/01/2006 15:04:05"),
			"date_of_birth":           detail.StudentDateOfBirth.Format("02/01/2006"),
			"is_approved":             detail.ReviewStatus == models.ReviewStatusApproved,
		},
	}

	if err := s.mail.Dispatch(msg); err != nil {
		s.logger.Error("failed to dispatch result email", zap.Int64("registration_id", detail.ID), zap.Error(err))
		return
	}
	s.metrics.RecordEmailEnqueued()
}
