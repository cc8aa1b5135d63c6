package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bdu-suport/bdu-suport-api/internal/models"
	"github.com/bdu-suport/bdu-suport-api/internal/repository"
	appErrors "github.com/bdu-suport/bdu-suport-api/pkg/errors"
	"github.com/bdu-suport/bdu-suport-api/pkg/mailer"
)

type mockRegistrationRepo struct {
	registrations map[int64]models.RegistrationDetail
	approvedCount int
	listErr       error
}

func (m *mockRegistrationRepo) List(ctx context.Context, filter models.RegistrationFilter) ([]models.RegistrationDetail, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	var rows []models.RegistrationDetail
	for _, detail := range m.registrations {
		rows = append(rows, detail)
	}
	return rows, len(rows), nil
}

func (m *mockRegistrationRepo) FindDetailByID(ctx context.Context, id int64) (*models.RegistrationDetail, error) {
	detail, ok := m.registrations[id]
	if !ok || detail.RecalledAt != nil {
		return nil, sql.ErrNoRows
	}
	return &detail, nil
}

func (m *mockRegistrationRepo) Review(ctx context.Context, id int64, reviewer string, decide repository.ReviewFunc) (*models.RegistrationDetail, error) {
	detail, ok := m.registrations[id]
	if !ok || detail.RecalledAt != nil {
		return nil, sql.ErrNoRows
	}
	status, err := decide(&detail, m.approvedCount)
	if err != nil {
		return nil, err
	}
	detail.ReviewedBy = &reviewer
	detail.ReviewStatus = status
	detail.IsReviewed = true
	m.registrations[id] = detail
	return &detail, nil
}

// lockedRegistrationRepo serializes the review check-then-set behind a mutex,
// the way the row lock does in Postgres.
type lockedRegistrationRepo struct {
	mu            sync.Mutex
	registrations map[int64]models.RegistrationDetail
}

func (m *lockedRegistrationRepo) List(ctx context.Context, filter models.RegistrationFilter) ([]models.RegistrationDetail, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var rows []models.RegistrationDetail
	for _, detail := range m.registrations {
		rows = append(rows, detail)
	}
	return rows, len(rows), nil
}

func (m *lockedRegistrationRepo) FindDetailByID(ctx context.Context, id int64) (*models.RegistrationDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	detail, ok := m.registrations[id]
	if !ok || detail.RecalledAt != nil {
		return nil, sql.ErrNoRows
	}
	return &detail, nil
}

func (m *lockedRegistrationRepo) Review(ctx context.Context, id int64, reviewer string, decide repository.ReviewFunc) (*models.RegistrationDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	detail, ok := m.registrations[id]
	if !ok || detail.RecalledAt != nil {
		return nil, sql.ErrNoRows
	}
	status, err := decide(&detail, 0)
	if err != nil {
		return nil, err
	}
	detail.ReviewedBy = &reviewer
	detail.ReviewStatus = status
	detail.IsReviewed = true
	m.registrations[id] = detail
	return &detail, nil
}

type mockAuditRecorder struct {
	actions  []string
	subjects []string
	err      error
}

func (m *mockAuditRecorder) Record(ctx context.Context, accountID, action, subject string) error {
	if m.err != nil {
		return m.err
	}
	m.actions = append(m.actions, action)
	m.subjects = append(m.subjects, subject)
	return nil
}

func (m *mockAuditRecorder) ListByAccount(ctx context.Context, accountID string, limit int) ([]models.AuditLog, error) {
	entries := make([]models.AuditLog, 0, len(m.actions))
	for i, action := range m.actions {
		entries = append(entries, models.AuditLog{AccountID: accountID, Action: action, Subject: m.subjects[i]})
	}
	return entries, nil
}

type mockNotificationCreator struct {
	notifications []models.MiniappNotification
	err           error
}

func (m *mockNotificationCreator) CreateNotification(ctx context.Context, notification *models.MiniappNotification) error {
	if m.err != nil {
		return m.err
	}
	m.notifications = append(m.notifications, *notification)
	return nil
}

type mockEmailDispatcher struct {
	messages []mailer.Message
	err      error
}

func (m *mockEmailDispatcher) Dispatch(msg mailer.Message) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

func pendingRegistration(id int64, passed bool) models.RegistrationDetail {
	miniAppID := int64(77)
	return models.RegistrationDetail{
		AdmissionRegistration: models.AdmissionRegistration{
			ID:           id,
			StudentID:    1,
			MajorID:      10,
			FinalScore:   24.5,
			IsPassed:     passed,
			ReviewStatus: models.ReviewStatusPending,
			CreatedAt:    time.Date(2026, 7, 1, 9, 30, 0, 0, time.UTC),
		},
		StudentFullName:     "Nguyễn Văn An",
		StudentGender:       "Nam",
		StudentCitizenID:    "012345678901",
		StudentEmail:        "an.nguyen@example.com",
		StudentPhone:        "0901234567",
		StudentAddress:      "12 Lê Lợi",
		StudentCity:         "Bình Dương",
		StudentHighSchool:   "THPT Chuyên Hùng Vương",
		StudentDateOfBirth:  time.Date(2008, 3, 15, 0, 0, 0, 0, time.UTC),
		StudentMiniAppID:    &miniAppID,
		MajorName:           "Công nghệ thông tin",
		MajorExpectedTarget: 100,
		AcademicLevelName:   "Đại học",
	}
}

func newReviewFixture(repo registrationRepository, enforceQuota bool) (*ReviewService, *mockAuditRecorder, *mockNotificationCreator, *mockEmailDispatcher) {
	audit := &mockAuditRecorder{}
	notifications := &mockNotificationCreator{}
	mail := &mockEmailDispatcher{}
	svc := NewReviewService(repo, audit, notifications, mail, nil, validator.New(), zap.NewNop(), enforceQuota)
	return svc, audit, notifications, mail
}

func TestReviewServiceApprove(t *testing.T) {
	repo := &mockRegistrationRepo{registrations: map[int64]models.RegistrationDetail{1: pendingRegistration(1, true)}}
	svc, audit, notifications, mail := newReviewFixture(repo, false)

	detail, err := svc.Review(context.Background(), 1, ReviewRequest{Decision: models.ReviewDecisionApprove}, models.JWTClaims{AccountID: "acc-1"})
	require.NoError(t, err)
	assert.Equal(t, models.ReviewStatusApproved, detail.ReviewStatus)
	assert.True(t, detail.IsReviewed)
	require.NotNil(t, detail.ReviewedBy)
	assert.Equal(t, "acc-1", *detail.ReviewedBy)

	require.Len(t, audit.actions, 1)
	assert.Equal(t, "Xét duyệt đơn đăng ký", audit.actions[0])
	assert.Equal(t, "Nguyễn Văn An - Công nghệ thông tin - Đại học", audit.subjects[0])

	require.Len(t, notifications.notifications, 1)
	assert.Equal(t, int64(77), notifications.notifications[0].UserID)
	assert.Contains(t, notifications.notifications[0].Content, "đã được duyệt")

	require.Len(t, mail.messages, 1)
	assert.Equal(t, []string{"an.nguyen@example.com"}, mail.messages[0].To)
	assert.Equal(t, "approve_registration", mail.messages[0].TemplateName)
	assert.Equal(t, true, mail.messages[0].Context["is_approved"])
}

func TestReviewServiceReject(t *testing.T) {
	repo := &mockRegistrationRepo{registrations: map[int64]models.RegistrationDetail{1: pendingRegistration(1, true)}}
	svc, _, notifications, mail := newReviewFixture(repo, false)

	detail, err := svc.Review(context.Background(), 1, ReviewRequest{Decision: models.ReviewDecisionReject}, models.JWTClaims{AccountID: "acc-1"})
	require.NoError(t, err)
	assert.Equal(t, models.ReviewStatusRejected, detail.ReviewStatus)

	require.Len(t, notifications.notifications, 1)
	assert.Contains(t, notifications.notifications[0].Content, "không đủ điều kiện xét duyệt")

	require.Len(t, mail.messages, 1)
	assert.Equal(t, false, mail.messages[0].Context["is_approved"])
}

func TestReviewServiceRejectIgnoresEligibility(t *testing.T) {
	repo := &mockRegistrationRepo{registrations: map[int64]models.RegistrationDetail{1: pendingRegistration(1, false)}}
	svc, _, _, _ := newReviewFixture(repo, false)

	detail, err := svc.Review(context.Background(), 1, ReviewRequest{Decision: models.ReviewDecisionReject}, models.JWTClaims{AccountID: "acc-1"})
	require.NoError(t, err)
	assert.Equal(t, models.ReviewStatusRejected, detail.ReviewStatus)
}

func TestReviewServiceAlreadyReviewed(t *testing.T) {
	reg := pendingRegistration(1, true)
	reg.IsReviewed = true
	reg.ReviewStatus = models.ReviewStatusApproved
	repo := &mockRegistrationRepo{registrations: map[int64]models.RegistrationDetail{1: reg}}
	svc, audit, notifications, mail := newReviewFixture(repo, false)

	_, err := svc.Review(context.Background(), 1, ReviewRequest{Decision: models.ReviewDecisionApprove}, models.JWTClaims{AccountID: "acc-2"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrAlreadyReviewed))

	assert.Empty(t, audit.actions)
	assert.Empty(t, notifications.notifications)
	assert.Empty(t, mail.messages)
}

func TestReviewServiceConcurrentReviewsSingleWinner(t *testing.T) {
	repo := &lockedRegistrationRepo{registrations: map[int64]models.RegistrationDetail{1: pendingRegistration(1, true)}}
	svc, audit, _, mail := newReviewFixture(repo, false)

	const attempts = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	var winners, conflicts int

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := svc.Review(context.Background(), 1, ReviewRequest{Decision: models.ReviewDecisionApprove},
				models.JWTClaims{AccountID: fmt.Sprintf("acc-%d", n)})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners++
			case appErrors.Is(err, appErrors.ErrAlreadyReviewed):
				conflicts++
			default:
				t.Errorf("unexpected review error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
	assert.Equal(t, attempts-1, conflicts)

	stored := repo.registrations[1]
	assert.True(t, stored.IsReviewed)
	assert.Equal(t, models.ReviewStatusApproved, stored.ReviewStatus)

	// side effects fire once, for the winner only
	assert.Len(t, audit.actions, 1)
	assert.Len(t, mail.messages, 1)
}

func TestReviewServiceNotEligible(t *testing.T) {
	repo := &mockRegistrationRepo{registrations: map[int64]models.RegistrationDetail{1: pendingRegistration(1, false)}}
	svc, _, _, _ := newReviewFixture(repo, false)

	_, err := svc.Review(context.Background(), 1, ReviewRequest{Decision: models.ReviewDecisionApprove}, models.JWTClaims{AccountID: "acc-1"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotEligible))

	stored := repo.registrations[1]
	assert.False(t, stored.IsReviewed)
	assert.Equal(t, models.ReviewStatusPending, stored.ReviewStatus)
}

func TestReviewServiceQuotaEnforced(t *testing.T) {
	reg := pendingRegistration(1, true)
	reg.MajorExpectedTarget = 50
	repo := &mockRegistrationRepo{registrations: map[int64]models.RegistrationDetail{1: reg}, approvedCount: 50}
	svc, _, _, _ := newReviewFixture(repo, true)

	_, err := svc.Review(context.Background(), 1, ReviewRequest{Decision: models.ReviewDecisionApprove}, models.JWTClaims{AccountID: "acc-1"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrQuotaExceeded))
}

func TestReviewServiceQuotaDisabled(t *testing.T) {
	reg := pendingRegistration(1, true)
	reg.MajorExpectedTarget = 50
	repo := &mockRegistrationRepo{registrations: map[int64]models.RegistrationDetail{1: reg}, approvedCount: 50}
	svc, _, _, _ := newReviewFixture(repo, false)

	detail, err := svc.Review(context.Background(), 1, ReviewRequest{Decision: models.ReviewDecisionApprove}, models.JWTClaims{AccountID: "acc-1"})
	require.NoError(t, err)
	assert.Equal(t, models.ReviewStatusApproved, detail.ReviewStatus)
}

func TestReviewServiceNotFound(t *testing.T) {
	repo := &mockRegistrationRepo{registrations: map[int64]models.RegistrationDetail{}}
	svc, _, _, _ := newReviewFixture(repo, false)

	_, err := svc.Review(context.Background(), 404, ReviewRequest{Decision: models.ReviewDecisionApprove}, models.JWTClaims{AccountID: "acc-1"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestReviewServiceRecalledNotFound(t *testing.T) {
	reg := pendingRegistration(1, true)
	recalled := time.Now()
	reg.RecalledAt = &recalled
	repo := &mockRegistrationRepo{registrations: map[int64]models.RegistrationDetail{1: reg}}
	svc, _, _, _ := newReviewFixture(repo, false)

	_, err := svc.Review(context.Background(), 1, ReviewRequest{Decision: models.ReviewDecisionApprove}, models.JWTClaims{AccountID: "acc-1"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	_, err = svc.Get(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestReviewServiceInvalidDecision(t *testing.T) {
	repo := &mockRegistrationRepo{registrations: map[int64]models.RegistrationDetail{1: pendingRegistration(1, true)}}
	svc, _, _, _ := newReviewFixture(repo, false)

	_, err := svc.Review(context.Background(), 1, ReviewRequest{Decision: "maybe"}, models.JWTClaims{AccountID: "acc-1"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestReviewServiceSideEffectsAreBestEffort(t *testing.T) {
	repo := &mockRegistrationRepo{registrations: map[int64]models.RegistrationDetail{1: pendingRegistration(1, true)}}
	audit := &mockAuditRecorder{err: errors.New("audit down")}
	notifications := &mockNotificationCreator{err: errors.New("notifications down")}
	mail := &mockEmailDispatcher{err: errors.New("queue full")}
	svc := NewReviewService(repo, audit, notifications, mail, nil, validator.New(), zap.NewNop(), false)

	detail, err := svc.Review(context.Background(), 1, ReviewRequest{Decision: models.ReviewDecisionApprove}, models.JWTClaims{AccountID: "acc-1"})
	require.NoError(t, err)
	assert.Equal(t, models.ReviewStatusApproved, detail.ReviewStatus)
}

func TestReviewServiceNoMiniAppUserSkipsNotification(t *testing.T) {
	reg := pendingRegistration(1, true)
	reg.StudentMiniAppID = nil
	repo := &mockRegistrationRepo{registrations: map[int64]models.RegistrationDetail{1: reg}}
	svc, _, notifications, mail := newReviewFixture(repo, false)

	_, err := svc.Review(context.Background(), 1, ReviewRequest{Decision: models.ReviewDecisionApprove}, models.JWTClaims{AccountID: "acc-1"})
	require.NoError(t, err)
	assert.Empty(t, notifications.notifications)
	require.Len(t, mail.messages, 1)
}

func TestReviewServiceListDefaultsPagination(t *testing.T) {
	repo := &mockRegistrationRepo{registrations: map[int64]models.RegistrationDetail{1: pendingRegistration(1, true)}}
	svc, _, _, _ := newReviewFixture(repo, false)

	rows, pagination, err := svc.List(context.Background(), models.RegistrationFilter{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	require.NotNil(t, pagination)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 1, pagination.TotalCount)
}

func TestReviewServiceListClampsOversizedPage(t *testing.T) {
	repo := &mockRegistrationRepo{registrations: map[int64]models.RegistrationDetail{1: pendingRegistration(1, true)}}
	svc, _, _, _ := newReviewFixture(repo, false)

	_, pagination, err := svc.List(context.Background(), models.RegistrationFilter{PageSize: 500})
	require.NoError(t, err)
	require.NotNil(t, pagination)
	assert.Equal(t, 20, pagination.PageSize)
}
