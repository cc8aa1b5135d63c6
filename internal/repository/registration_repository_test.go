package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bdu-suport/bdu-suport-api/internal/models"
	appErrors "github.com/bdu-suport/bdu-suport-api/pkg/errors"
)

func newRegistrationMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var detailColumns = []string{
	"id", "student_id", "major_id", "evaluation_method_id", "college_exam_group_id",
	"final_score", "is_passed", "is_reviewed", "review_status", "reviewed_by",
	"recalled_at", "created_at",
	"student_full_name", "student_gender", "student_citizen_id", "student_email",
	"student_phone", "student_address", "student_city", "student_high_school",
	"student_date_of_birth", "student_mini_app_user_id",
	"major_name", "major_expected_target", "academic_level_name",
	"evaluation_method_name", "college_exam_group_name",
}

func detailRow(id int64, reviewed bool, status models.ReviewStatus) []driver.Value {
	now := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	return []driver.Value{
		id, int64(1), int64(10), nil, nil,
		24.5, true, reviewed, string(status), nil,
		nil, now,
		"Nguyen Van An", "Nam", "012345678901", "an@example.com",
		"0901234567", "12 Le Loi", "Binh Duong", "THPT Hung Vuong",
		time.Date(2008, 3, 15, 0, 0, 0, 0, time.UTC), int64(77),
		"Cong nghe thong tin", 100, "Dai hoc",
		nil, nil,
	}
}

func TestRegistrationRepositoryList(t *testing.T) {
	db, mock, cleanup := newRegistrationMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	status := models.ReviewStatusPending
	mock.ExpectQuery(`SELECT(?s).*student_full_name.*FROM admission_registrations r.*WHERE r\.recalled_at IS NULL AND r\.review_status = \$1 ORDER BY r\.created_at DESC LIMIT 20 OFFSET 0`).
		WithArgs(status).
		WillReturnRows(sqlmock.NewRows(detailColumns).AddRow(detailRow(1, false, status)...))
	mock.ExpectQuery(`SELECT COUNT\(r\.id\)(?s).*WHERE r\.recalled_at IS NULL AND r\.review_status = \$1`).
		WithArgs(status).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rows, total, err := repo.List(context.Background(), models.RegistrationFilter{ReviewStatus: &status})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Nguyen Van An", rows[0].StudentFullName)
	assert.Equal(t, 100, rows[0].MajorExpectedTarget)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryFindDetailByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRegistrationMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectQuery(`SELECT(?s).*WHERE r\.id = \$1 AND r\.recalled_at IS NULL LIMIT 1`).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows(detailColumns))

	_, err := repo.FindDetailByID(context.Background(), 404)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryReviewCommits(t *testing.T) {
	db, mock, cleanup := newRegistrationMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	lockColumns := []string{"id", "student_id", "major_id", "evaluation_method_id", "college_exam_group_id",
		"final_score", "is_passed", "is_reviewed", "review_status", "reviewed_by", "recalled_at", "created_at"}

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)FROM admission_registrations WHERE id = \$1 AND recalled_at IS NULL FOR UPDATE`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(lockColumns).
			AddRow(int64(1), int64(1), int64(10), nil, nil, 24.5, true, false, "PENDING", nil, nil, time.Now()))
	mock.ExpectQuery(`SELECT(?s).*student_full_name.*WHERE r\.id = \$1 LIMIT 1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(detailColumns).AddRow(detailRow(1, false, models.ReviewStatusPending)...))
	mock.ExpectQuery(`SELECT COUNT\(id\) FROM admission_registrations(?s).*WHERE major_id = \$1 AND review_status = \$2`).
		WithArgs(int64(10), models.ReviewStatusApproved).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))
	mock.ExpectExec(`UPDATE admission_registrations(?s).*SET reviewed_by = \$2, review_status = \$3, is_reviewed = TRUE WHERE id = \$1`).
		WithArgs(int64(1), "acc-1", models.ReviewStatusApproved).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	var seenCount int
	detail, err := repo.Review(context.Background(), 1, "acc-1", func(detail *models.RegistrationDetail, approvedCount int) (models.ReviewStatus, error) {
		seenCount = approvedCount
		return models.ReviewStatusApproved, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, seenCount)
	assert.True(t, detail.IsReviewed)
	assert.Equal(t, models.ReviewStatusApproved, detail.ReviewStatus)
	require.NotNil(t, detail.ReviewedBy)
	assert.Equal(t, "acc-1", *detail.ReviewedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryReviewRollsBackOnDecisionError(t *testing.T) {
	db, mock, cleanup := newRegistrationMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	lockColumns := []string{"id", "student_id", "major_id", "evaluation_method_id", "college_exam_group_id",
		"final_score", "is_passed", "is_reviewed", "review_status", "reviewed_by", "recalled_at", "created_at"}

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)FROM admission_registrations WHERE id = \$1 AND recalled_at IS NULL FOR UPDATE`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(lockColumns).
			AddRow(int64(1), int64(1), int64(10), nil, nil, 24.5, true, true, "APPROVED", "acc-0", nil, time.Now()))
	mock.ExpectQuery(`SELECT(?s).*student_full_name.*WHERE r\.id = \$1 LIMIT 1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(detailColumns).AddRow(detailRow(1, true, models.ReviewStatusApproved)...))
	mock.ExpectQuery(`SELECT COUNT\(id\) FROM admission_registrations(?s).*WHERE major_id = \$1 AND review_status = \$2`).
		WithArgs(int64(10), models.ReviewStatusApproved).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))
	mock.ExpectRollback()

	_, err := repo.Review(context.Background(), 1, "acc-1", func(detail *models.RegistrationDetail, approvedCount int) (models.ReviewStatus, error) {
		if detail.IsReviewed {
			return "", appErrors.ErrAlreadyReviewed
		}
		return models.ReviewStatusApproved, nil
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrAlreadyReviewed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryReviewMissingRegistration(t *testing.T) {
	db, mock, cleanup := newRegistrationMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)FROM admission_registrations WHERE id = \$1 AND recalled_at IS NULL FOR UPDATE`).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := repo.Review(context.Background(), 404, "acc-1", func(detail *models.RegistrationDetail, approvedCount int) (models.ReviewStatus, error) {
		return models.ReviewStatusApproved, nil
	})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
