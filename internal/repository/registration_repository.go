package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/bdu-suport/bdu-suport-api/internal/models"
)

const registrationDetailColumns = `
	r.id, r.student_id, r.major_id, r.evaluation_method_id, r.college_exam_group_id,
	r.final_score, r.is_passed, r.is_reviewed, r.review_status, r.reviewed_by,
	r.recalled_at, r.created_at,
	s.full_name AS student_full_name, s.gender AS student_gender,
	s.citizen_id AS student_citizen_id, s.email AS student_email,
	s.phone AS student_phone, s.address AS student_address,
	s.city AS student_city, s.high_school AS student_high_school,
	s.date_of_birth AS student_date_of_birth, s.mini_app_user_id AS student_mini_app_user_id,
	m.name AS major_name, m.expected_target AS major_expected_target,
	al.name AS academic_level_name,
	em.name AS evaluation_method_name, ceg.name AS college_exam_group_name`

const registrationDetailJoins = `
	FROM admission_registrations r
	JOIN students s ON s.id = r.student_id
	JOIN majors m ON m.id = r.major_id
	JOIN academic_levels al ON al.id = m.academic_level_id
	LEFT JOIN evaluation_methods em ON em.id = r.evaluation_method_id
	LEFT JOIN college_exam_groups ceg ON ceg.id = r.college_exam_group_id`

// RegistrationRepository provides database access to admission registrations.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository creates a new instance of RegistrationRepository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// registrationWhere builds the WHERE clause for the filter. Recalled
// registrations are always excluded.
func registrationWhere(filter models.RegistrationFilter) (string, []interface{}) {
	conditions := []string{"r.recalled_at IS NULL"}
	var args []interface{}

	addCondition := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.EvaluationMethodID != nil {
		addCondition("r.evaluation_method_id = $%d", *filter.EvaluationMethodID)
	}
	if filter.MajorID != nil {
		addCondition("r.major_id = $%d", *filter.MajorID)
	}
	if filter.CollegeExamGroupID != nil {
		addCondition("r.college_exam_group_id = $%d", *filter.CollegeExamGroupID)
	}
	if filter.TrainingLocationID != nil {
		addCondition("m.training_location_id = $%d", *filter.TrainingLocationID)
	}
	if filter.ReviewStatus != nil {
		addCondition("r.review_status = $%d", *filter.ReviewStatus)
	}
	if filter.Year != nil {
		addCondition("m.year = $%d", *filter.Year)
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}

// List returns registrations matching the filter with the total count.
func (r *RegistrationRepository) List(ctx context.Context, filter models.RegistrationFilter) ([]models.RegistrationDetail, int, error) {
	where, args := registrationWhere(filter)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := "SELECT " + registrationDetailColumns + registrationDetailJoins + where +
		fmt.Sprintf(" ORDER BY r.created_at DESC LIMIT %d OFFSET %d", pageSize, offset)

	var registrations []models.RegistrationDetail
	if err := r.db.SelectContext(ctx, &registrations, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list registrations: %w", err)
	}

	countQuery := "SELECT COUNT(r.id)" + registrationDetailJoins + where
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count registrations: %w", err)
	}

	return registrations, total, nil
}

// ListAll returns every registration matching the filter without pagination,
// for exports.
func (r *RegistrationRepository) ListAll(ctx context.Context, filter models.RegistrationFilter) ([]models.RegistrationDetail, error) {
	where, args := registrationWhere(filter)

	query := "SELECT " + registrationDetailColumns + registrationDetailJoins + where +
		" ORDER BY r.created_at DESC"

	var registrations []models.RegistrationDetail
	if err := r.db.SelectContext(ctx, &registrations, query, args...); err != nil {
		return nil, fmt.Errorf("list all registrations: %w", err)
	}
	return registrations, nil
}

// FindDetailByID returns the hydrated registration view by id, excluding
// recalled registrations.
func (r *RegistrationRepository) FindDetailByID(ctx context.Context, id int64) (*models.RegistrationDetail, error) {
	query := "SELECT " + registrationDetailColumns + registrationDetailJoins +
		" WHERE r.id = $1 AND r.recalled_at IS NULL LIMIT 1"

	var detail models.RegistrationDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find registration by id: %w", err)
	}
	return &detail, nil
}

// ReviewFunc inspects the locked registration and returns the terminal status
// to persist. Returning an error rolls the transaction back unchanged.
type ReviewFunc func(detail *models.RegistrationDetail, approvedCount int) (models.ReviewStatus, error)

// Review runs the check-then-set review transition as one atomic unit. The
// registration row is locked FOR UPDATE so concurrent reviews of the same id
// serialize; the second attempt observes is_reviewed = true. Only
// reviewed_by, review_status and is_reviewed are written.
func (r *RegistrationRepository) Review(ctx context.Context, id int64, reviewer string, decide ReviewFunc) (*models.RegistrationDetail, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("begin review tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const lockQuery = `SELECT id, student_id, major_id, evaluation_method_id, college_exam_group_id,
		final_score, is_passed, is_reviewed, review_status, reviewed_by, recalled_at, created_at
		FROM admission_registrations WHERE id = $1 AND recalled_at IS NULL FOR UPDATE`

	var locked models.AdmissionRegistration
	if err := tx.GetContext(ctx, &locked, lockQuery, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("lock registration: %w", err)
	}

	detail, err := r.detailInTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	detail.AdmissionRegistration = locked

	const countQuery = `SELECT COUNT(id) FROM admission_registrations
		WHERE major_id = $1 AND review_status = $2 AND recalled_at IS NULL`
	var approvedCount int
	if err := tx.GetContext(ctx, &approvedCount, countQuery, locked.MajorID, models.ReviewStatusApproved); err != nil {
		return nil, fmt.Errorf("count approved registrations: %w", err)
	}

	status, err := decide(detail, approvedCount)
	if err != nil {
		return nil, err
	}

	const updateQuery = `UPDATE admission_registrations
		SET reviewed_by = $2, review_status = $3, is_reviewed = TRUE WHERE id = $1`
	if _, err := tx.ExecContext(ctx, updateQuery, id, reviewer, status); err != nil {
		return nil, fmt.Errorf("update registration review: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit review tx: %w", err)
	}

	detail.ReviewedBy = &reviewer
	detail.ReviewStatus = status
	detail.IsReviewed = true
	return detail, nil
}

func (r *RegistrationRepository) detailInTx(ctx context.Context, tx *sqlx.Tx, id int64) (*models.RegistrationDetail, error) {
	query := "SELECT " + registrationDetailColumns + registrationDetailJoins +
		" WHERE r.id = $1 LIMIT 1"

	var detail models.RegistrationDetail
	if err := tx.GetContext(ctx, &detail, query, id); err != nil {
		return nil, fmt.Errorf("hydrate registration detail: %w", err)
	}
	return &detail, nil
}
