package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bdu-suport/bdu-suport-api/internal/dw"
	"github.com/bdu-suport/bdu-suport-api/internal/models"
)

// DWRepository is the gateway to the normalized data-warehouse store. Reads
// serve the notification composer; ingestion feeds the store through the key
// mapper.
type DWRepository struct {
	db *sqlx.DB
}

// NewDWRepository creates a new instance of DWRepository.
func NewDWRepository(db *sqlx.DB) *DWRepository {
	return &DWRepository{db: db}
}

// GetAttendancesByStudentCodeAndDateRange returns attendance records for the
// student within [start, end], ordered by date.
func (r *DWRepository) GetAttendancesByStudentCodeAndDateRange(ctx context.Context, studentCode int64, start, end time.Time) ([]models.DWAttendance, error) {
	const query = `SELECT student_code, subject_code, subject_name, attendance_date, lesson, status
		FROM dw_attendances
		WHERE student_code = $1 AND attendance_date >= $2 AND attendance_date <= $3
		ORDER BY attendance_date ASC`
	var attendances []models.DWAttendance
	if err := r.db.SelectContext(ctx, &attendances, query, studentCode, start, end); err != nil {
		return nil, fmt.Errorf("get attendances by student code: %w", err)
	}
	return attendances, nil
}

// GetStudentAcademicClassifications returns classification records for the
// student at the given reference date. Semester and academic year are derived
// from the upstream semester code (YYYYS).
func (r *DWRepository) GetStudentAcademicClassifications(ctx context.Context, studentCode int64, date time.Time) ([]models.DWClassification, error) {
	const query = `SELECT student_id, full_name,
		(semester_code % 10)::int AS semester,
		(semester_code / 10)::int AS academic_year,
		classification
		FROM dw_classifications
		WHERE student_id = $1 AND date = $2
		ORDER BY semester_code ASC`
	var classifications []models.DWClassification
	if err := r.db.SelectContext(ctx, &classifications, query, studentCode, date); err != nil {
		return nil, fmt.Errorf("get student academic classifications: %w", err)
	}
	return classifications, nil
}

// IngestAttendances converts raw upstream attendance rows through the
// attendance key mapping and upserts them into the normalized store.
func (r *DWRepository) IngestAttendances(ctx context.Context, raw []dw.Record) (int, error) {
	const query = `INSERT INTO dw_attendances (attendance_id, student_code, subject_code, subject_name, attendance_date, lesson, status, group_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (attendance_id) DO UPDATE SET status = EXCLUDED.status, lesson = EXCLUDED.lesson`

	converted := dw.ConvertList(raw, dw.AttendanceKeyMapping)
	inserted := 0
	for i, record := range converted {
		if _, err := r.db.ExecContext(ctx, query,
			record["attendance_id"],
			record["student_code"],
			record["subject_code"],
			record["subject_name"],
			record["attendance_date"],
			record["lesson"],
			record["status"],
			record["group_code"],
		); err != nil {
			return inserted, fmt.Errorf("ingest attendance row %d: %w", i, err)
		}
		inserted++
	}
	return inserted, nil
}

// IngestClassifications converts raw upstream classification rows through the
// classification key mapping and upserts them into the normalized store.
func (r *DWRepository) IngestClassifications(ctx context.Context, raw []dw.Record) (int, error) {
	const query = `INSERT INTO dw_classifications (student_id, full_name, semester_code, classification, score, date)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (student_id, semester_code) DO UPDATE SET classification = EXCLUDED.classification, score = EXCLUDED.score, date = EXCLUDED.date`

	converted := dw.ConvertList(raw, dw.ClassificationKeyMapping)
	inserted := 0
	for i, record := range converted {
		if _, err := r.db.ExecContext(ctx, query,
			record["student_id"],
			record["full_name"],
			record["semester_code"],
			record["classification"],
			record["score"],
			record["date"],
		); err != nil {
			return inserted, fmt.Errorf("ingest classification row %d: %w", i, err)
		}
		inserted++
	}
	return inserted, nil
}
