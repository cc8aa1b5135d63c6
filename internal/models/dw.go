package models

import "time"

// DWAttendance is a normalized attendance record from the data warehouse.
type DWAttendance struct {
	StudentCode    int64     `db:"student_code" json:"student_code"`
	SubjectCode    string    `db:"subject_code" json:"subject_code"`
	SubjectName    string    `db:"subject_name" json:"subject_name"`
	AttendanceDate time.Time `db:"attendance_date" json:"attendance_date"`
	Lesson         string    `db:"lesson" json:"lesson"`
	Status         string    `db:"status" json:"status"`
}

// DWClassification is a normalized academic-classification record. Semester
// and AcademicYear are derived from the upstream semester code (YYYYS).
type DWClassification struct {
	StudentID      int64  `db:"student_id" json:"student_id"`
	FullName       string `db:"full_name" json:"full_name"`
	Semester       int    `db:"semester" json:"semester"`
	AcademicYear   int    `db:"academic_year" json:"academic_year"`
	Classification string `db:"classification" json:"classification"`
}
