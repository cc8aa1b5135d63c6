package models

import "time"

// ReviewStatus is the admission registration review state.
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "PENDING"
	ReviewStatusApproved ReviewStatus = "APPROVED"
	ReviewStatusRejected ReviewStatus = "REJECTED"
)

// ReviewDecision is the action a reviewer takes on a pending registration.
type ReviewDecision string

const (
	ReviewDecisionApprove ReviewDecision = "approve"
	ReviewDecisionReject  ReviewDecision = "reject"
)

// AdmissionRegistration is a student's application to a major. The review
// status moves exactly once from PENDING to a terminal state; a registration
// with RecalledAt set has been withdrawn and is invisible to the workflow.
type AdmissionRegistration struct {
	ID                 int64        `db:"id" json:"id"`
	StudentID          int64        `db:"student_id" json:"student_id"`
	MajorID            int64        `db:"major_id" json:"major_id"`
	EvaluationMethodID *int64       `db:"evaluation_method_id" json:"evaluation_method_id,omitempty"`
	CollegeExamGroupID *int64       `db:"college_exam_group_id" json:"college_exam_group_id,omitempty"`
	FinalScore         float64      `db:"final_score" json:"final_score"`
	IsPassed           bool         `db:"is_passed" json:"is_passed"`
	IsReviewed         bool         `db:"is_reviewed" json:"is_reviewed"`
	ReviewStatus       ReviewStatus `db:"review_status" json:"review_status"`
	ReviewedBy         *string      `db:"reviewed_by" json:"reviewed_by,omitempty"`
	RecalledAt         *time.Time   `db:"recalled_at" json:"recalled_at,omitempty"`
	CreatedAt          time.Time    `db:"created_at" json:"created_at"`
}

// RegistrationDetail is the pre-hydrated view used by the review workflow:
// the registration joined with applicant, major and lookup names, so content
// builders never reach back into the database.
type RegistrationDetail struct {
	AdmissionRegistration

	StudentFullName    string    `db:"student_full_name" json:"student_full_name"`
	StudentGender      string    `db:"student_gender" json:"student_gender"`
	StudentCitizenID   string    `db:"student_citizen_id" json:"student_citizen_id"`
	StudentEmail       string    `db:"student_email" json:"student_email"`
	StudentPhone       string    `db:"student_phone" json:"student_phone"`
	StudentAddress     string    `db:"student_address" json:"student_address"`
	StudentCity        string    `db:"student_city" json:"student_city"`
	StudentHighSchool  string    `db:"student_high_school" json:"student_high_school"`
	StudentDateOfBirth time.Time `db:"student_date_of_birth" json:"student_date_of_birth"`
	StudentMiniAppID   *int64    `db:"student_mini_app_user_id" json:"-"`

	MajorName            string  `db:"major_name" json:"major_name"`
	MajorExpectedTarget  int     `db:"major_expected_target" json:"-"`
	AcademicLevelName    string  `db:"academic_level_name" json:"academic_level_name"`
	EvaluationMethodName *string `db:"evaluation_method_name" json:"evaluation_method_name,omitempty"`
	CollegeExamGroupName *string `db:"college_exam_group_name" json:"college_exam_group_name,omitempty"`
}

// RegistrationFilter narrows the back-office listing. TrainingLocationID and
// Year are resolved through the related major.
type RegistrationFilter struct {
	EvaluationMethodID *int64
	MajorID            *int64
	CollegeExamGroupID *int64
	TrainingLocationID *int64
	ReviewStatus       *ReviewStatus
	Year               *int
	Page               int
	PageSize           int
}
