package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderApproveRegistration(t *testing.T) {
	body, err := Render(Message{
		TemplateName: "approve_registration",
		Context: map[string]interface{}{
			"student_fullname":        "Nguyễn Văn An",
			"student_gender":          "Nam",
			"student_citizen_id":      "012345678901",
			"student_email":           "an@example.com",
			"student_phone":           "0901234567",
			"student_address":         "12 Lê Lợi",
			"student_city":            "Bình Dương",
			"student_high_school":     "THPT Hùng Vương",
			"major_name":              "Công nghệ thông tin",
			"evaluation_method_name":  "Xét học bạ",
			"college_exam_group_name": "A00",
			"academic_level_name":     "Đại học",
			"final_score":             24.5,
			"created_at":              "01/07/2026 09:30:00",
			"date_of_birth":           "15/03/2008",
			"is_approved":             true,
		},
	})
	require.NoError(t, err)
	assert.Contains(t, body, "Nguyễn Văn An")
	assert.Contains(t, body, "Công nghệ thông tin")
}

func TestRenderRejectedBranch(t *testing.T) {
	approved, err := Render(Message{TemplateName: "approve_registration", Context: map[string]interface{}{"is_approved": true}})
	require.NoError(t, err)
	rejected, err := Render(Message{TemplateName: "approve_registration", Context: map[string]interface{}{"is_approved": false}})
	require.NoError(t, err)
	assert.NotEqual(t, approved, rejected)
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := Render(Message{TemplateName: "missing"})
	require.Error(t, err)
}
