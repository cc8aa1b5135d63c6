package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/bdu-suport/bdu-suport-api/internal/models"
	appErrors "github.com/bdu-suport/bdu-suport-api/pkg/errors"
	"github.com/bdu-suport/bdu-suport-api/pkg/export"
)

// ExportFormat selects the export renderer.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportFile is a rendered export ready to stream to the client.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

type registrationLister interface {
	ListAll(ctx context.Context, filter models.RegistrationFilter) ([]models.RegistrationDetail, error)
}

// ExportService renders registration listings as downloadable files for the
// back office.
type ExportService struct {
	registrations registrationLister
	csv           *export.CSVExporter
	pdf           *export.PDFExporter
	logger        *zap.Logger
}

// NewExportService constructs the service.
func NewExportService(registrations registrationLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		registrations: registrations,
		csv:           export.NewCSVExporter(),
		pdf:           export.NewPDFExporter(),
		logger:        logger,
	}
}

var exportHeaders = []string{
	"Ho ten", "CCCD", "Email", "So dien thoai", "Nganh", "Bac dao tao",
	"Phuong thuc", "To hop", "Diem", "Trang thai", "Ngay dang ky",
}

// Export renders every registration matching the filter, ignoring pagination.
func (s *ExportService) Export(ctx context.Context, filter models.RegistrationFilter, format ExportFormat) (*ExportFile, error) {
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	rows, err := s.registrations.ListAll(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registrations for export")
	}

	dataset := export.Dataset{Headers: exportHeaders, Rows: make([]map[string]string, 0, len(rows))}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, exportRow(row))
	}

	stamp := time.Now().Format("20060102_150405")
	switch format {
	case ExportFormatPDF:
		content, err := s.pdf.Render(dataset, "Danh sach don dang ky xet tuyen")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("registrations_%s.pdf", stamp),
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	default:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("registrations_%s.csv", stamp),
			ContentType: "text/csv",
			Content:     content,
		}, nil
	}
}

func exportRow(row models.RegistrationDetail) map[string]string {
	evaluationMethod := ""
	if row.EvaluationMethodName != nil {
		evaluationMethod = *row.EvaluationMethodName
	}
	examGroup := ""
	if row.CollegeExamGroupName != nil {
		examGroup = *row.CollegeExamGroupName
	}
	return map[string]string{
		"Ho ten":        row.StudentFullName,
		"CCCD":          row.StudentCitizenID,
		"Email":         row.StudentEmail,
		"So dien thoai": row.StudentPhone,
		"Nganh":         row.MajorName,
		"Bac dao tao":   row.AcademicLevelName,
		"Phuong thuc":   evaluationMethod,
		"To hop":        examGroup,
		"Diem":          strconv.FormatFloat(row.FinalScore, 'f', 2, 64),
		"Trang thai":    string(row.ReviewStatus),
		"Ngay dang ky":  row.CreatedAt.Format("02/01/2006 15:04:05"),
	}
}
