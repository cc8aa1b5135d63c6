package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/bdu-suport/bdu-suport-api/internal/dw"
	appErrors "github.com/bdu-suport/bdu-suport-api/pkg/errors"
)

type dwIngestor interface {
	IngestAttendances(ctx context.Context, raw []dw.Record) (int, error)
	IngestClassifications(ctx context.Context, raw []dw.Record) (int, error)
}

// DWService ingests raw upstream rows into the normalized data-warehouse
// store. Rows are renamed through the key mappings on the way in; keys absent
// from a mapping are dropped.
type DWService struct {
	repo   dwIngestor
	logger *zap.Logger
}

// NewDWService constructs the service.
func NewDWService(repo dwIngestor, logger *zap.Logger) *DWService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DWService{repo: repo, logger: logger}
}

// IngestAttendances stores raw attendance rows, returning the number ingested.
func (s *DWService) IngestAttendances(ctx context.Context, raw []dw.Record) (int, error) {
	if len(raw) == 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "no attendance rows supplied")
	}
	count, err := s.repo.IngestAttendances(ctx, raw)
	if err != nil {
		s.logger.Error("attendance ingestion failed", zap.Int("ingested", count), zap.Error(err))
		return count, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to ingest attendances")
	}
	s.logger.Info("ingested attendances", zap.Int("count", count))
	return count, nil
}

// IngestClassifications stores raw classification rows, returning the number
// ingested.
func (s *DWService) IngestClassifications(ctx context.Context, raw []dw.Record) (int, error) {
	if len(raw) == 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "no classification rows supplied")
	}
	count, err := s.repo.IngestClassifications(ctx, raw)
	if err != nil {
		s.logger.Error("classification ingestion failed", zap.Int("ingested", count), zap.Error(err))
		return count, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to ingest classifications")
	}
	s.logger.Info("ingested classifications", zap.Int("count", count))
	return count, nil
}
