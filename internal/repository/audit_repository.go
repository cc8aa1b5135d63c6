package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bdu-suport/bdu-suport-api/internal/models"
)

// AuditRepository persists back-office audit entries.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository creates a new instance of AuditRepository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Record appends an audit entry describing who did what to which subject.
func (r *AuditRepository) Record(ctx context.Context, accountID, action, subject string) error {
	const query = `INSERT INTO audit_logs (id, account_id, action, subject, created_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), accountID, action, subject, time.Now().UTC()); err != nil {
		return fmt.Errorf("record audit log: %w", err)
	}
	return nil
}

// ListByAccount returns the most recent entries for one account.
func (r *AuditRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	const query = `SELECT id, account_id, action, subject, created_at FROM audit_logs
		WHERE account_id = $1 ORDER BY created_at DESC LIMIT $2`
	var logs []models.AuditLog
	if err := r.db.SelectContext(ctx, &logs, query, accountID, limit); err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return logs, nil
}
