package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bdu-suport/bdu-suport-api/internal/models"
)

// MiniAppRepository provides database access for mini-app users and their
// in-app notifications.
type MiniAppRepository struct {
	db *sqlx.DB
}

// NewMiniAppRepository creates a new instance of MiniAppRepository.
func NewMiniAppRepository(db *sqlx.DB) *MiniAppRepository {
	return &MiniAppRepository{db: db}
}

// FindUserByZaloID returns the mini-app user with the given external id.
func (r *MiniAppRepository) FindUserByZaloID(ctx context.Context, zaloUserID string) (*models.MiniAppUser, error) {
	const query = `SELECT id, zalo_user_id, name, avatar_url, created_at FROM mini_app_users WHERE zalo_user_id = $1 LIMIT 1`
	var user models.MiniAppUser
	if err := r.db.GetContext(ctx, &user, query, zaloUserID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find mini app user by zalo id: %w", err)
	}
	return &user, nil
}

// FindUserByID returns the mini-app user by internal id.
func (r *MiniAppRepository) FindUserByID(ctx context.Context, id int64) (*models.MiniAppUser, error) {
	const query = `SELECT id, zalo_user_id, name, avatar_url, created_at FROM mini_app_users WHERE id = $1 LIMIT 1`
	var user models.MiniAppUser
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find mini app user by id: %w", err)
	}
	return &user, nil
}

// CreateUser inserts a mini-app user. The unique constraint on zalo_user_id
// makes concurrent first logins safe; ON CONFLICT keeps the existing profile.
func (r *MiniAppRepository) CreateUser(ctx context.Context, user *models.MiniAppUser) error {
	const query = `INSERT INTO mini_app_users (zalo_user_id, name, avatar_url, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (zalo_user_id) DO NOTHING`
	user.CreatedAt = time.Now().UTC()
	if _, err := r.db.ExecContext(ctx, query, user.ZaloUserID, user.Name, user.AvatarURL, user.CreatedAt); err != nil {
		return fmt.Errorf("create mini app user: %w", err)
	}
	return nil
}

// CreateNotification persists an immutable in-app notification.
func (r *MiniAppRepository) CreateNotification(ctx context.Context, notification *models.MiniappNotification) error {
	const query = `INSERT INTO miniapp_notifications (id, user_id, content, created_at) VALUES ($1, $2, $3, $4)`
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	notification.CreatedAt = time.Now().UTC()
	if _, err := r.db.ExecContext(ctx, query, notification.ID, notification.UserID, notification.Content, notification.CreatedAt); err != nil {
		return fmt.Errorf("create miniapp notification: %w", err)
	}
	return nil
}
