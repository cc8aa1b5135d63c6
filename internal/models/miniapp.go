package models

import "time"

// MiniAppUser is the local record for a Zalo mini-app user. At most one row
// exists per Zalo user id; creation is lookup-or-create.
type MiniAppUser struct {
	ID         int64     `db:"id" json:"id"`
	ZaloUserID string    `db:"zalo_user_id" json:"zalo_user_id"`
	Name       string    `db:"name" json:"name"`
	AvatarURL  string    `db:"avatar_url" json:"avatar_url"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// MiniappNotification is an immutable in-app notification for one recipient.
type MiniappNotification struct {
	ID        string    `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Session is the cache-resident mini-app session value, keyed by the literal
// access token.
type Session struct {
	UserID string `json:"user_id"`
}
