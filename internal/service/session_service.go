package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bdu-suport/bdu-suport-api/internal/models"
	"github.com/bdu-suport/bdu-suport-api/internal/zalo"
	appErrors "github.com/bdu-suport/bdu-suport-api/pkg/errors"
)

type identityProvider interface {
	GetUserInfo(ctx context.Context, accessToken string) (*zalo.UserInfoResponse, []byte, error)
}

type miniAppUserRepository interface {
	FindUserByZaloID(ctx context.Context, zaloUserID string) (*models.MiniAppUser, error)
	CreateUser(ctx context.Context, user *models.MiniAppUser) error
}

type sessionStore interface {
	Save(ctx context.Context, accessToken string, session models.Session, ttl time.Duration) error
	Find(ctx context.Context, accessToken string) (*models.Session, error)
}

// SessionService exchanges a Zalo access token for a local session. The user
// upsert is idempotent per Zalo id: a returning user keeps the stored
// name/avatar even when the provider reports fresher values.
type SessionService struct {
	provider  identityProvider
	users     miniAppUserRepository
	sessions  sessionStore
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	ttl       time.Duration
}

// NewSessionService constructs the service.
func NewSessionService(
	provider identityProvider,
	users miniAppUserRepository,
	sessions sessionStore,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	ttl time.Duration,
) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &SessionService{
		provider:  provider,
		users:     users,
		sessions:  sessions,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		ttl:       ttl,
	}
}

// RegisterSessionRequest is the mini-app session payload.
type RegisterSessionRequest struct {
	Token string `json:"token" validate:"required"`
}

// Register verifies the access token with the identity provider, upserts the
// mini-app user and issues a cached session keyed by the literal token. The
// raw provider payload is returned to the caller.
func (s *SessionService) Register(ctx context.Context, req RegisterSessionRequest) (json.RawMessage, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}

	info, raw, err := s.provider.GetUserInfo(ctx, req.Token)
	if err != nil {
		s.metrics.RecordSession(false)
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to verify account with identity provider")
	}

	if info.Error != 0 {
		s.logger.Warn("identity provider rejected token", zap.Int("provider_error", info.Error))
		s.metrics.RecordSession(false)
		return nil, appErrors.Clone(appErrors.ErrAccountVerification, "")
	}

	if err := s.ensureUser(ctx, info); err != nil {
		s.metrics.RecordSession(false)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register mini app user")
	}

	if err := s.sessions.Save(ctx, req.Token, models.Session{UserID: info.ID}, s.ttl); err != nil {
		s.metrics.RecordSession(false)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store session")
	}

	s.metrics.RecordSession(true)
	return raw, nil
}

// Validate returns the session stored for the access token. A missing or
// expired session is UNAUTHORIZED; the mini app re-registers on that answer.
func (s *SessionService) Validate(ctx context.Context, accessToken string) (*models.Session, error) {
	if accessToken == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "")
	}
	session, err := s.sessions.Find(ctx, accessToken)
	if err != nil {
		if appErrors.Is(err, appErrors.ErrCacheMiss) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session expired")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

func (s *SessionService) ensureUser(ctx context.Context, info *zalo.UserInfoResponse) error {
	_, err := s.users.FindUserByZaloID(ctx, info.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	s.logger.Info("creating mini app user on first login", zap.String("zalo_user_id", info.ID))
	return s.users.CreateUser(ctx, &models.MiniAppUser{
		ZaloUserID: info.ID,
		Name:       info.Name,
		AvatarURL:  info.AvatarURL(),
	})
}
