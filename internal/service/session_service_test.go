package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bdu-suport/bdu-suport-api/internal/models"
	"github.com/bdu-suport/bdu-suport-api/internal/zalo"
	appErrors "github.com/bdu-suport/bdu-suport-api/pkg/errors"
)

type mockIdentityProvider struct {
	info *zalo.UserInfoResponse
	raw  []byte
	err  error
}

func (m *mockIdentityProvider) GetUserInfo(ctx context.Context, accessToken string) (*zalo.UserInfoResponse, []byte, error) {
	return m.info, m.raw, m.err
}

type mockMiniAppUserRepo struct {
	users   map[string]models.MiniAppUser
	created []models.MiniAppUser
	findErr error
}

func (m *mockMiniAppUserRepo) FindUserByZaloID(ctx context.Context, zaloUserID string) (*models.MiniAppUser, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if user, ok := m.users[zaloUserID]; ok {
		return &user, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockMiniAppUserRepo) CreateUser(ctx context.Context, user *models.MiniAppUser) error {
	if m.users == nil {
		m.users = make(map[string]models.MiniAppUser)
	}
	m.users[user.ZaloUserID] = *user
	m.created = append(m.created, *user)
	return nil
}

type mockSessionStore struct {
	sessions map[string]models.Session
	ttls     map[string]time.Duration
	err      error
}

func (m *mockSessionStore) Save(ctx context.Context, accessToken string, session models.Session, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	if m.sessions == nil {
		m.sessions = make(map[string]models.Session)
		m.ttls = make(map[string]time.Duration)
	}
	m.sessions[accessToken] = session
	m.ttls[accessToken] = ttl
	return nil
}

func (m *mockSessionStore) Find(ctx context.Context, accessToken string) (*models.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	if session, ok := m.sessions[accessToken]; ok {
		return &session, nil
	}
	return nil, appErrors.ErrCacheMiss
}

func verifiedInfo(id, name string) *zalo.UserInfoResponse {
	info := &zalo.UserInfoResponse{ID: id, Name: name}
	info.Picture.Data.URL = "https://cdn.example.com/" + id + ".jpg"
	return info
}

func newSessionFixture(provider *mockIdentityProvider, users *mockMiniAppUserRepo, sessions *mockSessionStore, ttl time.Duration) *SessionService {
	return NewSessionService(provider, users, sessions, nil, validator.New(), zap.NewNop(), ttl)
}

func TestSessionServiceRegisterFirstLogin(t *testing.T) {
	raw := []byte(`{"error":0,"id":"z-100","name":"Bình"}`)
	provider := &mockIdentityProvider{info: verifiedInfo("z-100", "Bình"), raw: raw}
	users := &mockMiniAppUserRepo{}
	sessions := &mockSessionStore{}
	svc := newSessionFixture(provider, users, sessions, 7*24*time.Hour)

	payload, err := svc.Register(context.Background(), RegisterSessionRequest{Token: "tok-1"})
	require.NoError(t, err)
	assert.Equal(t, raw, []byte(payload))

	require.Len(t, users.created, 1)
	assert.Equal(t, "z-100", users.created[0].ZaloUserID)
	assert.Equal(t, "Bình", users.created[0].Name)
	assert.Equal(t, "https://cdn.example.com/z-100.jpg", users.created[0].AvatarURL)

	assert.Equal(t, models.Session{UserID: "z-100"}, sessions.sessions["tok-1"])
	assert.Equal(t, 7*24*time.Hour, sessions.ttls["tok-1"])
}

func TestSessionServiceRegisterReturningUser(t *testing.T) {
	provider := &mockIdentityProvider{info: verifiedInfo("z-100", "Bình Mới"), raw: []byte(`{}`)}
	users := &mockMiniAppUserRepo{users: map[string]models.MiniAppUser{
		"z-100": {ID: 1, ZaloUserID: "z-100", Name: "Bình Cũ"},
	}}
	sessions := &mockSessionStore{}
	svc := newSessionFixture(provider, users, sessions, time.Hour)

	_, err := svc.Register(context.Background(), RegisterSessionRequest{Token: "tok-2"})
	require.NoError(t, err)

	// The stored profile is kept as-is; no refresh on re-login.
	assert.Empty(t, users.created)
	assert.Equal(t, "Bình Cũ", users.users["z-100"].Name)
	assert.Contains(t, sessions.sessions, "tok-2")
}

func TestSessionServiceRegisterProviderRejects(t *testing.T) {
	provider := &mockIdentityProvider{info: &zalo.UserInfoResponse{Error: -216, Message: "invalid token"}, raw: []byte(`{"error":-216}`)}
	users := &mockMiniAppUserRepo{}
	sessions := &mockSessionStore{}
	svc := newSessionFixture(provider, users, sessions, time.Hour)

	_, err := svc.Register(context.Background(), RegisterSessionRequest{Token: "bad"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrAccountVerification))
	assert.Empty(t, users.created)
	assert.Empty(t, sessions.sessions)
}

func TestSessionServiceRegisterProviderUnreachable(t *testing.T) {
	provider := &mockIdentityProvider{err: errors.New("connection refused")}
	svc := newSessionFixture(provider, &mockMiniAppUserRepo{}, &mockSessionStore{}, time.Hour)

	_, err := svc.Register(context.Background(), RegisterSessionRequest{Token: "tok"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUpstream))
}

func TestSessionServiceRegisterMissingToken(t *testing.T) {
	svc := newSessionFixture(&mockIdentityProvider{}, &mockMiniAppUserRepo{}, &mockSessionStore{}, time.Hour)

	_, err := svc.Register(context.Background(), RegisterSessionRequest{})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestSessionServiceRegisterStoreFailure(t *testing.T) {
	provider := &mockIdentityProvider{info: verifiedInfo("z-1", "A"), raw: []byte(`{}`)}
	sessions := &mockSessionStore{err: errors.New("redis down")}
	svc := newSessionFixture(provider, &mockMiniAppUserRepo{}, sessions, time.Hour)

	_, err := svc.Register(context.Background(), RegisterSessionRequest{Token: "tok"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))
}

func TestSessionServiceValidate(t *testing.T) {
	sessions := &mockSessionStore{sessions: map[string]models.Session{"tok": {UserID: "z-1"}}}
	svc := newSessionFixture(&mockIdentityProvider{}, &mockMiniAppUserRepo{}, sessions, time.Hour)

	session, err := svc.Validate(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "z-1", session.UserID)

	_, err = svc.Validate(context.Background(), "expired")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))

	_, err = svc.Validate(context.Background(), "")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestSessionServiceDefaultTTL(t *testing.T) {
	provider := &mockIdentityProvider{info: verifiedInfo("z-1", "A"), raw: []byte(`{}`)}
	sessions := &mockSessionStore{}
	svc := newSessionFixture(provider, &mockMiniAppUserRepo{}, sessions, 0)

	_, err := svc.Register(context.Background(), RegisterSessionRequest{Token: "tok"})
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, sessions.ttls["tok"])
}
