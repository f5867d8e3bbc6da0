package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/prospeto-crm/prospeto-crm/internal/shared"
)

type stubRepo struct {
	users    map[string]*User
	sessions map[string]int64
}

func (r *stubRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func (r *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	if r.sessions == nil {
		r.sessions = make(map[string]int64)
	}
	r.sessions[id] = userID
	return nil
}

func (r *stubRepo) DeleteSession(ctx context.Context, id string) error {
	delete(r.sessions, id)
	return nil
}

func TestAuthenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("senha-forte"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &stubRepo{users: map[string]*User{
		"ana@exemplo.com":     {ID: 1, Email: "ana@exemplo.com", PasswordHash: string(hash), IsActive: true},
		"inativo@exemplo.com": {ID: 2, Email: "inativo@exemplo.com", PasswordHash: string(hash), IsActive: false},
	}}
	svc := NewService(repo)

	t.Run("valid credentials", func(t *testing.T) {
		user, err := svc.Authenticate(context.Background(), "ana@exemplo.com", "senha-forte")
		require.NoError(t, err)
		assert.Equal(t, int64(1), user.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), "ana@exemplo.com", "errada")
		assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), "ninguem@exemplo.com", "senha-forte")
		assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	})

	t.Run("inactive account", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), "inativo@exemplo.com", "senha-forte")
		assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	})
}

func TestSessionLifecycle(t *testing.T) {
	repo := &stubRepo{users: map[string]*User{}}
	svc := NewService(repo)

	require.NoError(t, svc.RegisterSession(context.Background(), "sess-1", 7, time.Now().Add(time.Hour), "10.0.0.1", "test-agent"))
	assert.Equal(t, int64(7), repo.sessions["sess-1"])

	require.NoError(t, svc.RemoveSession(context.Background(), "sess-1"))
	_, ok := repo.sessions["sess-1"]
	assert.False(t, ok)
}
