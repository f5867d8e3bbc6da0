package shared_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prospeto-crm/prospeto-crm/internal/shared"
)

func newManager(t *testing.T) *shared.SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
}

func sessionCookie(t *testing.T, res *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range res.Result().Cookies() {
		if c.Name == "test_session" {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestSessionRoundTrip(t *testing.T) {
	sm := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.SetUser(42)
	sess.Set("theme", "ocean")

	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, req, sess))
	cookie := sessionCookie(t, res)
	require.NotEmpty(t, cookie.Value)

	second := httptest.NewRequest(http.MethodGet, "/", nil)
	second.AddCookie(cookie)
	loaded, err := sm.Load(ctx, second)
	require.NoError(t, err)

	assert.Equal(t, int64(42), loaded.UserID())
	assert.Equal(t, "ocean", loaded.Get("theme"))
}

func TestSessionDestroy(t *testing.T) {
	sm := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.SetUser(7)

	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, req, sess))
	cookie := sessionCookie(t, res)

	sm.Destroy(sess)
	res2 := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res2, req, sess))
	expired := sessionCookie(t, res2)
	assert.Equal(t, -1, expired.MaxAge)

	// the stored payload is gone; a reload starts anonymous
	reload := httptest.NewRequest(http.MethodGet, "/", nil)
	reload.AddCookie(cookie)
	loaded, err := sm.Load(ctx, reload)
	require.NoError(t, err)
	assert.Zero(t, loaded.UserID())
}

func TestSessionUnknownCookieStartsFresh(t *testing.T) {
	sm := newManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "test_session", Value: "desconhecida"})
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	assert.Zero(t, sess.UserID())
}
