package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contracting/internal/gateway"
)

type memoryCache struct {
	mu       sync.Mutex
	sessions map[string]Session
	gets     int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{sessions: make(map[string]Session)}
}

func (c *memoryCache) Get(_ context.Context, id string) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[id]
	if !ok {
		return nil, ErrCacheMiss
	}
	c.gets++
	return &s, nil
}

func (c *memoryCache) Set(_ context.Context, s *Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *s
	cp.AccessToken = ""
	c.sessions[s.ID] = cp
	return nil
}

func (c *memoryCache) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, id)
	return nil
}

// unreachableDeleteCache serves reads and writes but cannot delete.
type unreachableDeleteCache struct {
	*memoryCache
}

func (unreachableDeleteCache) Delete(context.Context, string) error {
	return errors.New("redis: connection refused")
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newProvider(t *testing.T, opts ...Option) (*Provider, *gateway.Memory, *clock) {
	t.Helper()
	gw := gateway.NewMemory()
	clk := &clock{t: time.Now().UTC()}
	opts = append([]Option{WithClock(clk.now)}, opts...)
	p := NewProvider(gw, "test-secret", time.Hour, opts...)
	_, err := p.CreateUser(context.Background(), "Admin@Example.com", "correct horse")
	require.NoError(t, err)
	return p, gw, clk
}

func TestSignInAndResolveSession(t *testing.T) {
	ctx := context.Background()
	p, _, _ := newProvider(t)

	s, err := p.SignIn(ctx, "admin@example.com", "correct horse")
	require.NoError(t, err)
	require.NotEmpty(t, s.AccessToken)
	assert.Equal(t, "admin@example.com", s.User.Email)
	require.NotNil(t, s.User.LastLogin)

	got, err := p.GetSession(ctx, s.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, s.User.ID, got.User.ID)
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	p, _, _ := newProvider(t)

	_, err := p.SignIn(ctx, "admin@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = p.SignIn(ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetSessionRejectsForgedAndExpiredTokens(t *testing.T) {
	ctx := context.Background()
	p, _, clk := newProvider(t)

	_, err := p.GetSession(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	s, err := p.SignIn(ctx, "admin@example.com", "correct horse")
	require.NoError(t, err)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		SessionID:        s.ID,
		RegisteredClaims: jwt.RegisteredClaims{Subject: s.User.ID, ExpiresAt: jwt.NewNumericDate(s.ExpiresAt)},
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = p.GetSession(ctx, forged)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	clk.t = clk.t.Add(2 * time.Hour)
	_, err = p.GetSession(ctx, s.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSignOutRevokesAndNotifies(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryCache()
	p, _, _ := newProvider(t, WithCache(cache))

	var events []Event
	unsubscribe := p.OnAuthStateChange(func(e Event, _ *Session) { events = append(events, e) })

	s, err := p.SignIn(ctx, "admin@example.com", "correct horse")
	require.NoError(t, err)
	_, err = p.GetSession(ctx, s.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.gets)

	require.NoError(t, p.SignOut(ctx, s.AccessToken))
	_, err = p.GetSession(ctx, s.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, []Event{EventSignedIn, EventSignedOut}, events)

	unsubscribe()
	_, err = p.SignIn(ctx, "admin@example.com", "correct horse")
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestSignOutHoldsWhenCacheDeleteFails(t *testing.T) {
	ctx := context.Background()
	cache := unreachableDeleteCache{newMemoryCache()}
	p, _, _ := newProvider(t, WithCache(cache))

	s, err := p.SignIn(ctx, "admin@example.com", "correct horse")
	require.NoError(t, err)
	_, err = p.GetSession(ctx, s.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.gets)

	require.NoError(t, p.SignOut(ctx, s.AccessToken))
	_, err = p.GetSession(ctx, s.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSignedOutSessionIsNotCachedAgain(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryCache()
	p, _, _ := newProvider(t, WithCache(cache))

	s, err := p.SignIn(ctx, "admin@example.com", "correct horse")
	require.NoError(t, err)
	require.NoError(t, p.SignOut(ctx, s.AccessToken))

	// a lookup that read the row before the revoke and writes it back late
	p.cachePut(ctx, s)
	_, err = cache.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrCacheMiss)

	_, err = p.GetSession(ctx, s.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestPurgeExpiredForgetsRevokedSessions(t *testing.T) {
	ctx := context.Background()
	p, _, clk := newProvider(t)

	s, err := p.SignIn(ctx, "admin@example.com", "correct horse")
	require.NoError(t, err)
	require.NoError(t, p.SignOut(ctx, s.AccessToken))
	assert.True(t, p.isRevoked(s.ID))

	clk.t = clk.t.Add(2 * time.Hour)
	_, err = p.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.False(t, p.isRevoked(s.ID))
}

func TestSessionContext(t *testing.T) {
	p, _, _ := newProvider(t)
	ctx := context.Background()

	assert.Nil(t, p.GetUser(ctx))
	assert.Empty(t, UserIDFromContext(ctx))

	s, err := p.SignIn(ctx, "admin@example.com", "correct horse")
	require.NoError(t, err)
	ctx = WithSession(ctx, s)

	u := p.GetUser(ctx)
	require.NotNil(t, u)
	assert.Equal(t, s.User.ID, u.ID)
	assert.Equal(t, s.User.ID, UserIDFromContext(ctx))
}

func TestEnsureUserIsIdempotent(t *testing.T) {
	ctx := context.Background()
	p, gw, _ := newProvider(t)

	require.NoError(t, p.EnsureUser(ctx, "admin@example.com", "another password"))
	require.NoError(t, p.EnsureUser(ctx, "", ""))

	rows, err := gw.Select(ctx, gateway.TableUsers, gateway.Query{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = p.CreateUser(ctx, "ADMIN@example.com", "whatever-long")
	assert.ErrorIs(t, err, ErrUserExists)
	_, err = p.CreateUser(ctx, "second@example.com", "short")
	assert.Error(t, err)
}

func TestPurgeExpired(t *testing.T) {
	ctx := context.Background()
	p, gw, clk := newProvider(t)

	_, err := p.SignIn(ctx, "admin@example.com", "correct horse")
	require.NoError(t, err)
	clk.t = clk.t.Add(30 * time.Minute)
	_, err = p.SignIn(ctx, "admin@example.com", "correct horse")
	require.NoError(t, err)

	clk.t = clk.t.Add(45 * time.Minute)
	purged, err := p.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	rows, err := gw.Select(ctx, gateway.TableAuthSessions, gateway.Query{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
