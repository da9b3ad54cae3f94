// Package auth signs users in with email and password and resolves bearer
// tokens back to sessions. Sessions live in the auth_sessions table and can be
// fronted by a cache.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"contracting/internal/domain"
	"contracting/internal/gateway"
)

type Provider struct {
	gw     gateway.Gateway
	secret []byte
	ttl    time.Duration
	cache  Cache
	logger zerolog.Logger
	now    func() time.Time

	mu        sync.RWMutex
	listeners map[int]Listener
	nextID    int

	// revoked holds sessions signed out through this provider until their
	// expiry, so a cache that missed the delete cannot revive them.
	revokedMu sync.Mutex
	revoked   map[string]time.Time
}

type Option func(*Provider)

func WithCache(c Cache) Option {
	return func(p *Provider) { p.cache = c }
}

func WithLogger(l zerolog.Logger) Option {
	return func(p *Provider) { p.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

func NewProvider(gw gateway.Gateway, secret string, ttl time.Duration, opts ...Option) *Provider {
	p := &Provider{
		gw:        gw,
		secret:    []byte(secret),
		ttl:       ttl,
		logger:    log.Logger,
		now:       time.Now,
		listeners: make(map[int]Listener),
		revoked:   make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	row, err := p.findUser(ctx, gateway.Eq("email", email))
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(row.String("password_hash")), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := p.now().UTC()
	expires := now.Add(p.ttl)
	stored, err := p.gw.Insert(ctx, gateway.TableAuthSessions, gateway.Row{
		"user_id":    row.String("id"),
		"expires_at": expires,
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if err := p.gw.Update(ctx, gateway.TableUsers, row.String("id"), gateway.Row{"last_sign_in_at": now}); err != nil {
		p.logger.Warn().Err(err).Str("user_id", row.String("id")).Msg("failed to stamp last sign-in")
	}

	session := &Session{
		ID:        stored.String("id"),
		ExpiresAt: expires,
		User:      decodeUser(row),
	}
	session.User.LastLogin = &now
	token, err := p.sign(session, now)
	if err != nil {
		return nil, err
	}
	session.AccessToken = token

	p.cachePut(ctx, session)
	p.notify(EventSignedIn, session)
	return session, nil
}

// GetSession resolves a bearer token. Expired, revoked or unknown sessions
// yield ErrUnauthenticated.
func (p *Provider) GetSession(ctx context.Context, token string) (*Session, error) {
	c, err := p.parse(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	if p.isRevoked(c.SessionID) {
		return nil, ErrUnauthenticated
	}

	if p.cache != nil {
		cached, err := p.cache.Get(ctx, c.SessionID)
		switch {
		case err == nil && cached.ExpiresAt.After(p.now()):
			cached.AccessToken = token
			return cached, nil
		case err != nil && !errors.Is(err, ErrCacheMiss):
			p.logger.Warn().Err(err).Msg("session cache read failed")
		}
	}

	rows, err := p.gw.Select(ctx, gateway.TableAuthSessions, gateway.Query{
		Filters: []gateway.Filter{gateway.Eq("id", c.SessionID)},
		Limit:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrUnauthenticated
	}
	row := rows[0]
	if row.TimePtr("revoked_at") != nil || !row.Time("expires_at").After(p.now()) {
		return nil, ErrUnauthenticated
	}
	if row.String("user_id") != c.Subject {
		return nil, ErrUnauthenticated
	}

	user, err := p.findUser(ctx, gateway.Eq("id", c.Subject))
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	session := &Session{
		ID:          c.SessionID,
		AccessToken: token,
		ExpiresAt:   row.Time("expires_at"),
		User:        decodeUser(user),
	}
	p.cachePut(ctx, session)
	return session, nil
}

// GetUser returns the user of the session carried by ctx, or nil.
func (p *Provider) GetUser(ctx context.Context) *domain.User {
	s, ok := SessionFromContext(ctx)
	if !ok {
		return nil
	}
	u := s.User
	return &u
}

// SignOut revokes the session behind token. The row is revoked before the
// cache entry is dropped; a failed cache delete leaves the session revoked
// in process.
func (p *Provider) SignOut(ctx context.Context, token string) error {
	c, err := p.parse(token)
	if err != nil {
		return ErrUnauthenticated
	}
	err = p.gw.Update(ctx, gateway.TableAuthSessions, c.SessionID, gateway.Row{"revoked_at": p.now().UTC()})
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return ErrUnauthenticated
		}
		return fmt.Errorf("revoke session: %w", err)
	}

	expires := p.now().Add(p.ttl)
	if c.ExpiresAt != nil {
		expires = c.ExpiresAt.Time
	}
	p.markRevoked(c.SessionID, expires)
	if p.cache != nil {
		if err := p.cache.Delete(ctx, c.SessionID); err != nil {
			p.logger.Warn().Err(err).Str("session_id", c.SessionID).Msg("session cache delete failed")
		}
	}
	p.notify(EventSignedOut, &Session{ID: c.SessionID, User: domain.User{ID: c.Subject}})
	return nil
}

// OnAuthStateChange registers fn and returns a function that removes it.
func (p *Provider) OnAuthStateChange(fn Listener) (unsubscribe func()) {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	p.mu.Unlock()
	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

func (p *Provider) CreateUser(ctx context.Context, email, password string) (domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, fmt.Errorf("a valid email is required")
	}
	if len(password) < 8 {
		return domain.User{}, fmt.Errorf("password must be at least 8 characters")
	}
	if _, err := p.findUser(ctx, gateway.Eq("email", email)); err == nil {
		return domain.User{}, ErrUserExists
	} else if !errors.Is(err, gateway.ErrNotFound) {
		return domain.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	row, err := p.gw.Insert(ctx, gateway.TableUsers, gateway.Row{
		"email":         email,
		"password_hash": string(hash),
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return decodeUser(row), nil
}

// EnsureUser creates the bootstrap account unless it already exists.
func (p *Provider) EnsureUser(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil
	}
	_, err := p.CreateUser(ctx, email, password)
	if errors.Is(err, ErrUserExists) {
		return nil
	}
	return err
}

// PurgeExpired deletes sessions past their expiry and returns how many went.
func (p *Provider) PurgeExpired(ctx context.Context) (int, error) {
	rows, err := p.gw.Select(ctx, gateway.TableAuthSessions, gateway.Query{
		Filters: []gateway.Filter{gateway.Lt("expires_at", p.now().UTC())},
	})
	if err != nil {
		return 0, fmt.Errorf("list expired sessions: %w", err)
	}
	purged := 0
	for _, row := range rows {
		id := row.String("id")
		if err := p.gw.Delete(ctx, gateway.TableAuthSessions, id); err != nil && !errors.Is(err, gateway.ErrNotFound) {
			return purged, fmt.Errorf("delete session %s: %w", id, err)
		}
		if p.cache != nil {
			_ = p.cache.Delete(ctx, id)
		}
		purged++
	}
	p.pruneRevoked()
	return purged, nil
}

func (p *Provider) markRevoked(sessionID string, expires time.Time) {
	p.revokedMu.Lock()
	defer p.revokedMu.Unlock()
	p.revoked[sessionID] = expires
}

func (p *Provider) isRevoked(sessionID string) bool {
	p.revokedMu.Lock()
	defer p.revokedMu.Unlock()
	_, ok := p.revoked[sessionID]
	return ok
}

func (p *Provider) pruneRevoked() {
	now := p.now()
	p.revokedMu.Lock()
	defer p.revokedMu.Unlock()
	for id, expires := range p.revoked {
		if !expires.After(now) {
			delete(p.revoked, id)
		}
	}
}

func (p *Provider) sign(s *Session, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		SessionID: s.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.User.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	})
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func (p *Provider) parse(token string) (*claims, error) {
	c := &claims{}
	_, err := jwt.ParseWithClaims(token, c, func(*jwt.Token) (any, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(p.now))
	if err != nil {
		return nil, err
	}
	if c.SessionID == "" || c.Subject == "" {
		return nil, errors.New("token without session")
	}
	return c, nil
}

func (p *Provider) findUser(ctx context.Context, filter gateway.Filter) (gateway.Row, error) {
	rows, err := p.gw.Select(ctx, gateway.TableUsers, gateway.Query{
		Filters: []gateway.Filter{filter},
		Limit:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if len(rows) == 0 {
		return nil, gateway.ErrNotFound
	}
	return rows[0], nil
}

func (p *Provider) cachePut(ctx context.Context, s *Session) {
	if p.cache == nil || p.isRevoked(s.ID) {
		return
	}
	if err := p.cache.Set(ctx, s); err != nil {
		p.logger.Warn().Err(err).Msg("session cache write failed")
	}
}

func (p *Provider) notify(event Event, s *Session) {
	p.mu.RLock()
	listeners := make([]Listener, 0, len(p.listeners))
	for _, fn := range p.listeners {
		listeners = append(listeners, fn)
	}
	p.mu.RUnlock()
	for _, fn := range listeners {
		fn(event, s)
	}
}

func decodeUser(row gateway.Row) domain.User {
	return domain.User{
		ID:        row.String("id"),
		Email:     row.String("email"),
		CreatedAt: row.Time("created_at"),
		LastLogin: row.TimePtr("last_sign_in_at"),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
