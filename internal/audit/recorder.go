// Package audit appends CREATE/UPDATE/DELETE entries to audit_logs without
// ever holding up or failing the mutation being recorded.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"contracting/internal/auth"
	"contracting/internal/domain"
	"contracting/internal/gateway"
)

const (
	defaultQueueSize    = 256
	defaultWriteTimeout = 5 * time.Second
)

type entry struct {
	userID     string
	action     domain.AuditAction
	entityType domain.EntityType
	entityID   string
	details    any
}

// Recorder queues entries for a single background writer. Record returns
// immediately; a full queue drops the entry with a warning.
type Recorder struct {
	gw      gateway.Gateway
	logger  zerolog.Logger
	timeout time.Duration

	queue     chan entry
	done      chan struct{}
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

type Option func(*Recorder)

func WithLogger(l zerolog.Logger) Option {
	return func(r *Recorder) { r.logger = l }
}

func WithQueueSize(n int) Option {
	return func(r *Recorder) {
		if n > 0 {
			r.queue = make(chan entry, n)
		}
	}
}

func WithWriteTimeout(d time.Duration) Option {
	return func(r *Recorder) { r.timeout = d }
}

func NewRecorder(gw gateway.Gateway, opts ...Option) *Recorder {
	r := &Recorder{
		gw:      gw,
		logger:  log.Logger,
		timeout: defaultWriteTimeout,
		queue:   make(chan entry, defaultQueueSize),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	go r.run()
	return r
}

// Record stamps the entry with the session user from ctx. Without a session
// it does nothing.
func (r *Recorder) Record(ctx context.Context, action domain.AuditAction, entityType domain.EntityType, entityID string, details any) {
	userID := auth.UserIDFromContext(ctx)
	if userID == "" {
		return
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.logger.Warn().
			Str("action", string(action)).
			Str("entity_type", string(entityType)).
			Str("entity_id", entityID).
			Msg("audit recorder closed, entry dropped")
		return
	}
	select {
	case r.queue <- entry{userID: userID, action: action, entityType: entityType, entityID: entityID, details: details}:
	default:
		r.logger.Warn().
			Str("action", string(action)).
			Str("entity_type", string(entityType)).
			Str("entity_id", entityID).
			Msg("audit queue full, entry dropped")
	}
}

// Close stops accepting entries and waits for queued ones to be written or
// for ctx to end.
func (r *Recorder) Close(ctx context.Context) error {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		close(r.queue)
		r.mu.Unlock()
	})
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) run() {
	defer close(r.done)
	for e := range r.queue {
		r.write(e)
	}
}

func (r *Recorder) write(e entry) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			r.logger.Error().Interface("panic", p).Str("entity_id", e.entityID).Msg("audit write panicked")
		}
	}()

	_, err := r.gw.Insert(ctx, gateway.TableAuditLogs, gateway.Row{
		"user_id":     e.userID,
		"action":      string(e.action),
		"entity_type": string(e.entityType),
		"entity_id":   e.entityID,
		"details":     e.details,
	})
	if err != nil {
		r.logger.Warn().
			Err(err).
			Str("action", string(e.action)).
			Str("entity_type", string(e.entityType)).
			Str("entity_id", e.entityID).
			Msg("failed to write audit log")
	}
}
