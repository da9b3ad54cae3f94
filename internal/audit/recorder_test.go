package audit

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contracting/internal/auth"
	"contracting/internal/domain"
	"contracting/internal/gateway"
)

func signedIn(userID string) context.Context {
	return auth.WithSession(context.Background(), &auth.Session{ID: "s1", User: domain.User{ID: userID}})
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRecordWritesEntry(t *testing.T) {
	gw := gateway.NewMemory(gateway.TableAuditLogs)
	r := NewRecorder(gw)

	r.Record(signedIn("u1"), domain.ActionCreate, domain.EntityContract, "c1", map[string]any{"contract_number": "C-1"})
	require.NoError(t, r.Close(context.Background()))

	rows, err := gw.Select(context.Background(), gateway.TableAuditLogs, gateway.Query{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "u1", rows[0].String("user_id"))
	assert.Equal(t, "CREATE", rows[0].String("action"))
	assert.Equal(t, "CONTRACT", rows[0].String("entity_type"))
	assert.Equal(t, "c1", rows[0].String("entity_id"))
	assert.Equal(t, map[string]any{"contract_number": "C-1"}, rows[0].Value("details"))
}

func TestRecordWithoutSessionIsNoop(t *testing.T) {
	gw := gateway.NewMemory(gateway.TableAuditLogs)
	r := NewRecorder(gw)

	r.Record(context.Background(), domain.ActionDelete, domain.EntityPayment, "p1", nil)
	require.NoError(t, r.Close(context.Background()))

	rows, err := gw.Select(context.Background(), gateway.TableAuditLogs, gateway.Query{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestWriteFailureIsLoggedNotReturned(t *testing.T) {
	var out syncBuffer
	gw := gateway.NewMemory()
	gw.Drop(gateway.TableAuditLogs)
	r := NewRecorder(gw, WithLogger(zerolog.New(&out)))

	assert.NotPanics(t, func() {
		r.Record(signedIn("u1"), domain.ActionUpdate, domain.EntitySupplier, "s1", nil)
	})
	require.NoError(t, r.Close(context.Background()))
	assert.Contains(t, out.String(), "failed to write audit log")
	assert.Contains(t, out.String(), `"entity_id":"s1"`)
}

type blockingGateway struct {
	gateway.Gateway
	release chan struct{}
}

func (b *blockingGateway) Insert(ctx context.Context, table string, row gateway.Row) (gateway.Row, error) {
	select {
	case <-b.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return nil, errors.New("unused")
}

func TestRecordNeverBlocks(t *testing.T) {
	var out syncBuffer
	gw := &blockingGateway{Gateway: gateway.NewMemory(), release: make(chan struct{})}
	r := NewRecorder(gw, WithQueueSize(1), WithLogger(zerolog.New(&out)))

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			r.Record(signedIn("u1"), domain.ActionCreate, domain.EntityDelivery, "d", nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Record blocked on a stalled writer")
	}
	assert.Contains(t, out.String(), "audit queue full")

	close(gw.release)
	require.NoError(t, r.Close(context.Background()))
}

func TestRecordAfterCloseIsDropped(t *testing.T) {
	gw := gateway.NewMemory(gateway.TableAuditLogs)
	r := NewRecorder(gw)
	require.NoError(t, r.Close(context.Background()))
	require.NoError(t, r.Close(context.Background()))

	assert.NotPanics(t, func() {
		r.Record(signedIn("u1"), domain.ActionCreate, domain.EntityAttachment, "a1", nil)
	})
}
