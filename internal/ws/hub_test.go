package ws

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"saas-commerce/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	closed   bool
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, data)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

func TestHub_BroadcastIsTenantScoped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(zap.NewNop())
	go hub.Run(ctx)

	tenantA, tenantB := uuid.New(), uuid.New()
	a, b := &fakeConn{}, &fakeConn{}
	require.True(t, hub.Join(Client{Conn: a, TenantID: tenantA}))
	require.True(t, hub.Join(Client{Conn: b, TenantID: tenantB}))
	assert.Equal(t, 1, hub.Connections(tenantA))

	hub.Publish(ctx, model.Event{Type: model.EventSalePaid, TenantID: tenantA, EntityID: uuid.New()})

	require.Eventually(t, func() bool { return a.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, b.count())

	var got model.Event
	a.mu.Lock()
	require.NoError(t, json.Unmarshal(a.messages[0], &got))
	a.mu.Unlock()
	assert.Equal(t, model.EventSalePaid, got.Type)
	assert.Equal(t, tenantA, got.TenantID)

	hub.Leave(a)
	require.Eventually(t, func() bool { return hub.Connections(tenantA) == 0 }, time.Second, 5*time.Millisecond)
	a.mu.Lock()
	assert.True(t, a.closed)
	a.mu.Unlock()
}

func TestHub_ShutdownReleasesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(zap.NewNop())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	tenant := uuid.New()
	a := &fakeConn{}
	require.True(t, hub.Join(Client{Conn: a, TenantID: tenant}))

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	a.mu.Lock()
	assert.True(t, a.closed)
	a.mu.Unlock()

	left := make(chan struct{})
	go func() {
		hub.Leave(a)
		close(left)
	}()
	select {
	case <-left:
	case <-time.After(time.Second):
		t.Fatal("Leave blocked after shutdown")
	}

	late := &fakeConn{}
	assert.False(t, hub.Join(Client{Conn: late, TenantID: tenant}))
	late.mu.Lock()
	assert.True(t, late.closed)
	late.mu.Unlock()
	assert.Equal(t, 0, hub.Connections(tenant))
}
