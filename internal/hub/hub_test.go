package hub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)
	return h
}

func receive(t *testing.T, conn *Connection) []byte {
	t.Helper()
	select {
	case data := <-conn.Send:
		return data
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestBroadcastReachesBoundConnections(t *testing.T) {
	h := startHub(t)

	a := h.NewConnection(nil)
	b := h.NewConnection(nil)
	other := h.NewConnection(nil)
	h.Register(a)
	h.Register(b)
	h.Register(other)

	h.BindSession(a, "sess_1")
	h.BindSession(b, "sess_1")
	h.BindSession(other, "sess_2")

	require.NoError(t, h.BroadcastJSON("sess_1", map[string]string{"type": "state"}))

	assert.JSONEq(t, `{"type":"state"}`, string(receive(t, a)))
	assert.JSONEq(t, `{"type":"state"}`, string(receive(t, b)))
	select {
	case <-other.Send:
		t.Fatal("unexpected message for other session")
	case <-time.After(50 * time.Millisecond):
	}

	assert.Equal(t, 3, h.GetConnectionCount())
	assert.Equal(t, 2, h.GetSessionCount())
}

func TestRebindLeavesPreviousSession(t *testing.T) {
	h := startHub(t)

	conn := h.NewConnection(nil)
	h.Register(conn)
	h.BindSession(conn, "sess_1")
	h.BindSession(conn, "sess_2")

	assert.Equal(t, 1, h.GetSessionCount())
	assert.Equal(t, "sess_2", conn.SessionID)
}

func TestUnregisterClosesSend(t *testing.T) {
	h := startHub(t)

	conn := h.NewConnection(nil)
	h.Register(conn)
	h.BindSession(conn, "sess_1")
	h.Unregister(conn)

	_, ok := <-conn.Send
	assert.False(t, ok)
	assert.Equal(t, 0, h.GetSessionCount())
	assert.Equal(t, 0, h.GetConnectionCount())
}

func TestSendToConnectionBufferFull(t *testing.T) {
	h := NewHub()
	conn := h.NewConnection(nil)

	for i := 0; i < cap(conn.Send); i++ {
		require.NoError(t, h.SendToConnection(conn, []byte("x")))
	}
	assert.ErrorIs(t, h.SendToConnection(conn, []byte("x")), ErrBufferFull)
}
