package signal

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Garage/internal/core"
)

// stubConn is an in-memory SignalConnection for fanout tests.
type stubConn struct {
	mu     sync.Mutex
	closed bool
	full   bool
	frames []core.Frame
}

func (c *stubConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("connection closed")
	}
	if c.full {
		return ErrBackpressure
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *stubConn) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *stubConn) received() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func TestBroadcastSurvivesDeadPeer(t *testing.T) {
	table := NewPeerTable()
	alive1, alive2, dead := &stubConn{}, &stubConn{}, &stubConn{}
	dead.Close()
	table.Add("alive-1", alive1)
	table.Add("dead", dead)
	table.Add("alive-2", alive2)

	table.Broadcast("player-left", "car-x")

	assert.Equal(t, 1, alive1.received())
	assert.Equal(t, 1, alive2.received())
	assert.Equal(t, 0, dead.received())
}

func TestBroadcastSkipsOnlySaturatedPeer(t *testing.T) {
	table := NewPeerTable()
	slow, fast := &stubConn{full: true}, &stubConn{}
	table.Add("slow", slow)
	table.Add("fast", fast)

	table.Broadcast("player-appearance-update", map[string]any{"id": "car-a"})

	assert.Equal(t, 0, slow.received())
	assert.Equal(t, 1, fast.received())
}

func TestBroadcastExceptSkipsOrigin(t *testing.T) {
	table := NewPeerTable()
	origin, other := &stubConn{}, &stubConn{}
	table.Add("origin", origin)
	table.Add("other", other)

	table.BroadcastExcept("origin", "player-update", map[string]any{"id": "origin"})

	assert.Equal(t, 0, origin.received())
	assert.Equal(t, 1, other.received())
}

func TestUnicastToUnknownPeerIsNoop(t *testing.T) {
	table := NewPeerTable()
	peer := &stubConn{}
	table.Add("here", peer)

	table.Unicast("gone", "chat-message", map[string]any{"text": "hi"})

	assert.Equal(t, 0, peer.received())
}

func TestRemoveDropsPeerFromFanout(t *testing.T) {
	table := NewPeerTable()
	peer := &stubConn{}
	table.Add("p", peer)
	require.Equal(t, 1, table.Count())

	table.Remove("p")

	table.Broadcast("player-left", "p")
	assert.Equal(t, 0, table.Count())
	assert.Equal(t, 0, peer.received())
}

func TestWsConnTrySendBackpressureAndClose(t *testing.T) {
	c := &WsConn{send: make(chan core.Frame, 1)}

	require.NoError(t, c.TrySend(core.Frame(`{"type":"x"}`)))
	assert.ErrorIs(t, c.TrySend(core.Frame(`{"type":"y"}`)), ErrBackpressure)

	c.closed = true
	assert.Error(t, c.TrySend(core.Frame(`{"type":"z"}`)))
}
