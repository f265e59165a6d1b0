package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Garage/internal/app"
	"github.com/dkeye/Garage/internal/config"
	"github.com/dkeye/Garage/internal/core"
	"github.com/dkeye/Garage/internal/metrics"
)

var ErrBackpressure = errors.New("backpressure")

var _ core.SignalConnection = (*WsConn)(nil)

// WsConn wraps one websocket with a buffered send channel so that fanout
// never blocks on a slow reader.
type WsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// PeerTable tracks live connections and implements core.Emitter over
// them. Each frame is encoded once and offered to every recipient
// independently; a full send buffer means that one peer misses the
// frame, nothing more.
type PeerTable struct {
	mu    sync.RWMutex
	conns map[core.SessionID]core.SignalConnection
}

func NewPeerTable() *PeerTable {
	return &PeerTable{conns: make(map[core.SessionID]core.SignalConnection)}
}

func (t *PeerTable) Add(sid core.SessionID, c core.SignalConnection) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.conns[sid] = c
}

func (t *PeerTable) Remove(sid core.SessionID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.conns, sid)
}

func (t *PeerTable) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.conns)
}

func (t *PeerTable) Unicast(to core.SessionID, event string, data any) {
	f, err := encodeFrame(event, data)
	if err != nil {
		return
	}
	t.mu.RLock()
	c, ok := t.conns[to]
	t.mu.RUnlock()
	if !ok {
		return
	}
	t.deliver(to, c, f)
}

func (t *PeerTable) Broadcast(event string, data any) {
	t.fanout("", event, data)
}

func (t *PeerTable) BroadcastExcept(from core.SessionID, event string, data any) {
	t.fanout(from, event, data)
}

func (t *PeerTable) fanout(skip core.SessionID, event string, data any) {
	f, err := encodeFrame(event, data)
	if err != nil {
		return
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	for sid, c := range t.conns {
		if sid == skip {
			continue
		}
		t.deliver(sid, c, f)
	}
}

func (t *PeerTable) deliver(sid core.SessionID, c core.SignalConnection, f core.Frame) {
	if err := c.TrySend(f); err != nil {
		metrics.FramesDropped.Inc()
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("frame dropped")
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SignalWSController upgrades HTTP to websocket and runs the pumps for
// each connection.
type SignalWSController struct {
	Cfg      *config.Config
	Peers    *PeerTable
	Dispatch *app.Dispatcher
	Limiter  *FrameRateLimiter
}

func NewSignalWSController(cfg *config.Config, peers *PeerTable, d *app.Dispatcher) *SignalWSController {
	return &SignalWSController{
		Cfg:      cfg,
		Peers:    peers,
		Dispatch: d,
		Limiter:  NewFrameRateLimiter(cfg.FrameLimit, cfg.FrameInterval),
	}
}

// HandleSignal accepts one connection. The id is minted here, at accept
// time, and stays stable for the connection's lifetime; the core treats
// it as opaque.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(uuid.NewString())
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("remote", c.ClientIP()).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.Cfg.ReadLimit)

	conn := &WsConn{
		conn: ws,
		send: make(chan core.Frame, ctl.Cfg.SendBuffer),
	}
	ctl.Peers.Add(sid, conn)
	metrics.ConnectionsOpen.Inc()

	ctx, cancel := context.WithCancel(ctx)
	// On shutdown the blocked ReadMessage only returns once the socket
	// dies, so tie the conn's lifetime to the context. Close is
	// idempotent; the extra call after a normal disconnect is harmless.
	context.AfterFunc(ctx, conn.Close)

	go ctl.writePump(ctx, conn)
	go func() {
		defer cancel()
		ctl.readPump(ctx, sid, conn)
		ctl.Peers.Remove(sid)
		ctl.Limiter.Forget(sid)
		ctl.Dispatch.HandleDisconnect(sid)
		metrics.ConnectionsOpen.Dec()
	}()
}
