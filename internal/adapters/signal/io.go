package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Garage/internal/app"
	"github.com/dkeye/Garage/internal/core"
	"github.com/dkeye/Garage/internal/domain"
	"github.com/dkeye/Garage/internal/metrics"
)

// envelope frames every event in both directions.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func encodeFrame(event string, data any) (core.Frame, error) {
	b, err := json.Marshal(struct {
		Type string `json:"type"`
		Data any    `json:"data"`
	}{Type: event, Data: data})
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("type", event).Msg("encode frame")
		return nil, err
	}
	return core.Frame(b), nil
}

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsConn) {
	ping := time.NewTicker(ctl.Cfg.PingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, sid core.SessionID, c *WsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("connection gone")
				return
			}
			if !ctl.Limiter.Allow(sid) {
				log.Debug().Str("module", "signal").Str("sid", string(sid)).Msg("frame rate limited")
				continue
			}
			ctl.handleFrame(sid, data)
		}
	}
}

func (ctl *SignalWSController) handleFrame(sid core.SessionID, data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad json")
		return
	}
	metrics.Events.WithLabelValues(env.Type).Inc()

	switch env.Type {
	case app.EvtJoin:
		ctl.handleJoin(sid, env.Data)
	case app.EvtUpdateState:
		ctl.handleUpdateState(sid, env.Data)
	case app.EvtUpdateAppearance:
		ctl.handleUpdateAppearance(sid, env.Data)
	case app.EvtUpdateName:
		ctl.handleUpdateName(sid, env.Data)
	case app.EvtChatMessage:
		ctl.handleChat(sid, env.Data)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown event")
	}
}

func (ctl *SignalWSController) handleJoin(sid core.SessionID, data []byte) {
	var p domain.JoinProfile
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad join payload")
		return
	}
	ctl.Dispatch.HandleJoin(sid, p)
	metrics.SessionsJoined.Inc()
}

func (ctl *SignalWSController) handleUpdateState(sid core.SessionID, data []byte) {
	var st domain.PhysicsState
	if err := json.Unmarshal(data, &st); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad state payload")
		return
	}
	ctl.Dispatch.HandleStateUpdate(sid, st)
}

func (ctl *SignalWSController) handleUpdateAppearance(sid core.SessionID, data []byte) {
	var a domain.Appearance
	if err := json.Unmarshal(data, &a); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad appearance payload")
		return
	}
	ctl.Dispatch.HandleAppearanceUpdate(sid, a)
}

func (ctl *SignalWSController) handleUpdateName(sid core.SessionID, data []byte) {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad name payload")
		return
	}
	ctl.Dispatch.HandleNameUpdate(sid, name)
}

func (ctl *SignalWSController) handleChat(sid core.SessionID, data []byte) {
	intent, err := domain.DecodeChatIntent(data)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad chat payload")
		return
	}
	ctl.Dispatch.HandleChat(sid, intent)
}
