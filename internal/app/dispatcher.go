package app

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Garage/internal/core"
	"github.com/dkeye/Garage/internal/domain"
)

// Event names on the wire, both directions.
const (
	EvtJoin             = "join"
	EvtUpdateState      = "update-state"
	EvtUpdateAppearance = "update-appearance"
	EvtUpdateName       = "update-name"
	EvtChatMessage      = "chat-message"

	EvtCurrentPlayers   = "current-players"
	EvtPlayerJoined     = "player-joined"
	EvtPlayerUpdate     = "player-update"
	EvtPlayerAppearance = "player-appearance-update"
	EvtPlayerName       = "player-name-update"
	EvtPlayerLeft       = "player-left"
)

// Dispatcher applies inbound protocol events to the Registry and fans
// the result back out. Every handler is a defensive no-op when the
// acting id has no session; out-of-order events, post-disconnect
// stragglers and pre-join messages all land here and are dropped
// without a reply.
type Dispatcher struct {
	registry *Registry
	emitter  core.Emitter
	policy   RetentionPolicy
}

func NewDispatcher(reg *Registry, em core.Emitter, policy RetentionPolicy) *Dispatcher {
	return &Dispatcher{registry: reg, emitter: em, policy: policy}
}

func (d *Dispatcher) Registry() *Registry { return d.registry }

// HandleJoin materializes the session, hydrates the newcomer with the
// full roster and announces the new car to everyone else.
func (d *Dispatcher) HandleJoin(sid core.SessionID, profile domain.JoinProfile) {
	sess := d.registry.UpsertOnJoin(sid, profile)
	d.emitter.BroadcastExcept(sid, EvtPlayerJoined, sess)
	d.emitter.Unicast(sid, EvtCurrentPlayers, d.registry.SnapshotAll())
}

// HandleStateUpdate relays a transform to everyone but the origin: the
// sender already simulated its own car locally and an echo would only
// fight client-side prediction at tick rate.
func (d *Dispatcher) HandleStateUpdate(sid core.SessionID, st domain.PhysicsState) {
	if !d.registry.ApplyStateUpdate(sid, st) {
		return
	}
	d.emitter.BroadcastExcept(sid, EvtPlayerUpdate, struct {
		ID string `json:"id"`
		domain.PhysicsState
	}{ID: string(sid), PhysicsState: st})
}

// HandleAppearanceUpdate goes to everyone including the sender: the
// event is low-frequency and a single inbound handler path on the
// client is worth the redundant self-delivery.
func (d *Dispatcher) HandleAppearanceUpdate(sid core.SessionID, a domain.Appearance) {
	if !d.registry.ApplyAppearanceUpdate(sid, a) {
		return
	}
	d.emitter.Broadcast(EvtPlayerAppearance, struct {
		ID string `json:"id"`
		domain.Appearance
	}{ID: string(sid), Appearance: a})
}

func (d *Dispatcher) HandleNameUpdate(sid core.SessionID, name string) {
	if !d.registry.ApplyNameUpdate(sid, name) {
		return
	}
	d.emitter.Broadcast(EvtPlayerName, struct {
		ID          string `json:"id"`
		DisplayName string `json:"displayName"`
	}{ID: string(sid), DisplayName: name})
}

// HandleChat routes a decoded ChatIntent. Directed messages echo to the
// sender first (the sender is not part of its own unicast audience and
// would otherwise never see its message) and reach the target only if a
// session for it exists right now; an offline target is silently
// skipped. Invalid intents produce zero deliveries.
func (d *Dispatcher) HandleChat(sid core.SessionID, intent domain.ChatIntent) {
	if !intent.Deliverable() {
		log.Debug().Str("module", "app.dispatch").Str("sid", string(sid)).Msg("chat dropped")
		return
	}
	msg := struct {
		ID        string `json:"id"`
		To        string `json:"to,omitempty"`
		Text      string `json:"text"`
		Timestamp int64  `json:"timestamp"`
	}{ID: string(sid), Text: intent.Text, Timestamp: time.Now().UnixMilli()}

	switch intent.Mode {
	case domain.ChatBroadcast:
		d.emitter.Broadcast(EvtChatMessage, msg)
	case domain.ChatDirected:
		msg.To = intent.To
		d.emitter.Unicast(sid, EvtChatMessage, msg)
		if d.registry.Has(core.SessionID(intent.To)) {
			d.emitter.Unicast(core.SessionID(intent.To), EvtChatMessage, msg)
		}
	}
}

// HandleDisconnect is terminal for the connection. Under the persistent
// policy the session stays on the books so others can keep viewing and
// copying the car; under the ephemeral policy it is purged and the
// departure broadcast. A connection that never joined leaves nothing to
// purge and nothing is announced.
func (d *Dispatcher) HandleDisconnect(sid core.SessionID) {
	if d.policy == RetainPersistent {
		log.Info().Str("module", "app.dispatch").Str("sid", string(sid)).Msg("session retained after disconnect")
		return
	}
	if d.registry.Remove(sid) {
		d.emitter.Broadcast(EvtPlayerLeft, string(sid))
	}
}
