package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Garage/internal/core"
	"github.com/dkeye/Garage/internal/domain"
)

// Registry owns every Session record; nothing else mutates them.
// One coarse RWMutex guards the whole map: at tens to low hundreds of
// drivers that keeps tie-breaks trivially last-writer-wins and a
// snapshot can never observe a half-built Session.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*domain.Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[core.SessionID]*domain.Session)}
}

// UpsertOnJoin materializes a Session at spawn defaults, overridden by
// whatever the join profile declares. An existing entry for the same id
// (reconnect race) is overwritten; id uniqueness is the transport's
// problem, not ours.
func (r *Registry) UpsertOnJoin(sid core.SessionID, profile domain.JoinProfile) domain.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := domain.NewSession(string(sid))
	if profile.Color != nil {
		s.Color = profile.Color
	}
	if profile.WrapTexture != nil {
		s.WrapTexture = profile.WrapTexture
	}
	if profile.DisplayName != "" {
		s.DisplayName = profile.DisplayName
	}
	r.sessions[sid] = s
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("name", s.DisplayName).Msg("session joined")
	return *s
}

// ApplyStateUpdate replaces the transform verbatim. The server is a
// trusting relay: no plausibility checks. Reports false when the id has
// no session (not joined or already purged).
func (r *Registry) ApplyStateUpdate(sid core.SessionID, st domain.PhysicsState) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sid]
	if !ok {
		return false
	}
	s.Position = st.Position
	s.Rotation = st.Rotation
	s.Velocity = st.Velocity
	return true
}

// ApplyAppearanceUpdate replaces both paint fields verbatim, even when
// one carries the previous value.
func (r *Registry) ApplyAppearanceUpdate(sid core.SessionID, a domain.Appearance) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sid]
	if !ok {
		return false
	}
	s.Color = a.Color
	s.WrapTexture = a.WrapTexture
	return true
}

func (r *Registry) ApplyNameUpdate(sid core.SessionID, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sid]
	if !ok {
		return false
	}
	s.DisplayName = name
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("name", name).Msg("renamed")
	return true
}

// Remove purges the entry. Only the ephemeral retention path calls this.
func (r *Registry) Remove(sid core.SessionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sid]; !ok {
		return false
	}
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("session removed")
	return true
}

func (r *Registry) Has(sid core.SessionID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[sid]
	return ok
}

// SnapshotAll returns value copies keyed by public id, used to hydrate
// a newly joined client with existing drivers.
func (r *Registry) SnapshotAll() map[string]domain.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]domain.Session, len(r.sessions))
	for sid, s := range r.sessions {
		out[string(sid)] = *s
	}
	return out
}
