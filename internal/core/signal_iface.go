package core

// Frame is a raw wire payload, one encoded event envelope.
type Frame []byte

// SessionID is the transport-assigned connection id. Opaque here:
// the core never mints, parses or validates it.
type SessionID string

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// Emitter is the fanout surface the dispatcher drives. Every emission
// is best-effort and independent per peer; a dead or slow peer must
// never abort delivery to the rest.
type Emitter interface {
	Unicast(to SessionID, event string, data any)
	Broadcast(event string, data any)
	BroadcastExcept(from SessionID, event string, data any)
}
