package app

import "fmt"

// RetentionPolicy decides what happens to a Session when its connection
// drops. Both behaviors shipped at different points of the protocol's
// life, so the choice is a deployment flag rather than hardcoded.
type RetentionPolicy int

const (
	// RetainEphemeral purges the session on disconnect and tells everyone.
	RetainEphemeral RetentionPolicy = iota
	// RetainPersistent keeps the last known state visible until the
	// process restarts; no departure is broadcast.
	RetainPersistent
)

func ParseRetentionPolicy(s string) (RetentionPolicy, error) {
	switch s {
	case "ephemeral":
		return RetainEphemeral, nil
	case "persistent":
		return RetainPersistent, nil
	}
	return 0, fmt.Errorf("unknown retention policy %q", s)
}

func (p RetentionPolicy) String() string {
	switch p {
	case RetainEphemeral:
		return "ephemeral"
	case RetainPersistent:
		return "persistent"
	}
	return "unknown"
}
