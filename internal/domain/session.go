// Package domain contains entity without logic, just meta-data
package domain

// Vec3 is a world-space coordinate triple.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Quaternion is an orientation in x,y,z,w order.
type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// Identity returns the no-rotation quaternion.
func Identity() Quaternion {
	return Quaternion{W: 1}
}

// SpawnPosition is where every car materializes on join.
func SpawnPosition() Vec3 {
	return Vec3{Y: 2}
}

// Session is the server-side record of one connected driver:
// transport id, last reported transform and the car's look.
// Color and WrapTexture stay nil until the client picks something.
type Session struct {
	ID          string     `json:"id"`
	Position    Vec3       `json:"position"`
	Rotation    Quaternion `json:"rotation"`
	Velocity    Vec3       `json:"velocity"`
	Color       *string    `json:"color"`
	WrapTexture *string    `json:"wrapTexture"`
	DisplayName string     `json:"displayName"`
}

// NewSession builds a Session at the spawn point. The id comes from the
// transport layer and is never minted or checked here.
func NewSession(id string) *Session {
	return &Session{
		ID:          id,
		Position:    SpawnPosition(),
		Rotation:    Identity(),
		DisplayName: DefaultDisplayName(id),
	}
}

// DefaultDisplayName derives a label from the connection id for drivers
// who never set one.
func DefaultDisplayName(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return "driver-" + id
}

// JoinProfile is the optional customization a client declares on join.
// Position is deliberately absent: everyone spawns at the spawn point.
type JoinProfile struct {
	Color       *string `json:"color"`
	WrapTexture *string `json:"wrapTexture"`
	DisplayName string  `json:"displayName"`
}

// PhysicsState is a client-reported transform. The server relays it
// verbatim and never checks plausibility.
type PhysicsState struct {
	Position Vec3       `json:"position"`
	Rotation Quaternion `json:"rotation"`
	Velocity Vec3       `json:"velocity"`
}

// Appearance replaces both paint fields at once; a caller keeping one
// unchanged resends the previous value.
type Appearance struct {
	Color       *string `json:"color"`
	WrapTexture *string `json:"wrapTexture"`
}
