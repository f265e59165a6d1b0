package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionSpawnDefaults(t *testing.T) {
	s := NewSession("abc123def456")

	assert.Equal(t, Vec3{X: 0, Y: 2, Z: 0}, s.Position)
	assert.Equal(t, Quaternion{X: 0, Y: 0, Z: 0, W: 1}, s.Rotation)
	assert.Equal(t, Vec3{}, s.Velocity)
	assert.Nil(t, s.Color)
	assert.Nil(t, s.WrapTexture)
	assert.Equal(t, "driver-abc123de", s.DisplayName)
}

func TestDefaultDisplayNameShortID(t *testing.T) {
	assert.Equal(t, "driver-x1", DefaultDisplayName("x1"))
}

func TestSessionWireShape(t *testing.T) {
	s := NewSession("car-1")
	b, err := json.Marshal(s)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))

	// Nullable paint fields must be present as null, not omitted.
	for _, key := range []string{"id", "position", "rotation", "velocity", "color", "wrapTexture", "displayName"} {
		assert.Contains(t, m, key)
	}
	assert.Nil(t, m["color"])
	assert.Equal(t, map[string]any{"x": 0.0, "y": 2.0, "z": 0.0}, m["position"])
	assert.Equal(t, map[string]any{"x": 0.0, "y": 0.0, "z": 0.0, "w": 1.0}, m["rotation"])
}
