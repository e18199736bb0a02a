package world

import (
	"github.com/lixenwraith/vi-pattern/pattern"
	"github.com/lixenwraith/vi-pattern/vmath"
)

// Transform places an entity in world space
type Transform struct {
	Position vmath.Vec3F
	Rotation vmath.Quat
}

// Forward is the +Z axis of the transform
func (t Transform) Forward() vmath.Vec3F {
	return vmath.QuatForward(t.Rotation)
}

// Body is a kinematic rigid body integrated on fixed steps
type Body struct {
	Velocity vmath.Vec3F
}

// PatternRunner holds the template an entity runs and when it runs it
type PatternRunner struct {
	Template *pattern.Pattern
	Trigger  pattern.Trigger
}

// Prefab is a named entity blueprint
type Prefab struct {
	Name string
	// Body gives instances a velocity, without it velocity actions are no-ops
	Body    bool
	Pattern *pattern.Pattern
	Trigger pattern.Trigger
	// Glyph is the sandbox's display rune, zero falls back to '*'
	Glyph rune
}
