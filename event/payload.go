package event

import (
	"github.com/lixenwraith/vi-pattern/core"
	"github.com/lixenwraith/vi-pattern/vmath"
)

// EntityPayload identifies the entity an event is about
type EntityPayload struct {
	Entity   core.Entity
	Prefab   string
	Position vmath.Vec3F
}

// FaultPayload carries a configuration error raised by an entity's run
type FaultPayload struct {
	Entity core.Entity
	Err    error
}
