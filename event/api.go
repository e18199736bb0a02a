package event

import (
	"github.com/lixenwraith/vi-pattern/core"
	"github.com/lixenwraith/vi-pattern/vmath"
)

// EmitEntity pushes an entity-scoped event
func EmitEntity(q *EventQueue, t EventType, e core.Entity, prefab string, pos vmath.Vec3F, frame int64) {
	q.Push(GameEvent{
		Type:    t,
		Payload: &EntityPayload{Entity: e, Prefab: prefab, Position: pos},
		Frame:   frame,
	})
}

// EmitFault pushes EventPatternFailed
func EmitFault(q *EventQueue, e core.Entity, err error, frame int64) {
	q.Push(GameEvent{
		Type:    EventPatternFailed,
		Payload: &FaultPayload{Entity: e, Err: err},
		Frame:   frame,
	})
}
