package event

import "fmt"

// EventType represents the type of world event
type EventType int

const (
	// EventEntitySpawned reports a new entity from a prefab
	// Trigger: World.Instantiate | Payload: *EntityPayload
	EventEntitySpawned EventType = iota

	// EventEntityDestroyed reports an entity removal, its tasks are already cancelled
	// Trigger: World.Destroy, DestroyAction, culling | Payload: *EntityPayload
	EventEntityDestroyed

	// EventPatternStarted reports a pattern run on an entity
	// Trigger: World.TriggerRun, auto-run triggers | Payload: *EntityPayload
	EventPatternStarted

	// EventPatternFailed reports a configuration error surfaced by a run
	// Trigger: Scheduler fault handler | Payload: *FaultPayload
	EventPatternFailed

	// EventWorldClear reports mass removal of every entity
	// Trigger: World.Clear | Payload: nil
	EventWorldClear
)

var eventNames = [...]string{
	EventEntitySpawned:   "entity_spawned",
	EventEntityDestroyed: "entity_destroyed",
	EventPatternStarted:  "pattern_started",
	EventPatternFailed:   "pattern_failed",
	EventWorldClear:      "world_clear",
}

func (t EventType) String() string {
	if t < 0 || int(t) >= len(eventNames) {
		return fmt.Sprintf("event(%d)", int(t))
	}
	return eventNames[t]
}

// GameEvent is one queued world event stamped with the frame it was emitted in
type GameEvent struct {
	Type    EventType
	Payload any
	Frame   int64
}
