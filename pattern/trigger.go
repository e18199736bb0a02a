package pattern

import (
	"fmt"
	"strings"
)

// Trigger selects when a host auto-runs an entity's attached pattern
type Trigger int

const (
	// TriggerManual never auto-runs, the host calls TriggerRun
	TriggerManual Trigger = iota
	// TriggerOnAwake runs as soon as the entity is instantiated
	TriggerOnAwake
	// TriggerOnStart runs before the entity's first frame update
	TriggerOnStart
	// TriggerOnEnable runs every time the entity becomes enabled, including creation
	TriggerOnEnable
)

var triggerNames = [...]string{
	TriggerManual:   "manual",
	TriggerOnAwake:  "awake",
	TriggerOnStart:  "start",
	TriggerOnEnable: "enable",
}

func (t Trigger) String() string {
	if t < 0 || int(t) >= len(triggerNames) {
		return fmt.Sprintf("trigger(%d)", int(t))
	}
	return triggerNames[t]
}

// ParseTrigger accepts the names produced by String, case-insensitive
func ParseTrigger(s string) (Trigger, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return TriggerManual, nil
	}
	for i, n := range triggerNames {
		if n == name {
			return Trigger(i), nil
		}
	}
	return TriggerManual, fmt.Errorf("%w: %q", ErrUnknownTrigger, s)
}
