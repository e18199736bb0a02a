package pattern

// Kind is the discriminator of an action variant, stable across encodings
type Kind string

const (
	KindRunPattern     Kind = "run_pattern"
	KindActionList     Kind = "action_list"
	KindRepeatPattern  Kind = "repeat_pattern"
	KindRepeatActions  Kind = "repeat_actions"
	KindWait           Kind = "wait"
	KindSpawn          Kind = "spawn"
	KindSetVelocity    Kind = "set_velocity"
	KindTargetPosition Kind = "target_position"
	KindTargetObject   Kind = "target_object"
	KindDestroy        Kind = "destroy"
)

// Kinds lists every variant in declaration order
var Kinds = []Kind{
	KindRunPattern,
	KindActionList,
	KindRepeatPattern,
	KindRepeatActions,
	KindWait,
	KindSpawn,
	KindSetVelocity,
	KindTargetPosition,
	KindTargetObject,
	KindDestroy,
}

// Action is one schedulable step of a pattern
// The set of variants is closed, every implementation embeds Base
type Action interface {
	Kind() Kind
	// Common exposes the shared enable/suspend flags
	Common() *Base
	// Clone returns an independent copy with fresh execution state
	Clone() Action
	// Start runs the synchronous portion against x.Entity
	// A nil Task means the action already completed
	Start(x *Exec) (Task, error)

	sealed()
}

// Base carries the flags shared by every action
type Base struct {
	// Enabled false skips the action with no side effects
	Enabled bool
	// WaitForCompletion true suspends the caller until the action finishes,
	// false launches it as an independent task
	WaitForCompletion bool
}

// Defaults is an enabled, sequential action
func Defaults() Base {
	return Base{Enabled: true, WaitForCompletion: true}
}

func (b *Base) Common() *Base { return b }

func (*Base) sealed() {}

// CloneActions deep-copies a list, nil stays nil
func CloneActions(actions []Action) []Action {
	if actions == nil {
		return nil
	}
	out := make([]Action, len(actions))
	for i, a := range actions {
		out[i] = a.Clone()
	}
	return out
}
