package pattern

import (
	"time"

	bt "github.com/joeycumines/go-behaviortree"

	"github.com/lixenwraith/vi-pattern/core"
	"github.com/lixenwraith/vi-pattern/vmath"
)

// Task is a suspended execution polled once per scheduling pass
// bt.Running keeps it scheduled, bt.Success retires it, bt.Failure with an error is a configuration fault
type Task = bt.Node

// Phase identifies the scheduling pass currently being run
type Phase int

const (
	// PhaseFrame is the per-frame update pass, waits resume here
	PhaseFrame Phase = iota
	// PhaseFixed is the fixed-timestep physics pass, velocity ramps advance here
	PhaseFixed
)

func (p Phase) String() string {
	switch p {
	case PhaseFrame:
		return "frame"
	case PhaseFixed:
		return "fixed"
	default:
		return "unknown"
	}
}

// Host is the entity adapter every action reads and mutates through
// Reads of a dead entity report ok=false, writes to a dead entity are ignored
type Host interface {
	Alive(e core.Entity) bool

	Position(e core.Entity) (vmath.Vec3F, bool)
	SetPosition(e core.Entity, p vmath.Vec3F)
	Orientation(e core.Entity) (vmath.Quat, bool)
	SetOrientation(e core.Entity, q vmath.Quat)
	Forward(e core.Entity) (vmath.Vec3F, bool)

	// Velocity reports ok=false when the entity has no physical body
	Velocity(e core.Entity) (vmath.Vec3F, bool)
	SetVelocity(e core.Entity, v vmath.Vec3F)

	Instantiate(prefab string, pos vmath.Vec3F, rot vmath.Quat) (core.Entity, error)
	AttachPattern(e core.Entity, p *Pattern)
	TriggerRun(e core.Entity)
	Destroy(e core.Entity)
}

// Runner is the cooperative scheduler actions suspend on
type Runner interface {
	// Go schedules task as an independent task owned by owner, first polled on the next pass
	Go(owner core.Entity, task Task)
	// Report surfaces a configuration error to host diagnostics
	Report(owner core.Entity, err error)
	Phase() Phase
	Now() time.Duration
	// DeltaTime is the step of the current pass in seconds
	DeltaTime() float64
}

// Exec binds one execution to its entity and collaborators
// Shared read-only by every action of a run and its nested runs
type Exec struct {
	Host   Host
	Runner Runner
	Entity core.Entity
}

// Alive reports whether the owning entity still exists
func (x *Exec) Alive() bool {
	return x.Host.Alive(x.Entity)
}

// Dispatch runs p on x and schedules whatever remains suspended
// Configuration errors go to the runner's diagnostics
func Dispatch(x *Exec, p *Pattern) {
	if p == nil {
		x.Runner.Report(x.Entity, ErrMissingPattern)
		return
	}
	task, err := p.Run(x)
	if err != nil {
		x.Runner.Report(x.Entity, err)
		return
	}
	if task != nil {
		x.Runner.Go(x.Entity, task)
	}
}
