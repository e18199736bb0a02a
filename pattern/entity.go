package pattern

import (
	"fmt"
	"math"

	bt "github.com/joeycumines/go-behaviortree"

	"github.com/lixenwraith/vi-pattern/core"
	"github.com/lixenwraith/vi-pattern/vmath"
)

// Unbounded is the default clamp for spawn ramps
var Unbounded = vmath.Vec3F{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}

// SpawnAction instantiates Prefab relative to the entity, ramping offset and rotation per call
// Each call on the same instance advances the ramp; clones start from zero
type SpawnAction struct {
	Base
	Prefab  string
	Pattern *Pattern

	Offset          vmath.Vec3F
	OffsetIncrement vmath.Vec3F
	OffsetMax       vmath.Vec3F

	// Euler degrees
	Rotation          vmath.Vec3F
	RotationIncrement vmath.Vec3F
	RotationMax       vmath.Vec3F

	loopCount int
}

// NewSpawnAction returns a spawn with unbounded ramps
func NewSpawnAction(prefab string) *SpawnAction {
	return &SpawnAction{
		Base:        Defaults(),
		Prefab:      prefab,
		OffsetMax:   Unbounded,
		RotationMax: Unbounded,
	}
}

func (a *SpawnAction) Kind() Kind { return KindSpawn }

func (a *SpawnAction) Clone() Action {
	c := *a
	c.Pattern = a.Pattern.Clone()
	c.loopCount = 0
	return &c
}

// LoopCount is the number of completed spawns on this instance
func (a *SpawnAction) LoopCount() int { return a.loopCount }

// SpawnOffset is the offset the next call would use
func (a *SpawnAction) SpawnOffset() vmath.Vec3F {
	return vmath.V3FMin(vmath.V3FMulAdd(a.Offset, a.OffsetIncrement, float64(a.loopCount)), a.OffsetMax)
}

// SpawnRotation is the Euler rotation the next call would apply
func (a *SpawnAction) SpawnRotation() vmath.Vec3F {
	return vmath.V3FMin(vmath.V3FMulAdd(a.Rotation, a.RotationIncrement, float64(a.loopCount)), a.RotationMax)
}

func (a *SpawnAction) Start(x *Exec) (Task, error) {
	if a.Prefab == "" {
		return nil, ErrMissingPrefab
	}
	pos, ok := x.Host.Position(x.Entity)
	if !ok {
		return nil, nil
	}
	rot, ok := x.Host.Orientation(x.Entity)
	if !ok {
		return nil, nil
	}

	at := vmath.V3FAdd(pos, a.SpawnOffset())
	facing := vmath.QuatMul(rot, vmath.QuatFromEuler(a.SpawnRotation()))

	child, err := x.Host.Instantiate(a.Prefab, at, facing)
	if err != nil {
		return nil, fmt.Errorf("instantiate %q: %w", a.Prefab, err)
	}
	a.loopCount++

	if a.Pattern != nil {
		// Attaching after creation misses the prefab's own triggers, run explicitly
		x.Host.AttachPattern(child, a.Pattern.Clone())
		x.Host.TriggerRun(child)
	}
	return nil, nil
}

// SetVelocityAction drives the body's forward velocity to Velocity, instantly or over TimeToChange seconds
type SetVelocityAction struct {
	Base
	Velocity     float64
	TimeToChange float64
}

func NewSetVelocityAction(velocity, timeToChange float64) *SetVelocityAction {
	return &SetVelocityAction{Base: Defaults(), Velocity: velocity, TimeToChange: timeToChange}
}

func (a *SetVelocityAction) Kind() Kind { return KindSetVelocity }

func (a *SetVelocityAction) Clone() Action {
	c := *a
	return &c
}

func (a *SetVelocityAction) Start(x *Exec) (Task, error) {
	vel, ok := x.Host.Velocity(x.Entity)
	if !ok {
		return nil, nil
	}
	fwd, ok := x.Host.Forward(x.Entity)
	if !ok {
		return nil, nil
	}
	fwd = vmath.V3FNormalize(fwd)

	if a.TimeToChange <= 0 {
		x.Host.SetVelocity(x.Entity, vmath.V3FScale(fwd, a.Velocity))
		return nil, nil
	}

	r := &velocityRamp{
		x:        x,
		from:     vmath.V3FDot(vel, fwd),
		to:       a.Velocity,
		duration: a.TimeToChange,
	}
	return bt.New(r.tick), nil
}

// velocityRamp interpolates forward speed on fixed passes, re-reading the facing every step
type velocityRamp struct {
	x        *Exec
	from, to float64
	duration float64
	elapsed  float64
}

func (r *velocityRamp) tick([]bt.Node) (bt.Status, error) {
	if r.x.Runner.Phase() != PhaseFixed {
		return bt.Running, nil
	}
	fwd, ok := r.x.Host.Forward(r.x.Entity)
	if !ok {
		return bt.Success, nil
	}
	fwd = vmath.V3FNormalize(fwd)

	r.elapsed += r.x.Runner.DeltaTime()
	if r.elapsed >= r.duration {
		// Exact final value, sampling may have stopped short
		r.x.Host.SetVelocity(r.x.Entity, vmath.V3FScale(fwd, r.to))
		return bt.Success, nil
	}

	speed := r.from + (r.to-r.from)*(r.elapsed/r.duration)
	r.x.Host.SetVelocity(r.x.Entity, vmath.V3FScale(fwd, speed))
	return bt.Running, nil
}

// TargetPositionAction turns the entity toward Target by at most MaxDegreesPerSecond*dt this pass
type TargetPositionAction struct {
	Base
	Target              vmath.Vec3F
	MaxDegreesPerSecond float64
}

func NewTargetPositionAction(target vmath.Vec3F, maxDegreesPerSecond float64) *TargetPositionAction {
	return &TargetPositionAction{Base: Defaults(), Target: target, MaxDegreesPerSecond: maxDegreesPerSecond}
}

func (a *TargetPositionAction) Kind() Kind { return KindTargetPosition }

func (a *TargetPositionAction) Clone() Action {
	c := *a
	return &c
}

func (a *TargetPositionAction) Start(x *Exec) (Task, error) {
	turnToward(x, a.Target, a.MaxDegreesPerSecond)
	return nil, nil
}

// TargetObjectAction is TargetPositionAction with the target read live from another entity
type TargetObjectAction struct {
	Base
	Target              core.Entity
	MaxDegreesPerSecond float64
}

func NewTargetObjectAction(target core.Entity, maxDegreesPerSecond float64) *TargetObjectAction {
	return &TargetObjectAction{Base: Defaults(), Target: target, MaxDegreesPerSecond: maxDegreesPerSecond}
}

func (a *TargetObjectAction) Kind() Kind { return KindTargetObject }

func (a *TargetObjectAction) Clone() Action {
	c := *a
	return &c
}

func (a *TargetObjectAction) Start(x *Exec) (Task, error) {
	if !a.Target.Valid() {
		return nil, ErrMissingTarget
	}
	target, ok := x.Host.Position(a.Target)
	if !ok {
		return nil, nil
	}
	turnToward(x, target, a.MaxDegreesPerSecond)
	return nil, nil
}

func turnToward(x *Exec, target vmath.Vec3F, maxDegreesPerSecond float64) {
	pos, ok := x.Host.Position(x.Entity)
	if !ok {
		return
	}
	rot, ok := x.Host.Orientation(x.Entity)
	if !ok {
		return
	}
	dir := vmath.V3FSub(target, pos)
	if vmath.V3FMagSq(dir) == 0 {
		return
	}
	want := vmath.QuatLookRotation(dir, vmath.V3FUp)
	x.Host.SetOrientation(x.Entity, vmath.QuatRotateTowards(rot, want, maxDegreesPerSecond*x.Runner.DeltaTime()))
}

// DestroyAction destroys the owning entity, ending every task it owns
type DestroyAction struct {
	Base
}

func NewDestroyAction() *DestroyAction {
	return &DestroyAction{Base: Defaults()}
}

func (a *DestroyAction) Kind() Kind { return KindDestroy }

func (a *DestroyAction) Clone() Action {
	c := *a
	return &c
}

func (a *DestroyAction) Start(x *Exec) (Task, error) {
	x.Host.Destroy(x.Entity)
	return nil, nil
}
