package world

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/vi-pattern/core"
	"github.com/lixenwraith/vi-pattern/event"
	"github.com/lixenwraith/vi-pattern/pattern"
	"github.com/lixenwraith/vi-pattern/vmath"
)

const frame = 20 * time.Millisecond

func newTestWorld(t *testing.T, cull float64) *World {
	t.Helper()
	w := New(Config{FixedStep: frame, CullRadius: cull})
	require.NoError(t, w.RegisterPrefab(Prefab{
		Name:    "bullet",
		Body:    true,
		Pattern: pattern.New(pattern.NewSetVelocityAction(10, 0)),
		Trigger: pattern.TriggerOnAwake,
	}))
	require.NoError(t, w.RegisterPrefab(Prefab{Name: "marker"}))
	return w
}

func countEvents(events []event.GameEvent, typ event.EventType) int {
	n := 0
	for _, ev := range events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

func velocityAfterInstantiate(t *testing.T, w *World, trigger pattern.Trigger) core.Entity {
	t.Helper()
	require.NoError(t, w.RegisterPrefab(Prefab{
		Name:    "mover",
		Body:    true,
		Pattern: pattern.New(pattern.NewSetVelocityAction(5, 0)),
		Trigger: trigger,
	}))
	e, err := w.Instantiate("mover", vmath.V3FZero, vmath.QuatIdentity)
	require.NoError(t, err)
	return e
}

func TestRegisterPrefab(t *testing.T) {
	w := New(Config{})
	assert.ErrorIs(t, w.RegisterPrefab(Prefab{}), ErrNoPrefabName)

	_, err := w.Instantiate("ghost", vmath.V3FZero, vmath.QuatIdentity)
	assert.ErrorIs(t, err, ErrUnknownPrefab)
	assert.Zero(t, w.Transforms.Len())
}

func TestTriggers(t *testing.T) {
	want := vmath.Vec3F{Z: 5}

	tests := []struct {
		name        string
		trigger     pattern.Trigger
		immediate   bool
		afterUpdate bool
	}{
		{"awake runs on instantiate", pattern.TriggerOnAwake, true, true},
		{"enable runs on instantiate", pattern.TriggerOnEnable, true, true},
		{"start runs before first frame", pattern.TriggerOnStart, false, true},
		{"manual never auto-runs", pattern.TriggerManual, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New(Config{FixedStep: frame})
			e := velocityAfterInstantiate(t, w, tt.trigger)

			v, ok := w.Velocity(e)
			require.True(t, ok)
			assert.Equal(t, tt.immediate, vmath.V3FApprox(v, want, 1e-9))

			w.Update(frame)
			v, _ = w.Velocity(e)
			assert.Equal(t, tt.afterUpdate, vmath.V3FApprox(v, want, 1e-9))
		})
	}
}

func TestManualTriggerRun(t *testing.T) {
	w := New(Config{})
	e := velocityAfterInstantiate(t, w, pattern.TriggerManual)

	w.TriggerRun(e)
	v, _ := w.Velocity(e)
	assert.True(t, vmath.V3FApprox(v, vmath.Vec3F{Z: 5}, 1e-9))

	events := w.Events().Consume()
	assert.Equal(t, 1, countEvents(events, event.EventPatternStarted))
}

func TestStartSkippedWhenDisabledBeforeFrame(t *testing.T) {
	w := New(Config{})
	e := velocityAfterInstantiate(t, w, pattern.TriggerOnStart)
	w.SetEnabled(e, false)
	w.Update(frame)

	v, _ := w.Velocity(e)
	assert.Equal(t, vmath.V3FZero, v)
}

func TestSetEnabled(t *testing.T) {
	w := New(Config{FixedStep: frame})
	e := w.CreateEntity(Transform{}, true)

	loop := pattern.NewRepeatActionsAction(0, pattern.NewWaitAction(0))
	loop.RepeatForever = true
	w.Attach(e, pattern.New(loop), pattern.TriggerOnEnable)
	assert.Equal(t, 1, w.Scheduler().Owned(e), "enable trigger fires on attach for an enabled entity")

	w.SetEnabled(e, false)
	assert.False(t, w.Enabled(e))
	assert.True(t, w.Alive(e))
	assert.Zero(t, w.Scheduler().Owned(e), "disabling cancels owned tasks")

	w.SetEnabled(e, false)
	w.SetEnabled(e, true)
	assert.True(t, w.Enabled(e))
	assert.Equal(t, 1, w.Scheduler().Owned(e), "enabling reruns the pattern")

	w.SetEnabled(e, true)
	assert.Equal(t, 1, w.Scheduler().Owned(e), "enabling twice is a no-op")
}

func TestSpawnerIntegration(t *testing.T) {
	w := newTestWorld(t, 0)
	root := w.CreateEntity(Transform{}, false)

	spawn := pattern.NewSpawnAction("bullet")
	spawn.OffsetIncrement = vmath.Vec3F{X: 1}
	w.Attach(root, pattern.New(
		pattern.NewRepeatActionsAction(3,
			spawn,
			pattern.NewWaitAction(0.1),
		),
		pattern.NewDestroyAction(),
	), pattern.TriggerManual)

	w.TriggerRun(root)
	require.Equal(t, 2, w.Transforms.Len(), "first spawn is synchronous")

	for range 20 {
		w.Step(frame)
	}

	assert.False(t, w.Alive(root), "root destroyed after its loop")
	bullets := w.Bodies.Entities()
	require.Len(t, bullets, 3)

	for i, b := range bullets {
		pos, _ := w.Position(b)
		assert.InDelta(t, float64(i), pos.X, 1e-9)
		assert.Greater(t, pos.Z, 0.0, "bullets move along forward")
		v, _ := w.Velocity(b)
		assert.True(t, vmath.V3FApprox(v, vmath.Vec3F{Z: 10}, 1e-9))
	}

	events := w.Events().Consume()
	assert.Equal(t, 3, countEvents(events, event.EventEntitySpawned))
	assert.Equal(t, 1, countEvents(events, event.EventEntityDestroyed))
	assert.Equal(t, int64(3), w.Status().Ints.Get("entities.spawned").Load())
	assert.Equal(t, int64(3), w.Status().Ints.Get("entities.live").Load())
}

func TestDestroy(t *testing.T) {
	w := newTestWorld(t, 0)
	e, err := w.Instantiate("bullet", vmath.V3FZero, vmath.QuatIdentity)
	require.NoError(t, err)
	w.AttachPattern(e, pattern.New(pattern.NewWaitAction(10)))
	w.TriggerRun(e)
	require.Equal(t, 1, w.Scheduler().Owned(e))

	w.Destroy(e)
	assert.False(t, w.Alive(e))
	assert.Zero(t, w.Scheduler().Owned(e))
	assert.False(t, w.Bodies.Has(e))
	assert.False(t, w.Runners.Has(e))

	_, ok := w.Position(e)
	assert.False(t, ok)
	w.SetPosition(e, vmath.Vec3F{X: 1})
	assert.False(t, w.Alive(e), "writes to a dead entity are ignored")

	w.Destroy(e)
	assert.Equal(t, int64(1), w.Status().Ints.Get("entities.destroyed").Load())
}

func TestStepRunsFixedSteps(t *testing.T) {
	w := New(Config{FixedStep: frame, MaxCatchUp: 3})
	e := w.CreateEntity(Transform{}, true)
	w.SetVelocity(e, vmath.Vec3F{X: 1})

	w.Step(50 * time.Millisecond)
	assert.Equal(t, int64(2), w.Status().Ints.Get("engine.fixed_ticks").Load())
	assert.Equal(t, int64(1), w.Frame())

	pos, _ := w.Position(e)
	assert.InDelta(t, 0.04, pos.X, 1e-9)

	w.Step(time.Second)
	assert.Equal(t, int64(5), w.Status().Ints.Get("engine.fixed_ticks").Load(), "catch-up is bounded")
}

func TestDisabledBodiesDoNotMove(t *testing.T) {
	w := New(Config{FixedStep: frame})
	e := w.CreateEntity(Transform{}, true)
	w.SetVelocity(e, vmath.Vec3F{X: 1})
	w.SetEnabled(e, false)

	w.FixedUpdate(frame)
	pos, _ := w.Position(e)
	assert.Equal(t, vmath.V3FZero, pos)
}

func TestCull(t *testing.T) {
	w := New(Config{FixedStep: frame, CullRadius: 1})
	far := w.CreateEntity(Transform{Position: vmath.Vec3F{X: 0.99}}, true)
	near := w.CreateEntity(Transform{}, false)
	w.SetVelocity(far, vmath.Vec3F{X: 1})

	w.FixedUpdate(frame)
	assert.False(t, w.Alive(far))
	assert.True(t, w.Alive(near))
}

func TestFaultsBecomeEvents(t *testing.T) {
	w := New(Config{})
	e := w.CreateEntity(Transform{}, false)

	w.TriggerRun(e)

	events := w.Events().Consume()
	require.Equal(t, 1, countEvents(events, event.EventPatternFailed))
	for _, ev := range events {
		if ev.Type != event.EventPatternFailed {
			continue
		}
		p, ok := ev.Payload.(*event.FaultPayload)
		require.True(t, ok)
		assert.Equal(t, e, p.Entity)
		assert.True(t, errors.Is(p.Err, pattern.ErrMissingPattern))
	}
}

func TestMissingPrefabFromSpawn(t *testing.T) {
	w := New(Config{})
	e := w.CreateEntity(Transform{}, false)
	w.Attach(e, pattern.New(pattern.NewSpawnAction("nothing")), pattern.TriggerOnAwake)

	events := w.Events().Consume()
	require.Equal(t, 1, countEvents(events, event.EventPatternFailed))
	for _, ev := range events {
		if p, ok := ev.Payload.(*event.FaultPayload); ok {
			assert.ErrorIs(t, p.Err, ErrUnknownPrefab)
		}
	}
}

func TestClear(t *testing.T) {
	w := newTestWorld(t, 0)
	for range 3 {
		_, err := w.Instantiate("marker", vmath.V3FZero, vmath.QuatIdentity)
		require.NoError(t, err)
	}
	w.Events().Discard()

	w.Clear()
	assert.Zero(t, w.Transforms.Len())
	assert.Zero(t, w.Scheduler().Len())
	assert.Zero(t, w.Status().Ints.Get("entities.live").Load())

	_, ok := w.Prefab("marker")
	assert.True(t, ok, "prefabs survive clear")
	assert.Equal(t, 1, countEvents(w.Events().Consume(), event.EventWorldClear))
}

func TestStartTriggerReplacedBySpawnPattern(t *testing.T) {
	w := New(Config{FixedStep: frame})

	var prefabRuns, attachedRuns int
	counter := func(n *int) *pattern.Pattern {
		return pattern.New(&countAction{Base: pattern.Defaults(), n: n})
	}
	require.NoError(t, w.RegisterPrefab(Prefab{
		Name:    "bullet",
		Pattern: counter(&prefabRuns),
		Trigger: pattern.TriggerOnStart,
	}))

	root := w.CreateEntity(Transform{}, false)
	spawn := pattern.NewSpawnAction("bullet")
	spawn.Pattern = counter(&attachedRuns)
	w.Attach(root, pattern.New(spawn), pattern.TriggerOnAwake)

	w.Update(frame)
	w.Update(frame)
	assert.Zero(t, prefabRuns, "spawn pattern replaces the prefab pattern")
	assert.Equal(t, 1, attachedRuns)
}

// countAction increments n each time it starts
type countAction struct {
	pattern.Base
	n *int
}

func (a *countAction) Kind() pattern.Kind { return "count" }

func (a *countAction) Clone() pattern.Action {
	c := *a
	return &c
}

func (a *countAction) Start(*pattern.Exec) (pattern.Task, error) {
	*a.n++
	return nil, nil
}
