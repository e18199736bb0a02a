package world

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/vi-pattern/core"
	"github.com/lixenwraith/vi-pattern/engine"
	"github.com/lixenwraith/vi-pattern/event"
	"github.com/lixenwraith/vi-pattern/pattern"
	"github.com/lixenwraith/vi-pattern/status"
	"github.com/lixenwraith/vi-pattern/vmath"
)

// DefaultFixedStep is the physics step used when Config leaves it unset
const DefaultFixedStep = 20 * time.Millisecond

var (
	ErrUnknownPrefab = errors.New("world: unknown prefab")
	ErrNoPrefabName  = errors.New("world: prefab name required")
)

// World is the in-memory host for pattern execution
// Entities are component sets in typed stores; patterns run on the embedded scheduler
// All methods must be called from the goroutine driving Step/Update
type World struct {
	nextEntityID core.Entity

	Transforms *Store[Transform]
	Bodies     *Store[Body]
	Runners    *Store[PatternRunner]
	Origins    *Store[string]
	disabled   *Store[struct{}]

	prefabs map[string]Prefab

	sched  *engine.Scheduler
	fixed  *engine.FixedStep
	events *event.EventQueue
	logger *slog.Logger
	status *status.Registry

	pendingStart []core.Entity
	cullRadius   float64
	frame        int64

	// Cached metric pointers
	statEntities  *atomic.Int64
	statSpawned   *atomic.Int64
	statDestroyed *atomic.Int64
}

// Config tunes a World
type Config struct {
	FixedStep time.Duration
	// MaxCatchUp bounds fixed steps per frame
	MaxCatchUp int
	// CullRadius destroys entities farther than this from the origin, zero disables
	CullRadius float64
	Logger     *slog.Logger
	Status     *status.Registry
	Events     *event.EventQueue
}

// New creates an empty world
func New(cfg Config) *World {
	if cfg.FixedStep <= 0 {
		cfg.FixedStep = DefaultFixedStep
	}
	if cfg.MaxCatchUp <= 0 {
		cfg.MaxCatchUp = 5
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Status == nil {
		cfg.Status = status.NewRegistry()
	}
	if cfg.Events == nil {
		cfg.Events = event.NewEventQueue()
	}

	w := &World{
		nextEntityID:  1,
		Transforms:    NewStore[Transform](),
		Bodies:        NewStore[Body](),
		Runners:       NewStore[PatternRunner](),
		Origins:       NewStore[string](),
		disabled:      NewStore[struct{}](),
		prefabs:       make(map[string]Prefab),
		fixed:         engine.NewFixedStep(cfg.FixedStep, cfg.MaxCatchUp),
		events:        cfg.Events,
		logger:        cfg.Logger,
		status:        cfg.Status,
		cullRadius:    cfg.CullRadius,
		statEntities:  cfg.Status.Ints.Get("entities.live"),
		statSpawned:   cfg.Status.Ints.Get("entities.spawned"),
		statDestroyed: cfg.Status.Ints.Get("entities.destroyed"),
	}
	w.sched = engine.NewScheduler(
		engine.WithLogger(cfg.Logger),
		engine.WithStatus(cfg.Status),
		engine.WithFaultHandler(func(owner core.Entity, err error) {
			event.EmitFault(w.events, owner, err, w.frame)
		}),
	)
	return w
}

// Scheduler exposes the task scheduler driving the world's patterns
func (w *World) Scheduler() *engine.Scheduler { return w.sched }

// Events is the queue world events are pushed to
func (w *World) Events() *event.EventQueue { return w.events }

// Status is the metrics registry
func (w *World) Status() *status.Registry { return w.status }

// Frame is the number of completed frame updates
func (w *World) Frame() int64 { return w.frame }

// RegisterPrefab adds or replaces a blueprint
func (w *World) RegisterPrefab(p Prefab) error {
	if p.Name == "" {
		return ErrNoPrefabName
	}
	w.prefabs[p.Name] = p
	return nil
}

// Prefab looks up a blueprint by name
func (w *World) Prefab(name string) (Prefab, bool) {
	p, ok := w.prefabs[name]
	return p, ok
}

// CreateEntity adds a bare entity with a transform and optional body
func (w *World) CreateEntity(t Transform, withBody bool) core.Entity {
	e := w.nextEntityID
	w.nextEntityID++

	if t.Rotation == (vmath.Quat{}) {
		t.Rotation = vmath.QuatIdentity
	}
	w.Transforms.Set(e, t)
	if withBody {
		w.Bodies.Set(e, Body{})
	}
	w.statEntities.Add(1)
	return e
}

// Instantiate creates an entity from a registered prefab
// Prefab patterns auto-run per their trigger: awake/enable now, start before the next frame
func (w *World) Instantiate(prefab string, pos vmath.Vec3F, rot vmath.Quat) (core.Entity, error) {
	p, ok := w.prefabs[prefab]
	if !ok {
		return core.NoEntity, fmt.Errorf("%w: %q", ErrUnknownPrefab, prefab)
	}

	e := w.CreateEntity(Transform{Position: pos, Rotation: rot}, p.Body)
	w.Origins.Set(e, prefab)
	w.statSpawned.Add(1)
	event.EmitEntity(w.events, event.EventEntitySpawned, e, prefab, pos, w.frame)

	if p.Pattern != nil {
		w.Attach(e, p.Pattern, p.Trigger)
	}
	return e, nil
}

// Attach sets e's pattern template and fires its creation triggers
func (w *World) Attach(e core.Entity, p *pattern.Pattern, trigger pattern.Trigger) {
	if !w.Alive(e) {
		return
	}
	w.Runners.Set(e, PatternRunner{Template: p, Trigger: trigger})

	switch trigger {
	case pattern.TriggerOnAwake:
		w.TriggerRun(e)
	case pattern.TriggerOnEnable:
		if w.Enabled(e) {
			w.TriggerRun(e)
		}
	case pattern.TriggerOnStart:
		w.pendingStart = append(w.pendingStart, e)
	}
}

// AttachPattern replaces e's template without auto-running it
func (w *World) AttachPattern(e core.Entity, p *pattern.Pattern) {
	w.Attach(e, p, pattern.TriggerManual)
}

// TriggerRun clones e's template and runs it
func (w *World) TriggerRun(e core.Entity) {
	if !w.Alive(e) {
		return
	}
	r, ok := w.Runners.Get(e)
	if !ok || r.Template == nil {
		w.sched.Report(e, pattern.ErrMissingPattern)
		return
	}
	t, _ := w.Transforms.Get(e)
	prefab, _ := w.Origins.Get(e)
	event.EmitEntity(w.events, event.EventPatternStarted, e, prefab, t.Position, w.frame)
	w.logger.Debug("pattern started", "entity", e, "prefab", prefab, "actions", r.Template.Len())

	pattern.Dispatch(w.exec(e), r.Template.Clone())
}

func (w *World) exec(e core.Entity) *pattern.Exec {
	return &pattern.Exec{Host: w, Runner: w.sched, Entity: e}
}

// Enabled reports whether e exists and is active
func (w *World) Enabled(e core.Entity) bool {
	return w.Alive(e) && !w.disabled.Has(e)
}

// SetEnabled activates or deactivates e
// Deactivating stops every task e owns; activating fires TriggerOnEnable
func (w *World) SetEnabled(e core.Entity, enabled bool) {
	if !w.Alive(e) || w.Enabled(e) == enabled {
		return
	}
	if !enabled {
		w.disabled.Set(e, struct{}{})
		w.sched.Cancel(e)
		return
	}
	w.disabled.Remove(e)
	if r, ok := w.Runners.Get(e); ok && r.Trigger == pattern.TriggerOnEnable {
		w.TriggerRun(e)
	}
}

// Destroy removes e and cancels every task it owns
func (w *World) Destroy(e core.Entity) {
	t, ok := w.Transforms.Get(e)
	if !ok {
		return
	}
	prefab, _ := w.Origins.Get(e)
	n := w.sched.Cancel(e)

	w.Transforms.Remove(e)
	w.Bodies.Remove(e)
	w.Runners.Remove(e)
	w.Origins.Remove(e)
	w.disabled.Remove(e)

	w.statEntities.Add(-1)
	w.statDestroyed.Add(1)
	event.EmitEntity(w.events, event.EventEntityDestroyed, e, prefab, t.Position, w.frame)
	w.logger.Debug("entity destroyed", "entity", e, "prefab", prefab, "tasks", n)
}

// Clear removes every entity and task, prefabs stay registered
func (w *World) Clear() {
	w.sched.Clear()
	w.statEntities.Add(-int64(w.Transforms.Len()))
	w.Transforms.Clear()
	w.Bodies.Clear()
	w.Runners.Clear()
	w.Origins.Clear()
	w.disabled.Clear()
	w.pendingStart = nil
	w.events.Push(event.GameEvent{Type: event.EventWorldClear, Frame: w.frame})
}

// Step advances the world by one frame of elapsed time, running due fixed steps first
func (w *World) Step(elapsed time.Duration) {
	for range w.fixed.Advance(elapsed) {
		w.FixedUpdate(w.fixed.Step)
	}
	w.Update(elapsed)
}

// Update runs pending start triggers then the frame pass
func (w *World) Update(dt time.Duration) {
	if len(w.pendingStart) > 0 {
		starting := w.pendingStart
		w.pendingStart = nil
		for _, e := range starting {
			// A later Attach may have replaced the start trigger
			r, ok := w.Runners.Get(e)
			if ok && r.Trigger == pattern.TriggerOnStart && w.Enabled(e) {
				w.TriggerRun(e)
			}
		}
	}
	w.sched.Update(dt)
	w.frame++
}

// FixedUpdate runs the physics pass then integrates bodies
func (w *World) FixedUpdate(dt time.Duration) {
	w.sched.FixedUpdate(dt)
	w.integrate(dt.Seconds())
	w.cull()
}

func (w *World) integrate(dt float64) {
	for _, e := range w.Bodies.Entities() {
		if w.disabled.Has(e) {
			continue
		}
		b, _ := w.Bodies.Get(e)
		if vmath.V3FMagSq(b.Velocity) == 0 {
			continue
		}
		w.Transforms.Update(e, func(t *Transform) {
			t.Position = vmath.V3FAdd(t.Position, vmath.V3FScale(b.Velocity, dt))
		})
	}
}

func (w *World) cull() {
	if w.cullRadius <= 0 {
		return
	}
	limit := w.cullRadius * w.cullRadius
	for _, e := range w.Transforms.Entities() {
		t, ok := w.Transforms.Get(e)
		if !ok {
			continue
		}
		if d := vmath.V3FMagSq(t.Position); d > limit || math.IsNaN(d) {
			w.Destroy(e)
		}
	}
}
