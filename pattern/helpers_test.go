package pattern_test

import (
	"errors"
	"time"

	"github.com/lixenwraith/vi-pattern/core"
	"github.com/lixenwraith/vi-pattern/engine"
	"github.com/lixenwraith/vi-pattern/pattern"
	"github.com/lixenwraith/vi-pattern/vmath"
)

type fakeEntity struct {
	pos     vmath.Vec3F
	rot     vmath.Quat
	vel     vmath.Vec3F
	hasBody bool
	pattern *pattern.Pattern
	prefab  string
}

type spawnRecord struct {
	prefab string
	entity core.Entity
	pos    vmath.Vec3F
	rot    vmath.Quat
}

// fakeHost records every host call and runs patterns on a real scheduler
type fakeHost struct {
	sched     *engine.Scheduler
	next      core.Entity
	ents      map[core.Entity]*fakeEntity
	prefabs   map[string]bool
	spawns    []spawnRecord
	triggered []core.Entity
	faults    []error
}

func newFakeHost() *fakeHost {
	h := &fakeHost{
		ents:    make(map[core.Entity]*fakeEntity),
		prefabs: map[string]bool{"bullet": true, "drone": true},
	}
	h.sched = engine.NewScheduler(engine.WithFaultHandler(func(_ core.Entity, err error) {
		h.faults = append(h.faults, err)
	}))
	return h
}

func (h *fakeHost) add(e *fakeEntity) core.Entity {
	h.next++
	if e.rot == (vmath.Quat{}) {
		e.rot = vmath.QuatIdentity
	}
	h.ents[h.next] = e
	return h.next
}

func (h *fakeHost) exec(e core.Entity) *pattern.Exec {
	return &pattern.Exec{Host: h, Runner: h.sched, Entity: e}
}

// frames runs n frame passes of dt
func (h *fakeHost) frames(n int, dt time.Duration) {
	for range n {
		h.sched.Update(dt)
	}
}

// fixed runs n physics passes of dt
func (h *fakeHost) fixed(n int, dt time.Duration) {
	for range n {
		h.sched.FixedUpdate(dt)
	}
}

func (h *fakeHost) Alive(e core.Entity) bool {
	_, ok := h.ents[e]
	return ok
}

func (h *fakeHost) Position(e core.Entity) (vmath.Vec3F, bool) {
	if ent, ok := h.ents[e]; ok {
		return ent.pos, true
	}
	return vmath.Vec3F{}, false
}

func (h *fakeHost) SetPosition(e core.Entity, p vmath.Vec3F) {
	if ent, ok := h.ents[e]; ok {
		ent.pos = p
	}
}

func (h *fakeHost) Orientation(e core.Entity) (vmath.Quat, bool) {
	if ent, ok := h.ents[e]; ok {
		return ent.rot, true
	}
	return vmath.Quat{}, false
}

func (h *fakeHost) SetOrientation(e core.Entity, q vmath.Quat) {
	if ent, ok := h.ents[e]; ok {
		ent.rot = q
	}
}

func (h *fakeHost) Forward(e core.Entity) (vmath.Vec3F, bool) {
	if ent, ok := h.ents[e]; ok {
		return vmath.QuatForward(ent.rot), true
	}
	return vmath.Vec3F{}, false
}

func (h *fakeHost) Velocity(e core.Entity) (vmath.Vec3F, bool) {
	if ent, ok := h.ents[e]; ok && ent.hasBody {
		return ent.vel, true
	}
	return vmath.Vec3F{}, false
}

func (h *fakeHost) SetVelocity(e core.Entity, v vmath.Vec3F) {
	if ent, ok := h.ents[e]; ok && ent.hasBody {
		ent.vel = v
	}
}

func (h *fakeHost) Instantiate(prefab string, pos vmath.Vec3F, rot vmath.Quat) (core.Entity, error) {
	if !h.prefabs[prefab] {
		return core.NoEntity, errUnknownPrefab
	}
	e := h.add(&fakeEntity{pos: pos, rot: rot, hasBody: true, prefab: prefab})
	h.spawns = append(h.spawns, spawnRecord{prefab: prefab, entity: e, pos: pos, rot: rot})
	return e, nil
}

func (h *fakeHost) AttachPattern(e core.Entity, p *pattern.Pattern) {
	if ent, ok := h.ents[e]; ok {
		ent.pattern = p
	}
}

func (h *fakeHost) TriggerRun(e core.Entity) {
	ent, ok := h.ents[e]
	if !ok {
		return
	}
	h.triggered = append(h.triggered, e)
	pattern.Dispatch(h.exec(e), ent.pattern.Clone())
}

func (h *fakeHost) Destroy(e core.Entity) {
	if _, ok := h.ents[e]; !ok {
		return
	}
	delete(h.ents, e)
	h.sched.Cancel(e)
}

type mark struct {
	name string
	at   time.Duration
}

// markAction records when it starts, the only side effect it has
type markAction struct {
	pattern.Base
	name  string
	marks *[]mark
}

func marker(name string, marks *[]mark) *markAction {
	return &markAction{Base: pattern.Defaults(), name: name, marks: marks}
}

func (a *markAction) Kind() pattern.Kind { return "mark" }

func (a *markAction) Clone() pattern.Action {
	c := *a
	return &c
}

func (a *markAction) Start(x *pattern.Exec) (pattern.Task, error) {
	*a.marks = append(*a.marks, mark{name: a.name, at: x.Runner.Now()})
	return nil, nil
}

func names(marks []mark) []string {
	out := make([]string, len(marks))
	for i, m := range marks {
		out[i] = m.name
	}
	return out
}

// detached flips an action to concurrent dispatch
func detached[A pattern.Action](a A) A {
	a.Common().WaitForCompletion = false
	return a
}

// disabled turns an action off
func disabled[A pattern.Action](a A) A {
	a.Common().Enabled = false
	return a
}

var errUnknownPrefab = errors.New("unknown prefab")
