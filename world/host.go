package world

import (
	"github.com/lixenwraith/vi-pattern/core"
	"github.com/lixenwraith/vi-pattern/pattern"
	"github.com/lixenwraith/vi-pattern/vmath"
)

var _ pattern.Host = (*World)(nil)

// Alive reports whether e exists
func (w *World) Alive(e core.Entity) bool {
	return e.Valid() && w.Transforms.Has(e)
}

func (w *World) Position(e core.Entity) (vmath.Vec3F, bool) {
	t, ok := w.Transforms.Get(e)
	return t.Position, ok
}

func (w *World) SetPosition(e core.Entity, p vmath.Vec3F) {
	w.Transforms.Update(e, func(t *Transform) { t.Position = p })
}

func (w *World) Orientation(e core.Entity) (vmath.Quat, bool) {
	t, ok := w.Transforms.Get(e)
	return t.Rotation, ok
}

func (w *World) SetOrientation(e core.Entity, q vmath.Quat) {
	w.Transforms.Update(e, func(t *Transform) { t.Rotation = vmath.QuatNormalize(q) })
}

func (w *World) Forward(e core.Entity) (vmath.Vec3F, bool) {
	t, ok := w.Transforms.Get(e)
	if !ok {
		return vmath.Vec3F{}, false
	}
	return t.Forward(), true
}

// Velocity reports ok=false for entities without a body
func (w *World) Velocity(e core.Entity) (vmath.Vec3F, bool) {
	b, ok := w.Bodies.Get(e)
	return b.Velocity, ok
}

func (w *World) SetVelocity(e core.Entity, v vmath.Vec3F) {
	w.Bodies.Update(e, func(b *Body) { b.Velocity = v })
}
