// Package asset reads and writes pattern templates as TOML and keeps a sqlite library of them
package asset

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/lixenwraith/vi-pattern/core"
	"github.com/lixenwraith/vi-pattern/pattern"
	"github.com/lixenwraith/vi-pattern/vmath"
)

var (
	ErrUnknownKind  = errors.New("asset: unknown action kind")
	ErrUnknownField = errors.New("asset: unknown field")
	ErrNotFound     = errors.New("asset: not found")
)

type vec [3]float64

func toVec(v vmath.Vec3F) *vec { return &vec{v.X, v.Y, v.Z} }

// optVec omits zero vectors from the document
func optVec(v vmath.Vec3F) *vec {
	if v == vmath.V3FZero {
		return nil
	}
	return toVec(v)
}

func (v *vec) or(def vmath.Vec3F) vmath.Vec3F {
	if v == nil {
		return def
	}
	return vmath.Vec3F{X: v[0], Y: v[1], Z: v[2]}
}

func isUnbounded(v vmath.Vec3F) bool {
	return math.IsInf(v.X, 1) && math.IsInf(v.Y, 1) && math.IsInf(v.Z, 1)
}

// patternDoc is the on-disk form of a pattern
type patternDoc struct {
	Name       string      `toml:"name,omitempty"`
	ResetOnRun bool        `toml:"reset_on_run,omitempty"`
	Actions    []actionDoc `toml:"action,omitempty"`
}

// actionDoc is the union of every action variant's fields, discriminated by Kind
type actionDoc struct {
	Kind              string `toml:"kind"`
	Enabled           *bool  `toml:"enabled,omitempty"`
	WaitForCompletion *bool  `toml:"wait_for_completion,omitempty"`

	Pattern       *patternDoc `toml:"pattern,omitempty"`
	Actions       []actionDoc `toml:"actions,omitempty"`
	RepeatForever bool        `toml:"repeat_forever,omitempty"`
	RepeatCount   int         `toml:"repeat_count,omitzero"`

	Seconds float64 `toml:"seconds,omitzero"`

	Prefab            string `toml:"prefab,omitempty"`
	Offset            *vec   `toml:"offset,omitempty"`
	OffsetIncrement   *vec   `toml:"offset_increment,omitempty"`
	OffsetMax         *vec   `toml:"offset_max,omitempty"`
	Rotation          *vec   `toml:"rotation,omitempty"`
	RotationIncrement *vec   `toml:"rotation_increment,omitempty"`
	RotationMax       *vec   `toml:"rotation_max,omitempty"`

	Velocity     float64 `toml:"velocity,omitzero"`
	TimeToChange float64 `toml:"time_to_change,omitzero"`

	Target       *vec    `toml:"target,omitempty"`
	TargetEntity uint64  `toml:"target_entity,omitzero"`
	MaxDegrees   float64 `toml:"max_degrees_per_second,omitzero"`
}

// Encode writes p as a TOML document
func Encode(p *pattern.Pattern) ([]byte, error) {
	if p == nil {
		return nil, pattern.ErrMissingPattern
	}
	doc, err := encodePattern(p)
	if err != nil {
		return nil, err
	}
	return encodeDoc(doc)
}

func encodeDoc(doc any) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a document written by Encode
// Keys that no action variant defines are rejected
func Decode(data []byte) (*pattern.Pattern, error) {
	var doc patternDoc
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, fmt.Errorf("decode pattern: %w", err)
	}
	if err := checkUndecoded(md); err != nil {
		return nil, err
	}
	return decodePattern(&doc, "action")
}

func checkUndecoded(md toml.MetaData) error {
	keys := md.Undecoded()
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return fmt.Errorf("%w: %s", ErrUnknownField, strings.Join(names, ", "))
}

func encodePattern(p *pattern.Pattern) (*patternDoc, error) {
	actions, err := encodeActions(p.Actions)
	if err != nil {
		return nil, err
	}
	return &patternDoc{ResetOnRun: p.ResetOnRun, Actions: actions}, nil
}

func encodeActions(actions []pattern.Action) ([]actionDoc, error) {
	docs := make([]actionDoc, 0, len(actions))
	for i, a := range actions {
		d, err := encodeAction(a)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		docs = append(docs, d)
	}
	return docs, nil
}

func encodeAction(a pattern.Action) (actionDoc, error) {
	d := actionDoc{Kind: string(a.Kind())}
	if b := a.Common(); !b.Enabled || !b.WaitForCompletion {
		enabled, wait := b.Enabled, b.WaitForCompletion
		d.Enabled, d.WaitForCompletion = &enabled, &wait
	}

	var err error
	switch v := a.(type) {
	case *pattern.RunPatternAction:
		d.Pattern, err = encodeNested(v.Pattern)
	case *pattern.ActionList:
		d.Actions, err = encodeActions(v.Actions)
	case *pattern.RepeatPatternAction:
		d.RepeatForever, d.RepeatCount = v.RepeatForever, v.RepeatCount
		d.Pattern, err = encodeNested(v.Pattern)
	case *pattern.RepeatActionsAction:
		d.RepeatForever, d.RepeatCount = v.RepeatForever, v.RepeatCount
		d.Actions, err = encodeActions(v.Actions)
	case *pattern.WaitAction:
		d.Seconds = v.WaitSeconds
	case *pattern.SpawnAction:
		d.Prefab = v.Prefab
		d.Offset, d.OffsetIncrement = optVec(v.Offset), optVec(v.OffsetIncrement)
		d.Rotation, d.RotationIncrement = optVec(v.Rotation), optVec(v.RotationIncrement)
		if !isUnbounded(v.OffsetMax) {
			d.OffsetMax = toVec(v.OffsetMax)
		}
		if !isUnbounded(v.RotationMax) {
			d.RotationMax = toVec(v.RotationMax)
		}
		d.Pattern, err = encodeNested(v.Pattern)
	case *pattern.SetVelocityAction:
		d.Velocity, d.TimeToChange = v.Velocity, v.TimeToChange
	case *pattern.TargetPositionAction:
		d.Target, d.MaxDegrees = optVec(v.Target), v.MaxDegreesPerSecond
	case *pattern.TargetObjectAction:
		d.TargetEntity, d.MaxDegrees = uint64(v.Target), v.MaxDegreesPerSecond
	case *pattern.DestroyAction:
	default:
		return d, fmt.Errorf("%w: %s", ErrUnknownKind, a.Kind())
	}
	return d, err
}

func encodeNested(p *pattern.Pattern) (*patternDoc, error) {
	if p == nil {
		return nil, nil
	}
	return encodePattern(p)
}

func decodePattern(doc *patternDoc, path string) (*pattern.Pattern, error) {
	actions, err := decodeActions(doc.Actions, path)
	if err != nil {
		return nil, err
	}
	p := pattern.New(actions...)
	p.ResetOnRun = doc.ResetOnRun
	return p, nil
}

func decodeActions(docs []actionDoc, path string) ([]pattern.Action, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	actions := make([]pattern.Action, 0, len(docs))
	for i := range docs {
		a, err := decodeAction(&docs[i], fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, nil
}

func decodeNested(doc *patternDoc, path string) (*pattern.Pattern, error) {
	if doc == nil {
		return nil, nil
	}
	return decodePattern(doc, path+".pattern.action")
}

func decodeAction(d *actionDoc, path string) (pattern.Action, error) {
	var (
		a   pattern.Action
		err error
	)
	switch pattern.Kind(d.Kind) {
	case pattern.KindRunPattern:
		v := pattern.NewRunPatternAction(nil)
		v.Pattern, err = decodeNested(d.Pattern, path)
		a = v
	case pattern.KindActionList:
		v := pattern.NewActionList()
		v.Actions, err = decodeActions(d.Actions, path+".actions")
		a = v
	case pattern.KindRepeatPattern:
		v := pattern.NewRepeatPatternAction(nil, d.RepeatCount)
		v.RepeatForever = d.RepeatForever
		v.Pattern, err = decodeNested(d.Pattern, path)
		a = v
	case pattern.KindRepeatActions:
		v := pattern.NewRepeatActionsAction(d.RepeatCount)
		v.RepeatForever = d.RepeatForever
		v.Actions, err = decodeActions(d.Actions, path+".actions")
		a = v
	case pattern.KindWait:
		a = pattern.NewWaitAction(d.Seconds)
	case pattern.KindSpawn:
		v := pattern.NewSpawnAction(d.Prefab)
		v.Offset = d.Offset.or(vmath.V3FZero)
		v.OffsetIncrement = d.OffsetIncrement.or(vmath.V3FZero)
		v.OffsetMax = d.OffsetMax.or(pattern.Unbounded)
		v.Rotation = d.Rotation.or(vmath.V3FZero)
		v.RotationIncrement = d.RotationIncrement.or(vmath.V3FZero)
		v.RotationMax = d.RotationMax.or(pattern.Unbounded)
		v.Pattern, err = decodeNested(d.Pattern, path)
		a = v
	case pattern.KindSetVelocity:
		a = pattern.NewSetVelocityAction(d.Velocity, d.TimeToChange)
	case pattern.KindTargetPosition:
		a = pattern.NewTargetPositionAction(d.Target.or(vmath.V3FZero), d.MaxDegrees)
	case pattern.KindTargetObject:
		a = pattern.NewTargetObjectAction(core.Entity(d.TargetEntity), d.MaxDegrees)
	case pattern.KindDestroy:
		a = pattern.NewDestroyAction()
	default:
		return nil, fmt.Errorf("%s: %w: %q", path, ErrUnknownKind, d.Kind)
	}
	if err != nil {
		return nil, err
	}

	b := a.Common()
	if d.Enabled != nil {
		b.Enabled = *d.Enabled
	}
	if d.WaitForCompletion != nil {
		b.WaitForCompletion = *d.WaitForCompletion
	}
	return a, nil
}
