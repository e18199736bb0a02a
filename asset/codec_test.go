package asset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/vi-pattern/core"
	"github.com/lixenwraith/vi-pattern/pattern"
	"github.com/lixenwraith/vi-pattern/vmath"
)

func samplePattern() *pattern.Pattern {
	spawn := pattern.NewSpawnAction("bullet")
	spawn.Offset = vmath.Vec3F{Z: 1}
	spawn.OffsetIncrement = vmath.Vec3F{X: 0.5}
	spawn.OffsetMax = vmath.Vec3F{X: 2, Y: math.Inf(1), Z: math.Inf(1)}
	spawn.RotationIncrement = vmath.Vec3F{Y: 15}
	spawn.Pattern = pattern.New(pattern.NewSetVelocityAction(10, 0))

	detached := pattern.NewWaitAction(3)
	detached.WaitForCompletion = false
	disabled := pattern.NewDestroyAction()
	disabled.Enabled = false

	forever := pattern.NewRepeatPatternAction(pattern.New(pattern.NewWaitAction(0.5)), 0)
	forever.RepeatForever = true

	p := pattern.New(
		pattern.NewRepeatActionsAction(4, spawn, pattern.NewWaitAction(0.1)),
		pattern.NewRunPatternAction(pattern.New(pattern.NewSetVelocityAction(2, 1.5))),
		pattern.NewActionList(
			pattern.NewTargetPositionAction(vmath.Vec3F{X: 3, Z: -1}, 45),
			pattern.NewTargetObjectAction(core.Entity(7), 90),
		),
		detached,
		disabled,
		forever,
	)
	p.ResetOnRun = true
	return p
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	want := samplePattern()

	data, err := Encode(want)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	again, err := Encode(got)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}

func TestDecodeDefaults(t *testing.T) {
	doc := `
[[action]]
kind = "spawn"
prefab = "bullet"

[[action]]
kind = "wait"
`
	p, err := Decode([]byte(doc))
	require.NoError(t, err)
	require.Equal(t, 2, p.Len())

	spawn, ok := p.Actions[0].(*pattern.SpawnAction)
	require.True(t, ok)
	assert.Equal(t, pattern.Unbounded, spawn.OffsetMax)
	assert.Equal(t, pattern.Unbounded, spawn.RotationMax)
	assert.True(t, spawn.Enabled)
	assert.True(t, spawn.WaitForCompletion)
	assert.False(t, p.ResetOnRun)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{
			name: "unknown kind",
			doc:  "[[action]]\nkind = \"teleport\"\n",
			want: ErrUnknownKind,
		},
		{
			name: "unknown nested kind",
			doc:  "[[action]]\nkind = \"action_list\"\n[[action.actions]]\nkind = \"fly\"\n",
			want: ErrUnknownKind,
		},
		{
			name: "unknown field",
			doc:  "[[action]]\nkind = \"wait\"\nsecs = 2.0\n",
			want: ErrUnknownField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := Decode([]byte("[[action]\n"))
	assert.Error(t, err, "syntax error")
}

func TestEncodeNil(t *testing.T) {
	_, err := Encode(nil)
	assert.ErrorIs(t, err, pattern.ErrMissingPattern)
}
