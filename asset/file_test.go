package asset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/vi-pattern/pattern"
	"github.com/lixenwraith/vi-pattern/vmath"
	"github.com/lixenwraith/vi-pattern/world"
)

func TestLoadDemoFile(t *testing.T) {
	b, err := LoadFile(filepath.Join("..", "assets", "demo.toml"))
	require.NoError(t, err)

	assert.Equal(t, []string{"bullet", "drone", "spiral"}, b.Names)
	require.Len(t, b.Prefabs, 3)

	turret := b.Prefabs[2]
	assert.Equal(t, "turret", turret.Name)
	assert.Equal(t, pattern.TriggerOnStart, turret.Trigger)
	assert.Equal(t, '@', turret.Glyph)
	assert.Same(t, b.Patterns["spiral"], turret.Pattern)

	w := world.New(world.Config{})
	require.NoError(t, b.Register(w))
	e, err := w.Instantiate("turret", vmath.V3FZero, vmath.QuatIdentity)
	require.NoError(t, err)

	for range 10 {
		w.Step(world.DefaultFixedStep)
	}
	assert.True(t, w.Alive(e))
	assert.Greater(t, w.Transforms.Len(), 1, "turret spawned children")
}

func TestDecodeBundleErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{
			name: "missing pattern reference",
			doc:  "[[prefab]]\nname = \"a\"\npattern = \"nope\"\n",
			want: ErrNotFound,
		},
		{
			name: "bad trigger",
			doc:  "[[prefab]]\nname = \"a\"\ntrigger = \"sometimes\"\n",
			want: pattern.ErrUnknownTrigger,
		},
		{
			name: "unknown top-level key",
			doc:  "[[sprite]]\nname = \"a\"\n",
			want: ErrUnknownField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBundle([]byte(tt.doc))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := DecodeBundle([]byte("[[pattern]]\n[[pattern.action]]\nkind = \"destroy\"\n"))
	assert.ErrorContains(t, err, "name required")

	_, err = DecodeBundle([]byte("[[pattern]]\nname = \"x\"\n[[pattern]]\nname = \"x\"\n"))
	assert.ErrorContains(t, err, "defined twice")
}

func TestEncodeBundleRoundTrip(t *testing.T) {
	patterns := map[string]*pattern.Pattern{
		"a": pattern.New(pattern.NewWaitAction(1)),
		"b": samplePattern(),
	}
	data, err := EncodeBundle([]string{"b", "a"}, patterns)
	require.NoError(t, err)

	b, err := DecodeBundle(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, b.Names)
	assert.Equal(t, patterns["b"], b.Patterns["b"])
	assert.Empty(t, b.Prefabs)

	_, err = EncodeBundle([]string{"c"}, patterns)
	assert.ErrorIs(t, err, ErrNotFound)
}
