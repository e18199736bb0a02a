package asset

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/BurntSushi/toml"

	"github.com/lixenwraith/vi-pattern/pattern"
	"github.com/lixenwraith/vi-pattern/world"
)

type prefabDoc struct {
	Name    string `toml:"name"`
	Body    bool   `toml:"body"`
	Pattern string `toml:"pattern,omitempty"`
	Trigger string `toml:"trigger"`
	Glyph   string `toml:"glyph"`
}

type bundleDoc struct {
	Prefabs  []prefabDoc  `toml:"prefab,omitempty"`
	Patterns []patternDoc `toml:"pattern,omitempty"`
}

// Bundle is a decoded asset file: named patterns and the prefabs that use them
type Bundle struct {
	Prefabs  []world.Prefab
	Patterns map[string]*pattern.Pattern
	// Names lists patterns in file order
	Names []string
}

// Register adds every prefab to w
func (b *Bundle) Register(w *world.World) error {
	for _, p := range b.Prefabs {
		if err := w.RegisterPrefab(p); err != nil {
			return err
		}
	}
	return nil
}

// LoadFile reads a bundle from a TOML file
func LoadFile(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read asset file: %w", err)
	}
	b, err := DecodeBundle(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// DecodeBundle parses [[pattern]] and [[prefab]] tables
// Prefab pattern fields name a pattern in the same document
func DecodeBundle(data []byte) (*Bundle, error) {
	var doc bundleDoc
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	if err := checkUndecoded(md); err != nil {
		return nil, err
	}

	b := &Bundle{Patterns: make(map[string]*pattern.Pattern, len(doc.Patterns))}
	for i := range doc.Patterns {
		pd := &doc.Patterns[i]
		if pd.Name == "" {
			return nil, fmt.Errorf("pattern[%d]: name required", i)
		}
		if _, dup := b.Patterns[pd.Name]; dup {
			return nil, fmt.Errorf("pattern %q: defined twice", pd.Name)
		}
		p, err := decodePattern(pd, fmt.Sprintf("pattern.%s.action", pd.Name))
		if err != nil {
			return nil, err
		}
		b.Patterns[pd.Name] = p
		b.Names = append(b.Names, pd.Name)
	}

	for i, fd := range doc.Prefabs {
		if fd.Name == "" {
			return nil, fmt.Errorf("prefab[%d]: name required", i)
		}
		trigger, err := pattern.ParseTrigger(fd.Trigger)
		if err != nil {
			return nil, fmt.Errorf("prefab %q: %w", fd.Name, err)
		}
		pf := world.Prefab{Name: fd.Name, Body: fd.Body, Trigger: trigger}
		if fd.Pattern != "" {
			p, ok := b.Patterns[fd.Pattern]
			if !ok {
				return nil, fmt.Errorf("prefab %q: %w: pattern %q", fd.Name, ErrNotFound, fd.Pattern)
			}
			pf.Pattern = p
		}
		if fd.Glyph != "" {
			pf.Glyph, _ = utf8.DecodeRuneInString(fd.Glyph)
		}
		b.Prefabs = append(b.Prefabs, pf)
	}
	return b, nil
}

// EncodeBundle writes patterns under their names, in the order given by names
func EncodeBundle(names []string, patterns map[string]*pattern.Pattern) ([]byte, error) {
	var doc bundleDoc
	for _, name := range names {
		p, ok := patterns[name]
		if !ok {
			return nil, fmt.Errorf("%w: pattern %q", ErrNotFound, name)
		}
		pd, err := encodePattern(p)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", name, err)
		}
		pd.Name = name
		doc.Patterns = append(doc.Patterns, *pd)
	}
	return encodeDoc(doc)
}
