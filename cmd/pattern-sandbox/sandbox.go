package main

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/vi-pattern/asset"
	"github.com/lixenwraith/vi-pattern/audio"
	"github.com/lixenwraith/vi-pattern/config"
	"github.com/lixenwraith/vi-pattern/core"
	"github.com/lixenwraith/vi-pattern/engine"
	"github.com/lixenwraith/vi-pattern/event"
	"github.com/lixenwraith/vi-pattern/vmath"
	"github.com/lixenwraith/vi-pattern/world"
)

var (
	styleBg    = tcell.StyleDefault.Background(tcell.NewRGBColor(26, 27, 38))
	styleHUD   = styleBg.Foreground(tcell.NewRGBColor(200, 200, 200))
	styleFault = styleBg.Foreground(tcell.NewRGBColor(255, 80, 80))
	styleRoot  = styleBg.Foreground(tcell.NewRGBColor(0, 255, 0)).Bold(true)
	styleBody  = styleBg.Foreground(tcell.NewRGBColor(0, 220, 255))
	styleOther = styleBg.Foreground(tcell.NewRGBColor(255, 160, 50))
)

type sandbox struct {
	screen tcell.Screen
	world  *world.World
	clock  *engine.PausableClock
	timer  *engine.FrameTimer
	cues   *audio.CuePlayer
	logger *slog.Logger

	cfg    config.Config
	glyphs map[string]rune
	spawn  func(w *world.World) (core.Entity, error)
	root   core.Entity

	zoom      float64
	lastFault string
	finished  bool
}

func newSandbox(cfg config.Config, logger *slog.Logger, b *asset.Bundle, spawn func(*world.World) (core.Entity, error)) (*sandbox, error) {
	w := world.New(world.Config{
		FixedStep:  cfg.FixedStep,
		MaxCatchUp: cfg.MaxCatchUp,
		CullRadius: cfg.CullRadius,
		Logger:     logger,
	})
	if err := b.Register(w); err != nil {
		return nil, err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.SetStyle(styleBg)
	screen.HideCursor()

	clock := engine.NewPausableClock(engine.SystemTime{})
	sb := &sandbox{
		screen: screen,
		world:  w,
		clock:  clock,
		timer:  engine.NewFrameTimer(clock, 250*time.Millisecond),
		logger: logger,
		cfg:    cfg,
		glyphs: make(map[string]rune, len(b.Prefabs)),
		spawn:  spawn,
		zoom:   1,
	}
	for _, p := range b.Prefabs {
		if p.Glyph != 0 {
			sb.glyphs[p.Name] = p.Glyph
		}
	}

	if cfg.Audio {
		sb.cues = audio.NewCuePlayer()
		if err := sb.cues.Initialize(); err != nil {
			logger.Warn("audio unavailable", "err", err)
			sb.cues = nil
		}
	}

	if err := sb.restart(); err != nil {
		sb.fini()
		return nil, err
	}
	return sb, nil
}

func (sb *sandbox) fini() {
	if sb.finished {
		return
	}
	sb.finished = true
	if sb.cues != nil {
		sb.cues.Cleanup()
	}
	sb.screen.Fini()
}

func (sb *sandbox) restart() error {
	sb.world.Clear()
	sb.world.Events().Discard()
	sb.lastFault = ""
	root, err := sb.spawn(sb.world)
	if err != nil {
		return fmt.Errorf("spawn root: %w", err)
	}
	sb.root = root
	sb.logger.Info("root spawned", "entity", root)
	return nil
}

func (sb *sandbox) run() error {
	events := make(chan tcell.Event, 64)
	core.Go(func() {
		for {
			ev := sb.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	})

	ticker := time.NewTicker(sb.cfg.FrameDuration())
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			done, err := sb.handle(ev)
			if err != nil || done {
				return err
			}
		case <-ticker.C:
			sb.frame()
		}
	}
}

func (sb *sandbox) handle(ev tcell.Event) (bool, error) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return true, nil
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return true, nil
			case ' ':
				sb.clock.Toggle()
			case 'r':
				return false, sb.restart()
			case 't':
				sb.world.TriggerRun(sb.root)
			case 'e':
				sb.world.SetEnabled(sb.root, !sb.world.Enabled(sb.root))
			case '+', '=':
				sb.zoom = math.Min(sb.zoom*1.25, 8)
			case '-':
				sb.zoom = math.Max(sb.zoom/1.25, 0.125)
			}
		}
	case *tcell.EventResize:
		sb.screen.Sync()
	}
	return false, nil
}

func (sb *sandbox) frame() {
	dt := sb.timer.Tick()
	if dt > 0 {
		scaled := time.Duration(float64(dt) * sb.cfg.TimeScale)
		sb.world.Step(scaled)
	}

	evs := sb.world.Events().Consume()
	for _, ev := range evs {
		if ev.Type != event.EventPatternFailed {
			continue
		}
		if p, ok := ev.Payload.(*event.FaultPayload); ok {
			sb.lastFault = fmt.Sprintf("%s: %v", p.Entity, p.Err)
		}
	}
	if sb.cues != nil {
		sb.cues.Consume(evs)
	}

	sb.draw()
}

func (sb *sandbox) draw() {
	sb.screen.Clear()
	width, height := sb.screen.Size()
	cx, cy := width/2, height/2

	for _, e := range sb.world.Transforms.Entities() {
		t, _ := sb.world.Transforms.Get(e)
		x, y := project(t.Position, cx, cy, sb.zoom)
		if x < 0 || y < 0 || x >= width || y >= height-1 {
			continue
		}
		sb.screen.SetContent(x, y, sb.glyph(e, t), nil, sb.style(e))
	}

	status := "running"
	if sb.clock.IsPaused() {
		status = "paused"
	}
	header := fmt.Sprintf("%s | root %s | zoom %.2f | [space] pause [r] restart [t] trigger [e] enable [+/-] zoom [q] quit",
		status, sb.root, sb.zoom)
	drawString(sb.screen, 0, 0, header, styleHUD)

	row := 1
	for _, m := range sb.world.Status().Snapshot() {
		drawString(sb.screen, 0, row, fmt.Sprintf("%-20s %s", m.Key, m.Value), styleHUD)
		row++
	}
	if sb.lastFault != "" {
		drawString(sb.screen, 0, height-1, "fault: "+sb.lastFault, styleFault)
	}
	sb.screen.Show()
}

func (sb *sandbox) glyph(e core.Entity, t world.Transform) rune {
	if name, ok := sb.world.Origins.Get(e); ok {
		if g, ok := sb.glyphs[name]; ok {
			return g
		}
	}
	if sb.world.Bodies.Has(e) {
		return headingRune(t.Forward())
	}
	return '*'
}

func (sb *sandbox) style(e core.Entity) tcell.Style {
	switch {
	case e == sb.root:
		return styleRoot
	case sb.world.Bodies.Has(e):
		return styleBody
	default:
		return styleOther
	}
}

// project maps the XZ plane onto the screen, +Z up, cells are twice as tall as wide
func project(p vmath.Vec3F, cx, cy int, zoom float64) (int, int) {
	x := cx + int(math.Round(p.X*zoom*2))
	y := cy - int(math.Round(p.Z*zoom))
	return x, y
}

// headingRune picks an arrow for a forward vector on the XZ plane
func headingRune(fwd vmath.Vec3F) rune {
	arrows := [...]rune{'↑', '↗', '→', '↘', '↓', '↙', '←', '↖'}
	angle := math.Atan2(fwd.X, fwd.Z)
	idx := int(math.Round(angle/(math.Pi/4))) & 7
	return arrows[idx]
}

func drawString(s tcell.Screen, x, y int, text string, style tcell.Style) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
