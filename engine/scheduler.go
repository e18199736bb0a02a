package engine

import (
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	bt "github.com/joeycumines/go-behaviortree"

	"github.com/lixenwraith/vi-pattern/core"
	"github.com/lixenwraith/vi-pattern/pattern"
	"github.com/lixenwraith/vi-pattern/status"
)

var errTaskFailed = errors.New("engine: task failed")

// FaultHandler observes configuration errors surfaced by tasks
type FaultHandler func(owner core.Entity, err error)

// Scheduler runs pattern tasks cooperatively on the caller's goroutine
// Each Update/FixedUpdate is one pass polling every live task once
// Tasks added during a pass are first polled on the following pass
type Scheduler struct {
	now   time.Duration
	dt    float64
	phase pattern.Phase

	tasks   []*scheduled
	pending []*scheduled

	logger  *slog.Logger
	onFault FaultHandler

	// Cached metric pointers
	statActive     *atomic.Int64
	statSpawned    *atomic.Int64
	statFailed     *atomic.Int64
	statTicks      *atomic.Int64
	statFixedTicks *atomic.Int64
}

type scheduled struct {
	owner core.Entity
	task  pattern.Task
	done  bool
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithLogger sets the diagnostics logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStatus publishes scheduler metrics to reg
func WithStatus(reg *status.Registry) Option {
	return func(s *Scheduler) { s.bindStatus(reg) }
}

// WithFaultHandler registers a callback invoked for every reported error after logging
func WithFaultHandler(fn FaultHandler) Option {
	return func(s *Scheduler) { s.onFault = fn }
}

// NewScheduler creates an idle scheduler at time zero
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		logger: slog.New(slog.DiscardHandler),
	}
	// Private registry until WithStatus replaces it, keeps the hot path branch-free
	s.bindStatus(status.NewRegistry())
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scheduler) bindStatus(reg *status.Registry) {
	s.statActive = reg.Ints.Get("tasks.active")
	s.statSpawned = reg.Ints.Get("tasks.spawned")
	s.statFailed = reg.Ints.Get("tasks.failed")
	s.statTicks = reg.Ints.Get("engine.ticks")
	s.statFixedTicks = reg.Ints.Get("engine.fixed_ticks")
}

// Go schedules task under owner, polled from the next pass
func (s *Scheduler) Go(owner core.Entity, task pattern.Task) {
	if task == nil {
		return
	}
	s.pending = append(s.pending, &scheduled{owner: owner, task: task})
	s.statSpawned.Add(1)
	s.statActive.Add(1)
}

// Report logs a configuration error as host diagnostics
func (s *Scheduler) Report(owner core.Entity, err error) {
	if err == nil {
		return
	}
	s.statFailed.Add(1)
	s.logger.Error("pattern task failed", "entity", owner, "phase", s.phase, "err", err)
	if s.onFault != nil {
		s.onFault(owner, err)
	}
}

// Cancel drops every task owned by owner, including one being polled right now
func (s *Scheduler) Cancel(owner core.Entity) int {
	n := 0
	for _, list := range [][]*scheduled{s.tasks, s.pending} {
		for _, t := range list {
			if t.owner == owner && !t.done {
				t.done = true
				n++
			}
		}
	}
	if n > 0 {
		s.statActive.Add(int64(-n))
		s.logger.Debug("tasks cancelled", "entity", owner, "count", n)
	}
	return n
}

// Phase is the pass currently running, or the last one run
func (s *Scheduler) Phase() pattern.Phase { return s.phase }

// Now is accumulated frame time
func (s *Scheduler) Now() time.Duration { return s.now }

// DeltaTime is the step of the current pass in seconds
func (s *Scheduler) DeltaTime() float64 { return s.dt }

// Len returns the number of live tasks
func (s *Scheduler) Len() int {
	n := 0
	for _, list := range [][]*scheduled{s.tasks, s.pending} {
		for _, t := range list {
			if !t.done {
				n++
			}
		}
	}
	return n
}

// Owned returns the number of live tasks owned by owner
func (s *Scheduler) Owned(owner core.Entity) int {
	n := 0
	for _, list := range [][]*scheduled{s.tasks, s.pending} {
		for _, t := range list {
			if t.owner == owner && !t.done {
				n++
			}
		}
	}
	return n
}

// Update advances frame time by dt and runs the frame pass
func (s *Scheduler) Update(dt time.Duration) {
	if dt > 0 {
		s.now += dt
	}
	s.statTicks.Add(1)
	s.pass(pattern.PhaseFrame, dt)
}

// FixedUpdate runs the physics pass with a fixed step of dt
func (s *Scheduler) FixedUpdate(dt time.Duration) {
	s.statFixedTicks.Add(1)
	s.pass(pattern.PhaseFixed, dt)
}

func (s *Scheduler) pass(phase pattern.Phase, dt time.Duration) {
	s.phase = phase
	s.dt = dt.Seconds()

	if len(s.pending) > 0 {
		s.tasks = append(s.tasks, s.pending...)
		s.pending = s.pending[:0:0]
	}

	for _, t := range s.tasks {
		if t.done {
			continue
		}
		status, err := t.task.Tick()
		if t.done {
			// Owner destroyed during its own poll
			continue
		}
		switch {
		case err != nil:
			s.finish(t)
			s.Report(t.owner, err)
		case status == bt.Failure:
			s.finish(t)
			s.Report(t.owner, errTaskFailed)
		case status != bt.Running:
			s.finish(t)
		}
	}

	live := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.done {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(s.tasks); i++ {
		s.tasks[i] = nil
	}
	s.tasks = live
}

func (s *Scheduler) finish(t *scheduled) {
	t.done = true
	s.statActive.Add(-1)
}

// Clear drops every task without running it
func (s *Scheduler) Clear() {
	for _, list := range [][]*scheduled{s.tasks, s.pending} {
		for _, t := range list {
			if !t.done {
				t.done = true
				s.statActive.Add(-1)
			}
		}
	}
	s.tasks = nil
	s.pending = nil
}
