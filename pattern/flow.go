package pattern

import (
	"time"

	bt "github.com/joeycumines/go-behaviortree"
)

// RunPatternAction runs a clone of Pattern against the same entity
type RunPatternAction struct {
	Base
	Pattern *Pattern
}

func NewRunPatternAction(p *Pattern) *RunPatternAction {
	return &RunPatternAction{Base: Defaults(), Pattern: p}
}

func (a *RunPatternAction) Kind() Kind { return KindRunPattern }

func (a *RunPatternAction) Clone() Action {
	return &RunPatternAction{Base: a.Base, Pattern: a.Pattern.Clone()}
}

func (a *RunPatternAction) Start(x *Exec) (Task, error) {
	if a.Pattern == nil {
		return nil, ErrMissingPattern
	}
	return a.Pattern.Clone().Run(x)
}

// ActionList runs an inline list the way Pattern.Run does
type ActionList struct {
	Base
	Actions []Action
}

func NewActionList(actions ...Action) *ActionList {
	return &ActionList{Base: Defaults(), Actions: actions}
}

func (a *ActionList) Kind() Kind { return KindActionList }

func (a *ActionList) Clone() Action {
	return &ActionList{Base: a.Base, Actions: CloneActions(a.Actions)}
}

func (a *ActionList) Start(x *Exec) (Task, error) {
	return runSequence(x, a.Actions)
}

// RepeatPatternAction re-runs Pattern RepeatCount times, or until the entity dies
// Pattern is the action's own copy, so state carries across iterations and starts unless the pattern resets itself
type RepeatPatternAction struct {
	Base
	Pattern       *Pattern
	RepeatForever bool
	RepeatCount   int
}

func NewRepeatPatternAction(p *Pattern, count int) *RepeatPatternAction {
	return &RepeatPatternAction{Base: Defaults(), Pattern: p, RepeatCount: count}
}

func (a *RepeatPatternAction) Kind() Kind { return KindRepeatPattern }

func (a *RepeatPatternAction) Clone() Action {
	c := *a
	c.Pattern = a.Pattern.Clone()
	return &c
}

func (a *RepeatPatternAction) Start(x *Exec) (Task, error) {
	if a.Pattern == nil {
		return nil, ErrMissingPattern
	}
	return runRepeat(x, a.RepeatForever, a.RepeatCount, func() (Task, error) {
		return a.Pattern.Run(x)
	})
}

// RepeatActionsAction re-runs an inline list, the list itself is never re-cloned between iterations
type RepeatActionsAction struct {
	Base
	Actions       []Action
	RepeatForever bool
	RepeatCount   int
}

func NewRepeatActionsAction(count int, actions ...Action) *RepeatActionsAction {
	return &RepeatActionsAction{Base: Defaults(), Actions: actions, RepeatCount: count}
}

func (a *RepeatActionsAction) Kind() Kind { return KindRepeatActions }

func (a *RepeatActionsAction) Clone() Action {
	c := *a
	c.Actions = CloneActions(a.Actions)
	return &c
}

func (a *RepeatActionsAction) Start(x *Exec) (Task, error) {
	return runRepeat(x, a.RepeatForever, a.RepeatCount, func() (Task, error) {
		return runSequence(x, a.Actions)
	})
}

// repeater drives the iterations of both repeat variants
type repeater struct {
	x       *Exec
	forever bool
	count   int
	started int
	body    func() (Task, error)
	current Task
}

func runRepeat(x *Exec, forever bool, count int, body func() (Task, error)) (Task, error) {
	r := &repeater{x: x, forever: forever, count: count, body: body}
	status, err := r.advance()
	if err != nil {
		return nil, err
	}
	if status != bt.Running {
		return nil, nil
	}
	return bt.New(r.tick), nil
}

func (r *repeater) tick([]bt.Node) (bt.Status, error) {
	if r.current != nil {
		status, err := poll(r.current)
		if err != nil {
			return bt.Failure, err
		}
		if status == bt.Running {
			return bt.Running, nil
		}
		r.current = nil
	}
	return r.advance()
}

func (r *repeater) advance() (bt.Status, error) {
	for r.forever || r.started < r.count {
		if !r.x.Alive() {
			return bt.Success, nil
		}
		task, err := r.body()
		if err != nil {
			return bt.Failure, err
		}
		r.started++
		if task != nil {
			r.current = task
			return bt.Running, nil
		}
		if r.forever {
			// An endless body that never suspends would spin the pass, resume next frame
			r.current = NextTick(r.x)
			return bt.Running, nil
		}
	}
	return bt.Success, nil
}

// WaitAction suspends the caller for WaitSeconds of scheduler time
type WaitAction struct {
	Base
	WaitSeconds float64
}

func NewWaitAction(seconds float64) *WaitAction {
	return &WaitAction{Base: Defaults(), WaitSeconds: seconds}
}

func (a *WaitAction) Kind() Kind { return KindWait }

func (a *WaitAction) Clone() Action {
	c := *a
	return &c
}

func (a *WaitAction) Start(x *Exec) (Task, error) {
	return Delay(x, a.WaitSeconds), nil
}

// Delay returns a task resuming on the first frame pass at least seconds after now
// Non-positive durations resume on the next frame pass
func Delay(x *Exec, seconds float64) Task {
	if seconds <= 0 {
		return NextTick(x)
	}
	deadline := x.Runner.Now() + time.Duration(seconds*float64(time.Second))
	return bt.New(func([]bt.Node) (bt.Status, error) {
		if x.Runner.Phase() != PhaseFrame || x.Runner.Now() < deadline {
			return bt.Running, nil
		}
		return bt.Success, nil
	})
}

// NextTick returns a task completing on its first frame pass
func NextTick(x *Exec) Task {
	return bt.New(func([]bt.Node) (bt.Status, error) {
		if x.Runner.Phase() != PhaseFrame {
			return bt.Running, nil
		}
		return bt.Success, nil
	})
}
