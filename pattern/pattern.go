package pattern

// Pattern is an ordered list of actions run against one entity
// Treat asset patterns as templates: Clone before running so no two runs share execution state
type Pattern struct {
	// Actions run in slice order
	Actions []Action
	// ResetOnRun clones every action before each Run, discarding loop counters and timers
	ResetOnRun bool
}

// New builds a pattern from actions
func New(actions ...Action) *Pattern {
	return &Pattern{Actions: actions}
}

// Clone returns a deep copy, nested actions and patterns included
func (p *Pattern) Clone() *Pattern {
	if p == nil {
		return nil
	}
	return &Pattern{
		Actions:    CloneActions(p.Actions),
		ResetOnRun: p.ResetOnRun,
	}
}

// Len returns the number of top-level actions
func (p *Pattern) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Actions)
}

// Run walks the action list against x.Entity
// Returns nil when every sequential action completed synchronously,
// otherwise the task the caller must schedule or poll
func (p *Pattern) Run(x *Exec) (Task, error) {
	actions := p.Actions
	if p.ResetOnRun {
		actions = CloneActions(p.Actions)
	}
	return runSequence(x, actions)
}
