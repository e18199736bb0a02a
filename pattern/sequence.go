package pattern

import (
	"errors"
	"fmt"

	bt "github.com/joeycumines/go-behaviortree"
)

var errTaskFailed = errors.New("pattern: task failed")

// sequence walks an action list, suspending on sequential actions that return a task
type sequence struct {
	x       *Exec
	actions []Action
	next    int
	current Task
}

func runSequence(x *Exec, actions []Action) (Task, error) {
	s := &sequence{x: x, actions: actions}
	status, err := s.advance()
	if err != nil {
		return nil, err
	}
	if status != bt.Running {
		return nil, nil
	}
	return bt.New(s.tick), nil
}

func (s *sequence) tick([]bt.Node) (bt.Status, error) {
	if s.current != nil {
		status, err := poll(s.current)
		if err != nil {
			return bt.Failure, err
		}
		if status == bt.Running {
			return bt.Running, nil
		}
		s.current = nil
	}
	return s.advance()
}

// advance starts actions until one suspends, the list ends, or the entity dies
func (s *sequence) advance() (bt.Status, error) {
	for s.next < len(s.actions) {
		if !s.x.Alive() {
			return bt.Success, nil
		}

		a := s.actions[s.next]
		s.next++

		common := a.Common()
		if !common.Enabled {
			continue
		}

		task, err := a.Start(s.x)
		if err != nil {
			err = fmt.Errorf("%s: %w", a.Kind(), err)
		}

		if !common.WaitForCompletion {
			if err != nil {
				s.x.Runner.Report(s.x.Entity, err)
			} else if task != nil {
				s.x.Runner.Go(s.x.Entity, task)
			}
			continue
		}

		if err != nil {
			return bt.Failure, err
		}
		if task != nil {
			s.current = task
			return bt.Running, nil
		}
	}
	return bt.Success, nil
}

// poll ticks a child task, a bare failure becomes an error so callers never lose it
func poll(t Task) (bt.Status, error) {
	status, err := t.Tick()
	if err != nil {
		return bt.Failure, err
	}
	if status == bt.Failure {
		return bt.Failure, errTaskFailed
	}
	return status, nil
}
