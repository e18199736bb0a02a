package engine

import "time"

// FixedStep converts variable frame time into whole fixed physics steps
// Falling more than MaxBehind steps behind drops the backlog instead of spiralling
type FixedStep struct {
	Step      time.Duration
	MaxBehind int

	acc time.Duration
}

// NewFixedStep creates an accumulator for step with a catch-up limit of maxBehind steps
func NewFixedStep(step time.Duration, maxBehind int) *FixedStep {
	if maxBehind < 1 {
		maxBehind = 1
	}
	return &FixedStep{Step: step, MaxBehind: maxBehind}
}

// Advance adds elapsed frame time and returns how many fixed steps are due
func (f *FixedStep) Advance(elapsed time.Duration) int {
	if f.Step <= 0 || elapsed <= 0 {
		return 0
	}
	f.acc += elapsed

	n := int(f.acc / f.Step)
	f.acc -= time.Duration(n) * f.Step

	if n > f.MaxBehind {
		n = f.MaxBehind
		f.acc = 0
	}
	return n
}

// Alpha is the leftover fraction of a step, for interpolating presentation
func (f *FixedStep) Alpha() float64 {
	if f.Step <= 0 {
		return 0
	}
	return float64(f.acc) / float64(f.Step)
}

// FrameTimer measures frame deltas against a pausable clock
type FrameTimer struct {
	clock    *PausableClock
	last     time.Duration
	maxFrame time.Duration
}

// NewFrameTimer clamps each delta to maxFrame so stalls don't become giant steps
func NewFrameTimer(clock *PausableClock, maxFrame time.Duration) *FrameTimer {
	return &FrameTimer{clock: clock, last: clock.Elapsed(), maxFrame: maxFrame}
}

// Tick returns game time elapsed since the previous Tick
func (ft *FrameTimer) Tick() time.Duration {
	now := ft.clock.Elapsed()
	dt := now - ft.last
	ft.last = now
	if dt < 0 {
		return 0
	}
	if ft.maxFrame > 0 && dt > ft.maxFrame {
		return ft.maxFrame
	}
	return dt
}
