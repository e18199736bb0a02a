package event

import (
	"sync/atomic"
)

const (
	// QueueSize is the ring capacity, a power of two
	QueueSize = 1024
	queueMask = QueueSize - 1
)

type slot struct {
	ev    GameEvent
	ready atomic.Bool
}

// EventQueue is a lock-free multi-producer single-consumer ring of world events
// Producers reserve a slot with one atomic add and flag it ready once written,
// the consumer stops at the first slot still being written
// When full the oldest unread events are overwritten
type EventQueue struct {
	slots       [QueueSize]slot
	head        atomic.Uint64
	tail        atomic.Uint64
	overwritten atomic.Uint64
}

func NewEventQueue() *EventQueue {
	return &EventQueue{}
}

// Push appends ev, safe from any goroutine
func (eq *EventQueue) Push(ev GameEvent) {
	pos := eq.tail.Add(1) - 1
	s := &eq.slots[pos&queueMask]
	s.ev = ev
	s.ready.Store(true)

	// Drag head forward when the writer lapped unread events
	for {
		head := eq.head.Load()
		if pos+1-head <= QueueSize {
			return
		}
		if eq.head.CompareAndSwap(head, pos+1-QueueSize) {
			eq.overwritten.Add(pos + 1 - QueueSize - head)
			return
		}
	}
}

// Consume removes and returns pending events oldest first, nil when empty
// Only one goroutine may consume
func (eq *EventQueue) Consume() []GameEvent {
	for {
		seen, tail := eq.head.Load(), eq.tail.Load()
		if tail <= seen {
			return nil
		}
		n := min(tail-seen, QueueSize)
		head := tail - n

		out := make([]GameEvent, 0, n)
		for pos := head; pos < tail; pos++ {
			s := &eq.slots[pos&queueMask]
			if !s.ready.Load() {
				break
			}
			out = append(out, s.ev)
			s.ready.Store(false)
		}

		if eq.head.CompareAndSwap(seen, head+uint64(len(out))) {
			if len(out) == 0 {
				return nil
			}
			return out
		}
	}
}

// Len is the approximate number of unread events
func (eq *EventQueue) Len() int {
	head, tail := eq.head.Load(), eq.tail.Load()
	if tail <= head {
		return 0
	}
	return int(min(tail-head, QueueSize))
}

// Overwritten counts events lost to overflow since creation
func (eq *EventQueue) Overwritten() uint64 {
	return eq.overwritten.Load()
}

// Discard drops every pending event
func (eq *EventQueue) Discard() {
	_ = eq.Consume()
}
