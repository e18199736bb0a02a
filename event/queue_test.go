package event

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/vi-pattern/core"
	"github.com/lixenwraith/vi-pattern/vmath"
)

func TestEventQueue_FIFO(t *testing.T) {
	q := NewEventQueue()
	assert.Nil(t, q.Consume())

	EmitEntity(q, EventEntitySpawned, 1, "drone", vmath.Vec3F{X: 1}, 3)
	EmitFault(q, 2, errors.New("bad"), 4)
	assert.Equal(t, 2, q.Len())

	got := q.Consume()
	require.Len(t, got, 2)
	assert.Equal(t, EventEntitySpawned, got[0].Type)
	assert.Equal(t, int64(3), got[0].Frame)
	assert.Equal(t, &EntityPayload{Entity: 1, Prefab: "drone", Position: vmath.Vec3F{X: 1}}, got[0].Payload)
	assert.Equal(t, EventPatternFailed, got[1].Type)
	assert.Equal(t, core.Entity(2), got[1].Payload.(*FaultPayload).Entity)

	assert.Nil(t, q.Consume())
	assert.Equal(t, 0, q.Len())
}

func TestEventQueue_OverflowKeepsNewest(t *testing.T) {
	q := NewEventQueue()
	for i := range QueueSize + 10 {
		q.Push(GameEvent{Type: EventEntitySpawned, Frame: int64(i)})
	}
	assert.Equal(t, QueueSize, q.Len())
	assert.Equal(t, uint64(10), q.Overwritten())
	got := q.Consume()
	require.Len(t, got, QueueSize)
	assert.Equal(t, int64(10), got[0].Frame)
	assert.Equal(t, int64(QueueSize+9), got[len(got)-1].Frame)
}

func TestEventQueue_ConcurrentProducers(t *testing.T) {
	q := NewEventQueue()
	var wg sync.WaitGroup
	for p := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				q.Push(GameEvent{Type: EventEntityDestroyed, Frame: int64(p*1000 + i)})
			}
		}()
	}
	wg.Wait()
	assert.Len(t, q.Consume(), 400)
}

func TestEventType_String(t *testing.T) {
	assert.Equal(t, "entity_spawned", EventEntitySpawned.String())
	assert.Equal(t, "pattern_failed", EventPatternFailed.String())
	assert.Equal(t, "event(42)", EventType(42).String())
}

func TestEventQueue_Discard(t *testing.T) {
	q := NewEventQueue()
	q.Push(GameEvent{Type: EventWorldClear})
	q.Discard()
	assert.Equal(t, 0, q.Len())
}
