package main

import unpacker "github.com/next-exp/xiareader_go/pkg"

// eventQueue puts packed events back in window order, so the writer sees
// the same sequence in parallel mode as in sequential mode.
type eventQueue struct {
	pending map[int]unpacker.PackedEvent
	next    int
}

func newEventQueue() *eventQueue {
	return &eventQueue{pending: make(map[int]unpacker.PackedEvent)}
}

// Push stores packed and returns every event that is now next in line.
func (q *eventQueue) Push(packed unpacker.PackedEvent) []unpacker.PackedEvent {
	q.pending[packed.Window.Index] = packed
	ready := make([]unpacker.PackedEvent, 0)
	for {
		event, ok := q.pending[q.next]
		if !ok {
			return ready
		}
		delete(q.pending, q.next)
		ready = append(ready, event)
		q.next++
	}
}

func (q *eventQueue) Pending() int {
	return len(q.pending)
}
