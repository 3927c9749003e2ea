package ecs

// DefaultEventLimit bounds a world's event backlog when nothing drains it.
const DefaultEventLimit = 1024

// Event is something the engine published, e.g. a step of the command queue.
type Event struct {
	Type string
	Data any
}

// EventQueue keeps the most recent events in publish order. Once Limit is
// reached the oldest event is discarded for each new one.
type EventQueue struct {
	Limit   int
	items   []Event
	dropped int
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultEventLimit
	}
	if len(q.items) >= limit {
		n := len(q.items) - limit + 1
		q.items = append(q.items[:0], q.items[n:]...)
		q.dropped += n
	}
	q.items = append(q.items, evt)
}

func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

// Dropped counts events discarded since the last Drain.
func (q *EventQueue) Dropped() int {
	if q == nil {
		return 0
	}
	return q.dropped
}

// Drain returns the retained events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil {
		return nil
	}
	out := q.items
	q.items = nil
	q.dropped = 0
	if len(out) == 0 {
		return nil
	}
	return out
}
