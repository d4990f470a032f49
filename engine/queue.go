package engine

// =============================================================================
// EVENT QUEUE - Date-keyed pending events, FIFO within a day
// =============================================================================

// eventQueue holds pending events keyed by due date. Same-day dispatch
// order is insertion order: the order events were enqueued is the order
// they come back out. This is an explicit contract, not an artifact of
// the container, and tests pin it down.
type eventQueue[T any] struct {
	byDate map[Date][]T
}

func newEventQueue[T any]() *eventQueue[T] {
	return &eventQueue[T]{byDate: make(map[Date][]T)}
}

// push enqueues an event under its due date.
func (q *eventQueue[T]) push(d Date, item T) {
	q.byDate[d] = append(q.byDate[d], item)
}

// pop removes and returns all events due on a date, in insertion order.
func (q *eventQueue[T]) pop(d Date) []T {
	items, ok := q.byDate[d]
	if !ok {
		return nil
	}
	delete(q.byDate, d)
	return items
}

// pending returns the total number of queued events.
func (q *eventQueue[T]) pending() int {
	n := 0
	for _, items := range q.byDate {
		n += len(items)
	}
	return n
}
