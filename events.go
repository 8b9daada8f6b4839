package spindle

import (
	"fmt"
	"log/slog"
	"reflect"
)

// ReceiverId identifies a subscriber of an EventQueue.
type ReceiverId[E any] struct {
	id uint64
}

type subscriber struct {
	name string

	// sequence number of the next event this subscriber has not seen yet
	cursor uint64
}

// EventQueue is a broadcast buffer. Every subscriber receives each event
// sent after it subscribed exactly once, in send order.
//
// Events are dropped as soon as every current subscriber has received them.
// Events sent while there are no subscribers are dropped immediately.
//
// The zero value is an empty queue ready to use.
type EventQueue[E any] struct {
	// sequence number of events[0]
	offset uint64
	events []E

	subscribers map[uint64]*subscriber
	nextId      uint64
}

// Subscribe registers a new subscriber. It will only see events sent from now on.
func (q *EventQueue[E]) Subscribe() ReceiverId[E] {
	return q.subscribe("")
}

// Subscribe registers a new subscriber on the queue, naming the subscriber
// after the Caller type. The name shows up in debug logs.
func Subscribe[Caller, E any](q *EventQueue[E]) ReceiverId[E] {
	return q.subscribe(reflect.TypeFor[Caller]().String())
}

func (q *EventQueue[E]) subscribe(name string) ReceiverId[E] {
	if q.subscribers == nil {
		q.subscribers = map[uint64]*subscriber{}
	}

	q.nextId += 1

	q.subscribers[q.nextId] = &subscriber{
		name:   name,
		cursor: q.offset + uint64(len(q.events)),
	}

	slog.Debug(
		"Subscribed to event queue",
		slog.String("event", reflect.TypeFor[E]().String()),
		slog.String("subscriber", name),
	)

	return ReceiverId[E]{id: q.nextId}
}

// Unsubscribe removes the subscriber. Events only it had not yet received are dropped.
func (q *EventQueue[E]) Unsubscribe(id ReceiverId[E]) {
	delete(q.subscribers, id.id)
	q.compact()
}

// Send appends an event to the queue.
func (q *EventQueue[E]) Send(event E) {
	if len(q.subscribers) == 0 {
		// nobody would ever see this event
		q.offset += 1
		return
	}

	q.events = append(q.events, event)
}

// Receive returns all events sent since the previous call to Receive with the same id.
func (q *EventQueue[E]) Receive(id ReceiverId[E]) []E {
	var events []E

	q.ReceiveFunc(id, func(event E) {
		events = append(events, event)
	})

	return events
}

// ReceiveFunc is the callback version of Receive.
// The callback must not send events on the same queue.
func (q *EventQueue[E]) ReceiveFunc(id ReceiverId[E], fn func(E)) {
	sub := q.subscriberOf(id)

	end := q.offset + uint64(len(q.events))
	pending := q.events[sub.cursor-q.offset:]
	sub.cursor = end

	for _, event := range pending {
		fn(event)
	}

	q.compact()
}

// Pending returns the number of events the subscriber has not yet received.
func (q *EventQueue[E]) Pending(id ReceiverId[E]) int {
	sub := q.subscriberOf(id)
	return int(q.offset + uint64(len(q.events)) - sub.cursor)
}

// Subscribers returns the number of subscribers.
func (q *EventQueue[E]) Subscribers() int {
	return len(q.subscribers)
}

// Len returns the number of events retained in the queue.
func (q *EventQueue[E]) Len() int {
	return len(q.events)
}

func (q *EventQueue[E]) subscriberOf(id ReceiverId[E]) *subscriber {
	sub, ok := q.subscribers[id.id]
	if !ok {
		panic(fmt.Sprintf("receiver %d is not subscribed to queue of %s", id.id, reflect.TypeFor[E]()))
	}

	return sub
}

// compact drops all events that every subscriber has already received.
func (q *EventQueue[E]) compact() {
	end := q.offset + uint64(len(q.events))

	oldest := end
	for _, sub := range q.subscribers {
		oldest = min(oldest, sub.cursor)
	}

	consumed := int(oldest - q.offset)
	if consumed == 0 {
		return
	}

	remaining := copy(q.events, q.events[consumed:])
	clear(q.events[remaining:])

	q.events = q.events[:remaining]
	q.offset = oldest
}
