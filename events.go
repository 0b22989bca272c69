package ggmix

import "sync"

// Listener receives topology change notifications.
// Notifications are delivered on the render goroutine after a paint, in the
// order the changes happened.
type Listener interface {
	ChannelsChanged()
	UnitsChanged()
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	OnChannels func()
	OnUnits    func()
}

// ChannelsChanged implements Listener.
func (f ListenerFuncs) ChannelsChanged() {
	if f.OnChannels != nil {
		f.OnChannels()
	}
}

// UnitsChanged implements Listener.
func (f ListenerFuncs) UnitsChanged() {
	if f.OnUnits != nil {
		f.OnUnits()
	}
}

// Notifier is the change sink registries report to. It is handed to a
// registry at construction and never replaced.
type Notifier interface {
	NotifyChannelsChanged()
	NotifyUnitsChanged()
}

type changeKind uint8

const (
	channelsChanged changeKind = iota + 1
	unitsChanged
)

// EventQueue is a Notifier that buffers notifications until Drain is called.
// Producers may be any goroutine; Drain is called by the render loop.
type EventQueue struct {
	mu        sync.Mutex
	pending   []changeKind
	listeners []subscription
	nextID    uint64
}

type subscription struct {
	id uint64
	l  Listener
}

// NewEventQueue creates an empty queue.
func NewEventQueue() *EventQueue {
	return &EventQueue{}
}

// Subscribe adds l to the delivery list. The returned function removes it
// again and may be called more than once.
func (q *EventQueue) Subscribe(l Listener) (unsubscribe func()) {
	q.mu.Lock()
	q.nextID++
	id := q.nextID
	q.listeners = append(q.listeners, subscription{id: id, l: l})
	q.mu.Unlock()

	return func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		for i, s := range q.listeners {
			if s.id == id {
				q.listeners = append(q.listeners[:i], q.listeners[i+1:]...)
				return
			}
		}
	}
}

// NotifyChannelsChanged implements Notifier.
func (q *EventQueue) NotifyChannelsChanged() { q.push(channelsChanged) }

// NotifyUnitsChanged implements Notifier.
func (q *EventQueue) NotifyUnitsChanged() { q.push(unitsChanged) }

func (q *EventQueue) push(k changeKind) {
	q.mu.Lock()
	// Back-to-back duplicates carry no extra information.
	if n := len(q.pending); n == 0 || q.pending[n-1] != k {
		q.pending = append(q.pending, k)
	}
	q.mu.Unlock()
}

// Pending returns the number of undelivered notifications.
func (q *EventQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Drain delivers all pending notifications to the current listeners and
// returns how many were delivered. Listeners run without the queue lock held,
// so they may notify or subscribe again; such notifications wait for the next
// Drain.
func (q *EventQueue) Drain() int {
	q.mu.Lock()
	pending := q.pending
	q.pending = nil
	listeners := append([]subscription(nil), q.listeners...)
	q.mu.Unlock()

	for _, k := range pending {
		for _, s := range listeners {
			switch k {
			case channelsChanged:
				s.l.ChannelsChanged()
			case unitsChanged:
				s.l.UnitsChanged()
			}
		}
	}
	return len(pending)
}

type nopNotifier struct{}

func (nopNotifier) NotifyChannelsChanged() {}
func (nopNotifier) NotifyUnitsChanged()    {}
