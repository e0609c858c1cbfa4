package nowplaying

import (
	"sync"

	"github.com/dmitrymomot/nowplaying/pkg/command"
	"github.com/dmitrymomot/nowplaying/pkg/media"
)

type eventKind int

const (
	eventSessionsChanged eventKind = iota + 1
	eventSession
	eventCommand
	eventRefresh
)

type event struct {
	kind     eventKind
	sessions []media.Session
	session  media.SessionEvent
	action   command.Action
}

// eventQueue is an unbounded single-consumer queue. post never blocks.
type eventQueue struct {
	mu     sync.Mutex
	items  []event
	ready  chan struct{}
	closed bool
}

func newEventQueue() *eventQueue {
	return &eventQueue{ready: make(chan struct{}, 1)}
}

func (q *eventQueue) post(ev event) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, ev)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
	return true
}

// drain takes everything queued so far, in order.
func (q *eventQueue) drain() []event {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

func (q *eventQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// close drops pending events and refuses new ones.
func (q *eventQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.items = nil
}
