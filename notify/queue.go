// Package notify provides the deferred-delivery dispatch queue used by
// package playlist and package controller to fan out listener callbacks
// (§5 "Listener/notifier plumbing"): a single-consumer queue per target so
// notifications never run while the poster holds its own lock, mirroring
// the snapshot-then-iterate fan-out in the teacher's distribution.Relay
// broadcasts, but posting onto a background goroutine instead of calling
// out synchronously under a lock.
package notify

import "log/slog"

// queueDepth bounds how many pending notifications a Queue buffers before
// it starts dropping the newest ones rather than blocking the poster.
const queueDepth = 256

// Queue is a single-consumer dispatch queue: Post enqueues a callback,
// and one background goroutine invokes queued callbacks in order.
type Queue struct {
	log  *slog.Logger
	ch   chan func()
	done chan struct{}
}

// NewQueue starts a Queue's background dispatch goroutine. Call Close
// when the owning object is torn down.
func NewQueue(log *slog.Logger) *Queue {
	if log == nil {
		log = slog.Default()
	}
	q := &Queue{
		log:  log.With("component", "notify-queue"),
		ch:   make(chan func(), queueDepth),
		done: make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *Queue) run() {
	for {
		select {
		case fn := <-q.ch:
			fn()
		case <-q.done:
			return
		}
	}
}

// Post enqueues fn for asynchronous delivery on the dispatch goroutine.
// If the queue is saturated, the notification is dropped and logged
// rather than blocking the poster — a blocked poster would reintroduce
// the coupling deferred delivery exists to avoid.
func (q *Queue) Post(fn func()) {
	select {
	case q.ch <- fn:
	default:
		q.log.Warn("notify queue full, dropping notification")
	}
}

// Close stops the dispatch goroutine. Pending callbacks that were already
// enqueued are not guaranteed to run.
func (q *Queue) Close() {
	select {
	case <-q.done:
	default:
		close(q.done)
	}
}
