package usecase

import (
	"sort"
	"sync"
	"time"
)

// Queue is a keyed coalescing work queue. Repeated enqueues for the same key
// survive as a single pending entry, and every enqueue re-arms the debounce
// timer, so a burst of writes collapses into one handler pass per key once
// the burst goes quiet. Flush and FlushAll bypass the timer for critical
// paths and deterministic tests.
type Queue struct {
	mu       sync.Mutex
	pending  map[string]struct{}
	timer    *time.Timer
	handler  func(key string)
	interval time.Duration
	stopped  bool
}

// NewQueue creates a queue invoking handler once per pending key after
// interval of quiet.
func NewQueue(interval time.Duration, handler func(key string)) *Queue {
	return &Queue{
		pending:  make(map[string]struct{}),
		handler:  handler,
		interval: interval,
	}
}

// Enqueue marks key as pending and resets the debounce timer.
func (q *Queue) Enqueue(key string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return
	}

	q.pending[key] = struct{}{}

	if q.timer != nil {
		q.timer.Stop()
	}
	q.timer = time.AfterFunc(q.interval, q.FlushAll)
}

// Flush processes a single key synchronously, if pending.
func (q *Queue) Flush(key string) {
	q.mu.Lock()
	_, ok := q.pending[key]
	if ok {
		delete(q.pending, key)
	}
	q.mu.Unlock()

	if ok {
		q.handler(key)
	}
}

// FlushAll drains every pending key synchronously, in sorted key order so
// month-keyed queues process chronologically.
func (q *Queue) FlushAll() {
	q.mu.Lock()
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}

	keys := make([]string, 0, len(q.pending))
	for k := range q.pending {
		keys = append(keys, k)
	}
	q.pending = make(map[string]struct{})
	q.mu.Unlock()

	sort.Strings(keys)
	for _, k := range keys {
		q.handler(k)
	}
}

// Pending returns the number of pending keys.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Stop discards pending work and ignores further enqueues.
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.stopped = true
	q.pending = make(map[string]struct{})
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
}
