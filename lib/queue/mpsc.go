// Package queue provides the multi-producer single-consumer mailbox that
// serializes access to the daemon connection.
//
// Features and Guarantees:
//
//   - Lock-Free Push: producers append with atomic operations, any number of
//     goroutines may Push concurrently
//   - Unbounded Size: the queue grows as needed, limited only by available memory
//   - Single Consumer: exactly one goroutine drains the queue via Recv()
//   - Per-Producer FIFO: items pushed by one goroutine are received in the
//     order they were pushed. Across producers the order is decided by which
//     append completes first.
//   - Drain on Close: items pushed before Close are still delivered, then the
//     Recv() channel is closed
package queue

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// node represents a single element in the queue
type node[T any] struct {
	value *T
	next  atomic.Pointer[node[T]]
}

// MPSC is a multi-producer single-consumer queue backed by a linked list of
// nodes with atomic appends
type MPSC[T any] struct {
	head    atomic.Pointer[node[T]]
	tail    atomic.Pointer[node[T]]
	out     chan *T
	closed  atomic.Bool
	pending atomic.Int64

	// Condition variable for waiting on an empty queue
	mu   sync.Mutex
	cond *sync.Cond
	done chan struct{}
}

// NewMPSC creates a new queue and starts the goroutine that feeds Recv()
func NewMPSC[T any]() *MPSC[T] {
	// Create a sentinel node (dummy node at the beginning)
	sentinel := &node[T]{}

	q := &MPSC[T]{
		out:  make(chan *T),
		done: make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)
	q.head.Store(sentinel)
	q.tail.Store(sentinel)

	go q.consume()

	return q
}

// Push adds an item to the queue.
// Returns true if the item was added, or false if the queue is closed or the item is nil.
func (q *MPSC[T]) Push(value *T) bool {
	if value == nil || q.closed.Load() {
		return false
	}

	newNode := &node[T]{value: value}
	var backoff uint8

	for {
		tailNode := q.tail.Load()
		next := tailNode.next.Load()

		if next == nil {
			if tailNode.next.CompareAndSwap(nil, newNode) {
				// CAS may fail if another producer already advanced the tail
				q.tail.CompareAndSwap(tailNode, newNode)
				q.pending.Add(1)
				q.signal()
				return true
			}
		} else {
			// help a producer that appended but has not advanced the tail yet
			q.tail.CompareAndSwap(tailNode, next)
		}

		// spin briefly under contention, then yield
		if backoff < 10 {
			backoff++
			for i := 0; i < 1<<backoff; i++ {
				runtime.Gosched()
			}
		}
		runtime.Gosched()
	}
}

// signal wakes the consumer. Taking the lock orders the wake-up after the
// consumer's emptiness check, otherwise the signal could be lost between
// the check and the wait.
func (q *MPSC[T]) signal() {
	q.mu.Lock()
	q.cond.Signal()
	q.mu.Unlock()
}

// consume moves items from the linked list to the output channel
func (q *MPSC[T]) consume() {
	defer close(q.done)
	defer close(q.out)

	for {
		hasItems := false

		for {
			head := q.head.Load()
			next := head.next.Load()
			if next == nil {
				break
			}
			hasItems = true

			value := next.value
			q.head.Store(next)

			q.out <- value
			q.pending.Add(-1)

			// help go gc
			next.value = nil
		}

		if !hasItems && q.closed.Load() {
			return
		}

		if !hasItems {
			q.mu.Lock()
			if q.head.Load().next.Load() == nil && !q.closed.Load() {
				q.cond.Wait()
			}
			q.mu.Unlock()
		}
	}
}

// Recv returns the channel the consumer reads from. It is closed once the
// queue was closed and every item pushed before was delivered.
func (q *MPSC[T]) Recv() <-chan *T {
	return q.out
}

// Close prevents further pushes. Items already in the queue are still delivered.
func (q *MPSC[T]) Close() {
	q.closed.Store(true)
	q.signal()
}

// Done is closed after the Recv() channel was closed
func (q *MPSC[T]) Done() <-chan struct{} {
	return q.done
}

// IsClosed returns true if the queue is closed.
func (q *MPSC[T]) IsClosed() bool {
	return q.closed.Load()
}

// Len returns the number of items pushed but not yet received
func (q *MPSC[T]) Len() int {
	return int(q.pending.Load())
}
