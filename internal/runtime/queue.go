package runtime

import (
	"errors"
	"sync"
)

var errQueueClosed = errors.New("coaty: container queue closed")

// opQueue serializes container registry mutations through a single worker
// goroutine, so concurrent registrations cannot race on the name-uniqueness
// check. Operations run strictly one at a time in submission order.
type opQueue struct {
	mu     sync.Mutex
	ops    chan func()
	closed bool
}

func newOpQueue() *opQueue {
	q := &opQueue{ops: make(chan func())}
	go func() {
		for op := range q.ops {
			op()
		}
	}()
	return q
}

// do runs fn on the queue worker and waits for it to finish. It returns
// errQueueClosed without running fn when the queue has been closed.
func (q *opQueue) do(fn func()) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return errQueueClosed
	}
	done := make(chan struct{})
	q.ops <- func() {
		defer close(done)
		fn()
	}
	q.mu.Unlock()

	<-done
	return nil
}

func (q *opQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.ops)
}
