package server

import (
	"sync"

	"lurkd/wire"
)

// writeItem is one ephemeral record in the write queue: a payload, its
// target session, and an attribution recording whether the server or a
// specific client produced it.
type writeItem struct {
	payload wire.Frame
	target  SessionID
	sender  Attribution
}

// writeQueue is the single FIFO every outbound frame passes through,
// guarded by one mutex. Enqueue never blocks beyond lock acquisition; Pop
// is O(1). There is no capacity bound — the engine's drain phase is what
// keeps memory bounded, by running once per frame.
type writeQueue struct {
	mu    sync.Mutex
	items []writeItem
	// highWater tracks the largest length items has reached, exposed to
	// the metrics/admin surface.
	highWater int
}

func newWriteQueue() *writeQueue {
	return &writeQueue{}
}

func (q *writeQueue) enqueue(item writeItem) {
	q.mu.Lock()
	q.items = append(q.items, item)
	if len(q.items) > q.highWater {
		q.highWater = len(q.items)
	}
	q.mu.Unlock()
}

// pop removes and returns the head item. ok is false if the queue was
// empty.
func (q *writeQueue) pop() (item writeItem, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return writeItem{}, false
	}
	item = q.items[0]
	q.items[0] = writeItem{}
	q.items = q.items[1:]
	return item, true
}

func (q *writeQueue) depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *writeQueue) stats() (depth, highWater int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items), q.highWater
}
