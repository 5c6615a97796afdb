package server

import "testing"

func TestWriteQueueFIFO(t *testing.T) {
	q := newWriteQueue()
	a := writeItem{target: newSessionID()}
	b := writeItem{target: newSessionID()}
	q.enqueue(a)
	q.enqueue(b)

	got, ok := q.pop()
	if !ok || got.target != a.target {
		t.Fatalf("expected first item to pop first")
	}
	got, ok = q.pop()
	if !ok || got.target != b.target {
		t.Fatalf("expected second item to pop second")
	}
	if _, ok := q.pop(); ok {
		t.Fatalf("expected empty queue to report ok=false")
	}
}

func TestWriteQueueHighWater(t *testing.T) {
	q := newWriteQueue()
	for i := 0; i < 5; i++ {
		q.enqueue(writeItem{target: newSessionID()})
	}
	q.pop()
	q.pop()
	depth, high := q.stats()
	if depth != 3 {
		t.Fatalf("depth = %d, want 3", depth)
	}
	if high != 5 {
		t.Fatalf("highWater = %d, want 5", high)
	}
}
