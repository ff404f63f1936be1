package containers

import (
	"errors"
	"testing"
)

func TestRingQueueFIFO(t *testing.T) {
	q := NewRingQueue[int](3)

	for i := 1; i <= 3; i++ {
		if err := q.Enqueue(i); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}
	if err := q.Enqueue(4); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("Enqueue on full queue = %v, want ErrQueueFull", err)
	}

	if v, _ := q.Peek(); v != 1 {
		t.Fatalf("Peek = %d, want 1", v)
	}

	for want := 1; want <= 3; want++ {
		v, err := q.Dequeue()
		if err != nil || v != want {
			t.Fatalf("Dequeue = (%d, %v), want %d", v, err, want)
		}
	}
	if _, err := q.Dequeue(); !errors.Is(err, ErrQueueEmpty) {
		t.Fatalf("Dequeue on empty queue = %v, want ErrQueueEmpty", err)
	}
}

func TestRingQueuePushOverwritesOldest(t *testing.T) {
	q := NewRingQueue[string](2)

	if _, dropped := q.Push("a"); dropped {
		t.Fatal("unexpected drop")
	}
	q.Push("b")
	old, dropped := q.Push("c")
	if !dropped || old != "a" {
		t.Fatalf("Push = (%q, %v), want (\"a\", true)", old, dropped)
	}
	if q.Len() != 2 {
		t.Fatalf("Len = %d, want 2", q.Len())
	}
	if v, _ := q.Dequeue(); v != "b" {
		t.Fatalf("front = %q, want b", v)
	}
}
