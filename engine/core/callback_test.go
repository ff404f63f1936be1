package core

import (
	"slices"
	"testing"
)

func TestCallbackOrderAndDuplicates(t *testing.T) {
	var cb Callback[int]
	var got []string

	a := func(v int) { got = append(got, "a") }
	b := func(v int) { got = append(got, "b") }

	cb.Register(a)
	cb.Register(b)
	cb.Register(a)

	cb.Call(1)

	want := []string{"a", "b", "a"}
	if !slices.Equal(got, want) {
		t.Fatalf("dispatch order = %v, want %v", got, want)
	}
}

func TestCallbackDeregister(t *testing.T) {
	var cb Callback[int]
	sum := 0

	h1 := cb.Register(func(v int) { sum += v })
	h2 := cb.Register(func(v int) { sum += 10 * v })

	if !cb.Deregister(h1) {
		t.Fatal("expected first handle to be removed")
	}
	if cb.Deregister(h1) {
		t.Fatal("removing the same handle twice should report false")
	}

	cb.Call(2)
	if sum != 20 {
		t.Fatalf("sum = %d, want 20", sum)
	}

	cb.Deregister(h2)
	if cb.Len() != 0 {
		t.Fatalf("Len = %d, want 0", cb.Len())
	}
}

func TestCallbackSnapshotDispatch(t *testing.T) {
	var cb Callback[struct{}]
	var got []string

	var h2 Handle
	cb.Register(func(struct{}) {
		got = append(got, "first")
		cb.Deregister(h2)
		cb.Register(func(struct{}) { got = append(got, "late") })
	})
	h2 = cb.Register(func(struct{}) { got = append(got, "second") })

	cb.Call(struct{}{})
	if want := []string{"first", "second"}; !slices.Equal(got, want) {
		t.Fatalf("first call = %v, want %v", got, want)
	}

	got = nil
	cb.Call(struct{}{})
	// "second" is gone; one more "late" was added by this call but only runs next time
	if want := []string{"first", "late"}; !slices.Equal(got, want) {
		t.Fatalf("second call = %v, want %v", got, want)
	}
}

func TestSignal(t *testing.T) {
	var s Signal
	count := 0
	h := s.Register(func() { count++ })
	s.Register(func() { count++ })

	s.Call()
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}

	s.Deregister(h)
	s.Call()
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}

	s.Clear()
	s.Call()
	if count != 3 {
		t.Fatalf("count after Clear = %d, want 3", count)
	}
}
