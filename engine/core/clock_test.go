package core

import (
	"testing"
	"time"
)

type fakeTime struct {
	t time.Time
}

func (f *fakeTime) now() time.Time { return f.t }

func TestClockMicrosecondPrecision(t *testing.T) {
	src := &fakeTime{t: time.Unix(100, 0)}
	c := NewClockWithSource(src.now)

	c.Update()
	if c.Elapsed() != 0 {
		t.Fatalf("stopped clock advanced to %v", c.Elapsed())
	}

	c.Start()
	src.t = src.t.Add(1500*time.Microsecond + 700*time.Nanosecond)
	c.Update()

	if got, want := c.Elapsed(), 1500*time.Microsecond; got != want {
		t.Fatalf("Elapsed = %v, want %v", got, want)
	}
	if got := c.Seconds(); got != 0.0015 {
		t.Fatalf("Seconds = %v, want 0.0015", got)
	}

	c.Stop()
	src.t = src.t.Add(time.Second)
	c.Update()
	if got := c.Elapsed(); got != 1500*time.Microsecond {
		t.Fatalf("Elapsed after Stop = %v", got)
	}
}
