package reactive

import (
	"testing"
	"time"
)

func TestBatchSingleNotification(t *testing.T) {
	s := New(0)

	notified := 0
	var last int
	stop := s.Subscribe(func(v int) {
		notified++
		last = v
	})
	defer stop()

	Batch(func() {
		s.Set(1)
		s.Set(2)
		s.Set(3)
	})

	if notified != 1 {
		t.Errorf("Expected 1 notification after batch, got %d", notified)
	}
	if last != 3 {
		t.Errorf("Expected final value 3, got %d", last)
	}
}

func TestBatchMultipleSignals(t *testing.T) {
	a := New(0)
	b := New("")

	var aSeen int
	var bSeen string
	stopA := a.Subscribe(func(v int) { aSeen = v })
	stopB := b.Subscribe(func(v string) { bSeen = v })
	defer stopA()
	defer stopB()

	Batch(func() {
		a.Set(1)
		b.Set("one")

		// Nothing delivered until the batch completes.
		if aSeen != 0 || bSeen != "" {
			t.Errorf("Notification leaked inside batch: a=%d b=%q", aSeen, bSeen)
		}
	})

	if aSeen != 1 || bSeen != "one" {
		t.Errorf("Expected a=1 b=one after batch, got a=%d b=%q", aSeen, bSeen)
	}
}

func TestBatchNested(t *testing.T) {
	s := New(0)

	notified := 0
	stop := s.Subscribe(func(int) { notified++ })
	defer stop()

	Batch(func() {
		s.Set(1)
		Batch(func() {
			s.Set(2)
		})
		// Inner batch completion must not flush.
		if notified != 0 {
			t.Errorf("Inner batch flushed early, notified=%d", notified)
		}
	})

	if notified != 1 {
		t.Errorf("Expected 1 notification after outer batch, got %d", notified)
	}
	if s.Get() != 2 {
		t.Errorf("Expected 2, got %d", s.Get())
	}
}

func TestBatchScopedToGoroutine(t *testing.T) {
	s := New(0)

	got := make(chan int, 1)
	stop := s.Subscribe(func(v int) { got <- v })
	defer stop()

	opened := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		Batch(func() {
			close(opened)
			<-release
		})
	}()
	<-opened

	// A plain Set on this goroutine must not be absorbed into the other
	// goroutine's open batch.
	s.Set(42)

	select {
	case v := <-got:
		if v != 42 {
			t.Fatalf("Expected 42, got %d", v)
		}
	case <-time.After(time.Second):
		t.Fatal("Set outside the batching goroutine was not delivered immediately")
	}

	close(release)
	<-done
}

func TestBatchObservesConsistentState(t *testing.T) {
	a := New(0)
	b := New(0)

	// A subscriber of a reads b: both must already hold their final values
	// when the batch flushes.
	var bAtNotify int
	stop := a.Subscribe(func(int) { bAtNotify = b.Get() })
	defer stop()

	Batch(func() {
		a.Set(1)
		b.Set(2)
	})

	if bAtNotify != 2 {
		t.Errorf("Subscriber saw stale b=%d during flush", bAtNotify)
	}
}
