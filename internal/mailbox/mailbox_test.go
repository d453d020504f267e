package mailbox

import (
	"sync"
	"testing"
	"time"
)

func TestMailboxFIFO(t *testing.T) {
	m := New[int]()
	for i := 0; i < 1000; i++ {
		m.Send(i)
	}

	if m.Len() != 1000 {
		t.Fatalf("Len() = %d, want 1000", m.Len())
	}

	for i := 0; i < 1000; i++ {
		v, ok := m.TryRecv()
		if !ok {
			t.Fatalf("TryRecv() ok = false at %d", i)
		}
		if v != i {
			t.Fatalf("TryRecv() = %d, want %d", v, i)
		}
	}

	if _, ok := m.TryRecv(); ok {
		t.Error("TryRecv() on empty mailbox returned ok")
	}
}

func TestMailboxReadySignal(t *testing.T) {
	m := New[string]()

	go m.Send("hello")

	select {
	case <-m.Ready():
	case <-time.After(time.Second):
		t.Fatal("Ready() never signalled")
	}

	v, ok := m.TryRecv()
	if !ok || v != "hello" {
		t.Errorf("TryRecv() = %q, %v; want hello, true", v, ok)
	}
}

func TestMailboxSendFromReceiver(t *testing.T) {
	// A consumer that enqueues into its own mailbox must never block.
	m := New[int]()
	m.Send(0)

	processed := 0
	for {
		v, ok := m.TryRecv()
		if !ok {
			break
		}
		processed++
		if v < 500 {
			m.Send(v + 1)
			m.Send(v + 1000)
		}
	}

	if processed != 1001 {
		t.Errorf("processed = %d, want 1001", processed)
	}
}

func TestMailboxConcurrentSenders(t *testing.T) {
	m := New[int]()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				m.Send(i)
			}
		}()
	}
	wg.Wait()

	if m.Len() != 800 {
		t.Errorf("Len() = %d, want 800", m.Len())
	}
}

func TestMailboxClose(t *testing.T) {
	m := New[int]()
	m.Send(1)
	m.Close()

	if m.Send(2) {
		t.Error("Send() after Close returned true")
	}
	if v, ok := m.TryRecv(); !ok || v != 1 {
		t.Errorf("TryRecv() = %d, %v; want 1, true", v, ok)
	}
}
