package session

import (
	"testing"
	"time"
)

func TestStoreCreateAndGet(t *testing.T) {
	st := NewStore(&recordingInvoker{}, time.Minute)

	s := st.Create()
	if s.ID() == "" {
		t.Fatal("expected non-empty session id")
	}

	got, ok := st.Get(s.ID())
	if !ok {
		t.Fatal("expected session to be retrievable")
	}
	if got != s {
		t.Error("expected the same session instance")
	}
	if st.Count() != 1 {
		t.Errorf("expected 1 live session, got %d", st.Count())
	}
}

func TestStoreGetUnknown(t *testing.T) {
	st := NewStore(&recordingInvoker{}, time.Minute)
	if _, ok := st.Get("nope"); ok {
		t.Error("expected miss for unknown session id")
	}
}

func TestStoreExpiry(t *testing.T) {
	// Expiry is checked lazily on Get, so a nanosecond TTL with a generous
	// sleep keeps this deterministic on slow machines.
	st := NewStore(&recordingInvoker{}, time.Nanosecond)

	s := st.Create()
	time.Sleep(10 * time.Millisecond)

	if _, ok := st.Get(s.ID()); ok {
		t.Error("expected session to expire after TTL")
	}
}
