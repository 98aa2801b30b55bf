package mailer

import (
	"testing"
	"time"
)

func TestBreakerTripsAndProbes(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	b := NewBreaker(2, time.Minute)
	b.now = func() time.Time { return now }

	b.OnFailure()
	if !b.Ready() || b.State() != "closed" {
		t.Fatalf("one failure should not trip, state=%s", b.State())
	}
	b.OnFailure()
	if b.Ready() || b.State() != "open" {
		t.Fatalf("expected open after threshold, state=%s", b.State())
	}
	if b.TryAcquire() {
		t.Fatal("open breaker admitted a send before openFor elapsed")
	}

	now = now.Add(time.Minute + time.Second)
	if !b.TryAcquire() {
		t.Fatal("expected trial send to be admitted")
	}
	if b.State() != "half-open" || b.TryAcquire() {
		t.Fatal("only one trial send may be in flight")
	}

	b.OnFailure()
	if b.State() != "open" {
		t.Fatalf("failed trial send should reopen, state=%s", b.State())
	}

	now = now.Add(2 * time.Minute)
	if !b.TryAcquire() {
		t.Fatal("expected second trial send")
	}
	b.OnSuccess()
	if b.State() != "closed" || !b.Ready() {
		t.Fatalf("successful trial send should close, state=%s", b.State())
	}
}
