package mailer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmehdipour/content-gateway/internal/errs"
	"github.com/jmehdipour/content-gateway/internal/model"
)

type recordingProvider struct {
	name  string
	err   error
	calls int
	last  model.Email
}

func (p *recordingProvider) Name() string { return p.name }

func (p *recordingProvider) Send(_ context.Context, e model.Email) error {
	p.calls++
	p.last = e
	return p.err
}

func TestMailerSingleAttempt(t *testing.T) {
	a := &recordingProvider{name: "a", err: errors.New("401 unauthorized")}
	b := &recordingProvider{name: "b"}
	m := New("from@x.com").Add(a, nil).Add(b, nil)

	name, err := m.Send(context.Background(), model.Email{To: "a@b.com"})
	if !errors.Is(err, errs.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	if name != "a" || a.calls != 1 || b.calls != 0 {
		t.Fatalf("expected one attempt on a, got name=%s a=%d b=%d", name, a.calls, b.calls)
	}
	if a.last.From != "from@x.com" {
		t.Fatalf("default from not applied: %q", a.last.From)
	}
}

func TestMailerRoundRobin(t *testing.T) {
	a := &recordingProvider{name: "a"}
	b := &recordingProvider{name: "b"}
	m := New("from@x.com").Add(a, nil).Add(b, nil)

	for i := 0; i < 4; i++ {
		if _, err := m.Send(context.Background(), model.Email{To: "a@b.com"}); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}
	if a.calls != 2 || b.calls != 2 {
		t.Fatalf("expected even spread, a=%d b=%d", a.calls, b.calls)
	}
}

func TestMailerSkipsOpenBreaker(t *testing.T) {
	bad := &recordingProvider{name: "bad", err: errors.New("down")}
	good := &recordingProvider{name: "good"}
	m := New("from@x.com").
		Add(bad, NewBreaker(1, time.Hour)).
		Add(good, nil)

	// first send lands on bad and trips it
	if _, err := m.Send(context.Background(), model.Email{To: "a@b.com"}); err == nil {
		t.Fatal("expected failure from bad provider")
	}
	for i := 0; i < 3; i++ {
		name, err := m.Send(context.Background(), model.Email{To: "a@b.com"})
		if err != nil || name != "good" {
			t.Fatalf("send %d: name=%s err=%v", i, name, err)
		}
	}
	if bad.calls != 1 {
		t.Fatalf("tripped provider called %d times", bad.calls)
	}
}

func TestMailerNoHealthy(t *testing.T) {
	m := New("from@x.com")
	if _, err := m.Send(context.Background(), model.Email{To: "a@b.com"}); !errors.Is(err, errs.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}
