package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jmehdipour/content-gateway/internal/errs"
	"github.com/jmehdipour/content-gateway/internal/kafka"
	"github.com/jmehdipour/content-gateway/internal/model"
)

type chanSource struct {
	in chan kafka.Message

	mu        sync.Mutex
	committed []int64
}

func (s *chanSource) Fetch(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-s.in:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (s *chanSource) Commit(_ context.Context, m kafka.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.committed = append(s.committed, m.Offset)
	return nil
}

func (s *chanSource) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.committed)
}

type recordingDispatcher struct {
	mu   sync.Mutex
	reqs []model.NotificationRequest
	err  error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, req model.NotificationRequest) (model.EmailAttempt, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reqs = append(d.reqs, req)
	return model.EmailAttempt{ID: req.ID}, d.err
}

func TestProcessOneCommitsPoison(t *testing.T) {
	src := &chanSource{}
	d := &recordingDispatcher{}
	w := NewNotifier(src, d, nil)

	w.processOne(context.Background(), kafka.Message{Offset: 7, Value: []byte("{not json")})

	if len(d.reqs) != 0 {
		t.Fatal("poison message reached dispatcher")
	}
	if src.count() != 1 {
		t.Fatalf("committed %d, want 1", src.count())
	}
}

func TestProcessOneCommitsAfterFailure(t *testing.T) {
	for _, derr := range []error{nil, errs.ErrTransport, errs.ErrValidation} {
		src := &chanSource{}
		d := &recordingDispatcher{err: derr}
		w := NewNotifier(src, d, nil)

		w.processOne(context.Background(), kafka.Message{
			Offset: 1,
			Value:  []byte(`{"id":"x","type":"joke","setup":"s","to":"a@b.com"}`),
		})

		if len(d.reqs) != 1 || d.reqs[0].To != "a@b.com" {
			t.Fatalf("dispatch err=%v: reqs=%+v", derr, d.reqs)
		}
		if src.count() != 1 {
			t.Fatalf("dispatch err=%v: committed %d", derr, src.count())
		}
	}
}

func TestRunDrainsAndStops(t *testing.T) {
	src := &chanSource{in: make(chan kafka.Message)}
	d := &recordingDispatcher{}
	w := NewNotifier(src, d, nil)
	w.Workers = 3

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	for i := 0; i < 5; i++ {
		src.in <- kafka.Message{Offset: int64(i), Value: []byte(`{"type":"news","setup":"h","to":"a@b.com"}`)}
	}

	deadline := time.Now().Add(2 * time.Second)
	for src.count() < 5 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after cancel")
	}
	if src.count() != 5 {
		t.Fatalf("committed %d, want 5", src.count())
	}
}

func TestRunRequiresDependencies(t *testing.T) {
	if err := (&Notifier{}).Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
