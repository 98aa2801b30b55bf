package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/jmehdipour/content-gateway/internal/errs"
	"github.com/jmehdipour/content-gateway/internal/kafka"
	"github.com/jmehdipour/content-gateway/internal/model"
	"go.uber.org/zap"
)

// Source is the subset of kafka.Consumer the worker needs.
type Source interface {
	Fetch(ctx context.Context) (kafka.Message, error)
	Commit(ctx context.Context, m kafka.Message) error
}

type Dispatcher interface {
	Dispatch(ctx context.Context, req model.NotificationRequest) (model.EmailAttempt, error)
}

// Notifier:
// - fetches notification requests from Kafka,
// - hands each one to the dispatcher,
// - commits after handling (at-least-once).
type Notifier struct {
	Source   Source
	Dispatch Dispatcher
	Log      *zap.Logger

	Workers    int           // number of goroutines processing messages
	FetchPause time.Duration // backoff after a fetch error
}

func NewNotifier(src Source, d Dispatcher, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{
		Source:     src,
		Dispatch:   d,
		Log:        log,
		Workers:    8,
		FetchPause: 200 * time.Millisecond,
	}
}

// Run starts the worker and blocks until ctx is cancelled and every
// processor has returned.
func (w *Notifier) Run(ctx context.Context) error {
	if w.Source == nil || w.Dispatch == nil {
		return errors.New("notifier: source and dispatcher are required")
	}
	if w.Workers <= 0 {
		w.Workers = 8
	}

	msgCh := make(chan kafka.Message, w.Workers*2)

	// fetch loop
	go func() {
		defer close(msgCh)
		for {
			m, err := w.Source.Fetch(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				w.Log.Warn("kafka fetch", zap.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(w.FetchPause):
				}
				continue
			}
			select {
			case msgCh <- m:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < w.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for m := range msgCh {
				w.processOne(ctx, m)
			}
		}()
	}

	wg.Wait()
	return nil
}

func (w *Notifier) processOne(ctx context.Context, m kafka.Message) {
	var req model.NotificationRequest
	if err := json.Unmarshal(m.Value, &req); err != nil {
		w.Log.Warn("bad notification json",
			zap.Int64("offset", m.Offset),
			zap.Error(err))
		w.commit(ctx, m) // poison, skip
		return
	}

	attempt, err := w.Dispatch.Dispatch(ctx, req)
	switch {
	case errors.Is(err, errs.ErrValidation):
		w.Log.Warn("notification rejected",
			zap.String("id", req.ID),
			zap.String("type", req.Type),
			zap.Error(err))
	case err != nil:
		w.Log.Warn("notification not delivered",
			zap.String("id", attempt.ID),
			zap.Error(err))
	}

	w.commit(ctx, m)
}

func (w *Notifier) commit(ctx context.Context, m kafka.Message) {
	if err := w.Source.Commit(ctx, m); err != nil {
		w.Log.Error("kafka commit", zap.Int64("offset", m.Offset), zap.Error(err))
	}
}
