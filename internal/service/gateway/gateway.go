package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jmehdipour/content-gateway/internal/errs"
	"github.com/jmehdipour/content-gateway/internal/metrics"
	"github.com/jmehdipour/content-gateway/internal/model"
	"github.com/jmehdipour/content-gateway/internal/repository"
	"github.com/jmehdipour/content-gateway/internal/util"
	"go.uber.org/zap"
)

var (
	ErrInvalidEmail  = fmt.Errorf("invalid email address: %w", errs.ErrValidation)
	ErrNoSubscribers = errors.New("no subscribers")
)

// JokeFetcher returns the content service's /fetch-joke payload.
type JokeFetcher interface {
	FetchJoke(ctx context.Context) (json.RawMessage, error)
}

// HealthChecker is one downstream service the gateway polls.
type HealthChecker interface {
	Name() string
	Health(ctx context.Context) (string, error)
}

// Publisher puts one keyed message on the notify topic.
type Publisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// FanOut is the outcome of one FetchAndSend.
type FanOut struct {
	Joke      string `json:"joke"`
	Published int    `json:"published"`
	Failed    int    `json:"failed"`
}

type Service struct {
	subs      repository.SubscribersRepository
	jokes     JokeFetcher
	publisher Publisher
	checks    []HealthChecker
	log       *zap.Logger
	now       func() time.Time

	mu       sync.RWMutex
	statuses map[string]model.ServiceStatus
}

func New(
	subs repository.SubscribersRepository,
	jokes JokeFetcher,
	publisher Publisher,
	checks []HealthChecker,
	log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		subs:      subs,
		jokes:     jokes,
		publisher: publisher,
		checks:    checks,
		log:       log,
		now:       time.Now,
		statuses:  make(map[string]model.ServiceStatus, len(checks)),
	}
}

func normalize(raw string) (string, error) {
	email := util.NormalizeEmail(raw)
	if email == "" || !util.LooksLikeEmail(email) {
		return "", fmt.Errorf("%q: %w", raw, ErrInvalidEmail)
	}
	return email, nil
}

// Subscribe adds email and reports whether it was new.
func (s *Service) Subscribe(ctx context.Context, raw string) (string, bool, error) {
	email, err := normalize(raw)
	if err != nil {
		return "", false, err
	}
	added, err := s.subs.Add(ctx, email)
	if err != nil {
		return email, false, fmt.Errorf("add subscriber: %w", err)
	}
	return email, added, nil
}

// Unsubscribe removes email and reports whether it was present.
func (s *Service) Unsubscribe(ctx context.Context, raw string) (string, bool, error) {
	email, err := normalize(raw)
	if err != nil {
		return "", false, err
	}
	removed, err := s.subs.Remove(ctx, email)
	if err != nil {
		return email, false, fmt.Errorf("remove subscriber: %w", err)
	}
	return email, removed, nil
}

func (s *Service) Subscribers(ctx context.Context) ([]string, error) {
	return s.subs.List(ctx)
}

// jokePayload covers both the primary API shape and the fallback record.
type jokePayload struct {
	Error    bool   `json:"error"`
	Message  string `json:"message"`
	Type     string `json:"type"`
	Joke     string `json:"joke"`
	Setup    string `json:"setup"`
	Delivery string `json:"delivery"`
}

// JokeText extracts the mail body from a /fetch-joke payload.
func JokeText(raw []byte) (string, error) {
	var p jokePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", fmt.Errorf("joke payload: %w: %v", errs.ErrMalformedResponse, err)
	}
	if p.Error {
		msg := p.Message
		if msg == "" {
			msg = "content service returned an error"
		}
		return "", fmt.Errorf("%w: %s", errs.ErrUpstreamError, msg)
	}

	text := strings.TrimSpace(p.Joke)
	if text == "" {
		text = strings.TrimSpace(strings.TrimSpace(p.Setup) + " " + strings.TrimSpace(p.Delivery))
	}
	if text == "" {
		return "", fmt.Errorf("joke payload: %w: no text", errs.ErrMalformedResponse)
	}
	return text, nil
}

// FetchAndSend pulls one joke and publishes a notification per subscriber.
// A failed publish is logged and counted; the rest of the fan-out continues.
func (s *Service) FetchAndSend(ctx context.Context) (FanOut, error) {
	subs, err := s.subs.List(ctx)
	if err != nil {
		return FanOut{}, fmt.Errorf("list subscribers: %w", err)
	}
	if len(subs) == 0 {
		return FanOut{}, ErrNoSubscribers
	}

	raw, err := s.jokes.FetchJoke(ctx)
	if err != nil {
		return FanOut{}, fmt.Errorf("fetch joke: %w", err)
	}
	text, err := JokeText(raw)
	if err != nil {
		return FanOut{}, err
	}

	out := FanOut{Joke: text}
	for _, to := range subs {
		req := model.NotificationRequest{
			ID:    util.NewID(),
			Type:  model.ContentJoke.String(),
			Setup: text,
			To:    to,
		}
		b, err := json.Marshal(req)
		if err == nil {
			err = s.publisher.Publish(ctx, to, b)
		}
		if err != nil {
			out.Failed++
			metrics.BroadcastTotal.WithLabelValues("failed").Inc()
			s.log.Warn("publish notification", zap.String("to", to), zap.Error(err))
			continue
		}
		out.Published++
		metrics.BroadcastTotal.WithLabelValues("published").Inc()
	}

	s.log.Info("joke fan-out",
		zap.Int("published", out.Published),
		zap.Int("failed", out.Failed))
	return out, nil
}

// RunBroadcast calls FetchAndSend every interval until ctx is done.
func (s *Service) RunBroadcast(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			if _, err := s.FetchAndSend(ctx); err != nil && !errors.Is(err, ErrNoSubscribers) {
				s.log.Warn("scheduled broadcast failed", zap.Error(err))
			}
		}
	}
}

// PollStatuses checks every downstream service once.
func (s *Service) PollStatuses(ctx context.Context) {
	for _, hc := range s.checks {
		st := model.ServiceStatus{Service: hc.Name(), CheckedAt: s.now().UTC()}
		status, err := hc.Health(ctx)
		switch {
		case err != nil:
			st.Status = "DOWN"
			s.log.Debug("health check failed", zap.String("service", hc.Name()), zap.Error(err))
		case status == "":
			st.Status = "UNKNOWN"
		default:
			st.Status = status
		}

		s.mu.Lock()
		s.statuses[st.Service] = st
		s.mu.Unlock()
	}
}

// RunStatusPoller polls immediately and then every interval until ctx is done.
func (s *Service) RunStatusPoller(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	s.PollStatuses(ctx)

	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			s.PollStatuses(ctx)
		}
	}
}

// Statuses returns the latest known status per service, in poll order.
func (s *Service) Statuses() []model.ServiceStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.ServiceStatus, 0, len(s.checks))
	for _, hc := range s.checks {
		if st, ok := s.statuses[hc.Name()]; ok {
			out = append(out, st)
		}
	}
	return out
}
