package mailer

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/jmehdipour/content-gateway/internal/errs"
	"github.com/jmehdipour/content-gateway/internal/model"
)

var (
	ErrNoHealthy = errors.New("no healthy mail providers")
	ErrNoAcquire = errors.New("mail provider not acquired")
)

type Provider interface {
	Name() string
	Send(ctx context.Context, m model.Email) error
}

// guarded pairs a provider with its breaker.
type guarded struct {
	Provider
	br *Breaker
}

// Mailer picks one ready provider round-robin and makes exactly one send
// attempt. Failures are reported to the caller, never retried here.
type Mailer struct {
	providers         []guarded
	from              string
	roundRobinCounter atomic.Uint64
}

func New(from string) *Mailer {
	return &Mailer{from: from}
}

// Add registers p behind a breaker tripping after failThreshold consecutive failures.
func (m *Mailer) Add(p Provider, br *Breaker) *Mailer {
	if br == nil {
		br = NewBreaker(0, 0)
	}
	m.providers = append(m.providers, guarded{Provider: p, br: br})
	return m
}

func (m *Mailer) Len() int { return len(m.providers) }

func (m *Mailer) selectProvider() (guarded, error) {
	healthy := make([]guarded, 0, len(m.providers))
	for _, p := range m.providers {
		if p.br.Ready() {
			healthy = append(healthy, p)
		}
	}

	if len(healthy) == 0 {
		return guarded{}, ErrNoHealthy
	}

	x := m.roundRobinCounter.Add(1)
	idx := int((x - 1) % uint64(len(healthy)))

	return healthy[idx], nil
}

// Send delivers e through one provider. Every error wraps errs.ErrTransport.
func (m *Mailer) Send(ctx context.Context, e model.Email) (string, error) {
	if e.From == "" {
		e.From = m.from
	}

	p, err := m.selectProvider()
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrTransport, err)
	}

	if !p.br.TryAcquire() {
		return p.Name(), fmt.Errorf("%w: %s: %v", errs.ErrTransport, p.Name(), ErrNoAcquire)
	}

	if err := p.Send(ctx, e); err != nil {
		p.br.OnFailure()
		return p.Name(), fmt.Errorf("%w: %s: %v", errs.ErrTransport, p.Name(), err)
	}

	p.br.OnSuccess()

	return p.Name(), nil
}
