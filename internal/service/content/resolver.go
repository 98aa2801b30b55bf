package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jmehdipour/content-gateway/internal/errs"
	"github.com/jmehdipour/content-gateway/internal/metrics"
	"github.com/jmehdipour/content-gateway/internal/model"
	"github.com/jmehdipour/content-gateway/internal/repository"
	"go.uber.org/zap"
)

// MaxCategoryLen matches the width of jokes.category.
const MaxCategoryLen = 255

var ErrCategoryTooLong = fmt.Errorf("category longer than %d characters: %w", MaxCategoryLen, errs.ErrValidation)

// PrimarySource is the keyed, category-aware joke API.
type PrimarySource interface {
	Fetch(ctx context.Context, category string) ([]byte, error)
	Categories(ctx context.Context) ([]string, error)
}

// SecondarySource is the unscoped fallback joke provider.
type SecondarySource interface {
	Random(ctx context.Context) (model.JokeRecord, error)
}

// Resolver decides, per request, which tier serves a joke and records it.
type Resolver struct {
	primary   PrimarySource
	secondary SecondarySource
	jokes     repository.JokesRepository
	log       *zap.Logger

	defaultCategory string
	// strictParse makes a non-JSON primary payload fall through to the
	// secondary tier instead of being served as-is.
	strictParse bool
}

type ResolverOption func(*Resolver)

func WithDefaultCategory(c string) ResolverOption {
	return func(r *Resolver) {
		if strings.TrimSpace(c) != "" {
			r.defaultCategory = strings.TrimSpace(c)
		}
	}
}

func WithStrictPrimaryParse(strict bool) ResolverOption {
	return func(r *Resolver) { r.strictParse = strict }
}

func NewResolver(
	primary PrimarySource,
	secondary SecondarySource,
	jokes repository.JokesRepository,
	log *zap.Logger,
	opts ...ResolverOption,
) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Resolver{
		primary:         primary,
		secondary:       secondary,
		jokes:           jokes,
		log:             log,
		defaultCategory: "Any",
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// ResolveJoke makes at most one primary and at most one secondary attempt,
// strictly in that order. The category filter only reaches the primary tier;
// the persisted row is always tagged with the requested category.
func (r *Resolver) ResolveJoke(ctx context.Context, category string) (model.JokeResult, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		category = r.defaultCategory
	}
	if utf8.RuneCountInString(category) > MaxCategoryLen {
		return model.JokeResult{}, ErrCategoryTooLong
	}

	raw, err := r.primary.Fetch(ctx, category)
	if err == nil {
		err = r.classify(raw)
	}
	if err == nil {
		r.persist(ctx, category, string(raw))
		r.delivered(model.JokeSourcePrimary)
		return model.JokeResult{Source: model.JokeSourcePrimary, Raw: json.RawMessage(raw)}, nil
	}

	r.log.Warn("primary joke source missed, using fallback",
		zap.String("category", category), zap.Error(err))

	rec, err := r.secondary.Random(ctx)
	if err != nil {
		metrics.JokeDeliverySuccess.Set(0)
		metrics.JokeTierTotal.WithLabelValues("none").Inc()
		return model.JokeResult{}, fmt.Errorf("fallback joke source: %w", err)
	}

	r.persist(ctx, category, rec.Text())
	r.delivered(model.JokeSourceFallback)
	return model.JokeResult{Source: model.JokeSourceFallback, Record: &rec}, nil
}

// Categories passes the primary source's category list through.
func (r *Resolver) Categories(ctx context.Context) ([]string, error) {
	return r.primary.Categories(ctx)
}

// Recent lists stored jokes newest first; an empty category lists all.
func (r *Resolver) Recent(ctx context.Context, category string, limit int) ([]model.JokeRow, error) {
	rows, err := r.jokes.ListRecent(ctx, strings.TrimSpace(category), limit)
	if err != nil {
		return nil, fmt.Errorf("list jokes: %w: %v", errs.ErrPersistence, err)
	}
	return rows, nil
}

// classify returns nil when raw should be served as a primary hit.
func (r *Resolver) classify(raw []byte) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return fmt.Errorf("joke_api: %w: empty payload", errs.ErrMalformedResponse)
	}

	var head struct {
		Error   bool   `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(trimmed, &head); err != nil {
		if r.strictParse {
			return fmt.Errorf("joke_api: %w: %v", errs.ErrMalformedResponse, err)
		}
		// accepted as a joke
		return nil
	}
	if head.Error {
		return fmt.Errorf("joke_api: %w: %s", errs.ErrUpstreamError, head.Message)
	}
	return nil
}

// persist never fails the resolution; the fetched joke is still served.
func (r *Resolver) persist(ctx context.Context, category, content string) {
	if err := r.jokes.Insert(ctx, category, content); err != nil {
		r.log.Error("store joke",
			zap.String("category", category),
			zap.Error(fmt.Errorf("%w: %v", errs.ErrPersistence, err)))
	}
}

func (r *Resolver) delivered(src model.JokeSource) {
	metrics.JokesDelivered.Inc()
	metrics.JokeDeliverySuccess.Set(1)
	metrics.JokeTierTotal.WithLabelValues(src.String()).Inc()
}
