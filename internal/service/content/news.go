package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmehdipour/content-gateway/internal/errs"
	"github.com/jmehdipour/content-gateway/internal/metrics"
	"github.com/jmehdipour/content-gateway/internal/model"
	"github.com/jmehdipour/content-gateway/internal/repository"
	"github.com/jmehdipour/content-gateway/internal/upstream"
	"go.uber.org/zap"
)

type NewsSearcher interface {
	Search(ctx context.Context, path, field string, q upstream.NewsQuery) ([]map[string]any, error)
}

type NewsOptions struct {
	DefaultCategory string
	GeneralPath     string
	CategoryPath    string
	Region          string
	MaxResults      int
}

// News queries the upstream search API and archives every headline it returns.
type News struct {
	api  NewsSearcher
	repo repository.NewsRepository
	opts NewsOptions
	log  *zap.Logger
}

func NewNews(api NewsSearcher, repo repository.NewsRepository, opts NewsOptions, log *zap.Logger) *News {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.DefaultCategory == "" {
		opts.DefaultCategory = "latest"
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 10
	}
	return &News{api: api, repo: repo, opts: opts, log: log}
}

// Fetch uses the general endpoint, whose response lists entries under "headlines".
func (n *News) Fetch(ctx context.Context, category string) ([]model.NewsHeadline, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		category = n.opts.DefaultCategory
	}
	return n.fetch(ctx, n.opts.GeneralPath, "headlines", category)
}

// FetchByCategory uses the category endpoint, whose response lists entries under "news".
func (n *News) FetchByCategory(ctx context.Context, category string) ([]model.NewsHeadline, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, fmt.Errorf("category is required: %w", errs.ErrValidation)
	}
	return n.fetch(ctx, n.opts.CategoryPath, "news", category)
}

// Archive lists previously stored headlines, newest first.
func (n *News) Archive(ctx context.Context, category string, limit, offset int) ([]model.NewsRow, error) {
	rows, err := n.repo.ListByCategory(ctx, strings.TrimSpace(category), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrPersistence, err)
	}
	return rows, nil
}

func (n *News) fetch(ctx context.Context, path, field, category string) ([]model.NewsHeadline, error) {
	entries, err := n.api.Search(ctx, path, field, upstream.NewsQuery{
		Query:      category,
		Region:     n.opts.Region,
		MaxResults: n.opts.MaxResults,
	})
	if err != nil {
		return nil, err
	}

	headlines := make([]model.NewsHeadline, 0, len(entries))
	for _, e := range entries {
		headlines = append(headlines, toHeadline(e))
	}

	if err := n.repo.InsertBatch(ctx, category, headlines); err != nil {
		n.log.Error("store headlines",
			zap.String("category", category),
			zap.Int("count", len(headlines)),
			zap.Error(fmt.Errorf("%w: %v", errs.ErrPersistence, err)))
	} else {
		metrics.NewsHeadlinesStored.Add(float64(len(headlines)))
	}

	return headlines, nil
}

// toHeadline maps one raw entry; missing fields become "".
func toHeadline(e map[string]any) model.NewsHeadline {
	return model.NewsHeadline{
		Title:       stringField(e, "title"),
		URL:         stringField(e, "url", "link"),
		PublishedAt: stringField(e, "published_at", "published_datetime_utc", "publishedAt", "date"),
		Source:      stringField(e, "source", "source_name", "publisher"),
	}
}

// stringField returns the first key holding a string, or an object's "name".
func stringField(e map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := e[k].(type) {
		case string:
			return v
		case map[string]any:
			if name, ok := v["name"].(string); ok {
				return name
			}
		}
	}
	return ""
}
