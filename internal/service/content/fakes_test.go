package content

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/jmehdipour/content-gateway/internal/model"
	"github.com/jmehdipour/content-gateway/internal/upstream"
)

type fakePrimary struct {
	payload    []byte
	err        error
	categories []string
	calls      int
	lastCat    string
}

func (f *fakePrimary) Fetch(_ context.Context, category string) ([]byte, error) {
	f.calls++
	f.lastCat = category
	return f.payload, f.err
}

func (f *fakePrimary) Categories(context.Context) ([]string, error) {
	return f.categories, f.err
}

type fakeSecondary struct {
	joke  model.JokeRecord
	err   error
	calls int
}

func (f *fakeSecondary) Random(context.Context) (model.JokeRecord, error) {
	f.calls++
	return f.joke, f.err
}

type jokeRow struct{ category, content string }

type fakeJokes struct {
	mu      sync.Mutex
	rows    []jokeRow
	err     error
	recent  []model.JokeRow
	lastCat string
}

func (f *fakeJokes) Insert(_ context.Context, category, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, jokeRow{category, content})
	return nil
}

func (f *fakeJokes) ListRecent(_ context.Context, category string, _ int) ([]model.JokeRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCat = category
	if f.err != nil {
		return nil, f.err
	}
	return f.recent, nil
}

type fakeNewsAPI struct {
	entries []map[string]any
	err     error
	path    string
	field   string
	query   upstream.NewsQuery
}

func (f *fakeNewsAPI) Search(_ context.Context, path, field string, q upstream.NewsQuery) ([]map[string]any, error) {
	f.path, f.field, f.query = path, field, q
	return f.entries, f.err
}

type fakeNewsRepo struct {
	category string
	batches  [][]model.NewsHeadline
	err      error
	rows     []model.NewsRow
}

func (f *fakeNewsRepo) InsertBatch(_ context.Context, category string, h []model.NewsHeadline) error {
	if f.err != nil {
		return f.err
	}
	f.category = category
	f.batches = append(f.batches, h)
	return nil
}

func (f *fakeNewsRepo) ListByCategory(context.Context, string, int, int) ([]model.NewsRow, error) {
	return f.rows, f.err
}

type echoLookup struct {
	calls int
	in    string
}

func (e *echoLookup) record(in string) (json.RawMessage, error) {
	e.calls++
	e.in = in
	return json.RawMessage(`{"ok":true}`), nil
}

func (e *echoLookup) Validate(_ context.Context, s string) (json.RawMessage, error) {
	return e.record(s)
}
func (e *echoLookup) Rewrite(_ context.Context, s string) (json.RawMessage, error) {
	return e.record(s)
}
func (e *echoLookup) Scrape(_ context.Context, s string) (json.RawMessage, error) { return e.record(s) }
