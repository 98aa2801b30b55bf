package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jmehdipour/content-gateway/internal/errs"
	"github.com/jmehdipour/content-gateway/internal/model"
)

type fakeResolver struct {
	res       model.JokeResult
	err       error
	lastCat   string
	recent    []model.JokeRow
	lastLimit int
}

func (f *fakeResolver) ResolveJoke(_ context.Context, category string) (model.JokeResult, error) {
	f.lastCat = category
	return f.res, f.err
}

func (f *fakeResolver) Categories(context.Context) ([]string, error) {
	return []string{"Programming", "Pun"}, f.err
}

func (f *fakeResolver) Recent(_ context.Context, category string, limit int) ([]model.JokeRow, error) {
	f.lastCat, f.lastLimit = category, limit
	return f.recent, f.err
}

type fakeNews struct {
	headlines []model.NewsHeadline
	rows      []model.NewsRow
	err       error
	lastLimit int
}

func (f *fakeNews) Fetch(context.Context, string) ([]model.NewsHeadline, error) {
	return f.headlines, f.err
}

func (f *fakeNews) FetchByCategory(_ context.Context, category string) ([]model.NewsHeadline, error) {
	if category == "" {
		return nil, errs.ErrValidation
	}
	return f.headlines, f.err
}

func (f *fakeNews) Archive(_ context.Context, _ string, limit, _ int) ([]model.NewsRow, error) {
	f.lastLimit = limit
	return f.rows, f.err
}

type fakeLookups struct{}

func (fakeLookups) ValidateEmail(_ context.Context, email string) (json.RawMessage, error) {
	if email == "" {
		return nil, errs.ErrValidation
	}
	return json.RawMessage(`{"status":"valid"}`), nil
}

func (fakeLookups) Paraphrase(_ context.Context, text string) (json.RawMessage, error) {
	if text == "" {
		return nil, errs.ErrValidation
	}
	return json.RawMessage(`{"rewrite":"hi"}`), nil
}

func (fakeLookups) Scrape(context.Context, string) (json.RawMessage, error) {
	return nil, errors.Join(errs.ErrUpstreamUnavailable, errors.New("timeout"))
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestFetchJokeServesPrimaryVerbatim(t *testing.T) {
	raw := `{"error":false,"category":"Programming","type":"twopart","setup":"S","delivery":"D","id":3}`
	res := &fakeResolver{res: model.JokeResult{Source: model.JokeSourcePrimary, Raw: json.RawMessage(raw)}}
	s := NewContentServer(Options{}, res, &fakeNews{}, fakeLookups{})

	rec := do(t, s.Handler(), http.MethodGet, "/fetch-joke?category=Programming", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if res.lastCat != "Programming" {
		t.Fatalf("category = %q", res.lastCat)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != raw {
		t.Fatalf("body = %s", got)
	}
}

func TestFetchJokeServesFallbackRecord(t *testing.T) {
	res := &fakeResolver{res: model.JokeResult{
		Source: model.JokeSourceFallback,
		Record: &model.JokeRecord{Category: "Any", Setup: "Knock knock", Source: model.JokeSourceFallback},
	}}
	s := NewContentServer(Options{}, res, &fakeNews{}, fakeLookups{})

	got := decode(t, do(t, s.Handler(), http.MethodGet, "/fetch-joke", ""))
	want := map[string]any{"category": "Any", "setup": "Knock knock", "source": "fallback_library"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("body (-want +got):\n%s", diff)
	}
}

func TestFetchJokeBothTiersDown(t *testing.T) {
	res := &fakeResolver{err: errors.Join(errs.ErrUpstreamUnavailable, errors.New("dial tcp"))}
	s := NewContentServer(Options{}, res, &fakeNews{}, fakeLookups{})

	rec := do(t, s.Handler(), http.MethodGet, "/fetch-joke", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status %d", rec.Code)
	}
	body := decode(t, rec)
	if body["error"] != true || body["message"] == "" {
		t.Fatalf("body = %v", body)
	}
}

func TestFetchJokeNonJSONPrimary(t *testing.T) {
	res := &fakeResolver{res: model.JokeResult{Source: model.JokeSourcePrimary, Raw: []byte("just text")}}
	s := NewContentServer(Options{}, res, &fakeNews{}, fakeLookups{})

	rec := do(t, s.Handler(), http.MethodGet, "/fetch-joke", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "just text" {
		t.Fatalf("status %d body %q", rec.Code, rec.Body.String())
	}
}

func TestFetchJokeOverlongCategory(t *testing.T) {
	res := &fakeResolver{err: fmt.Errorf("category longer than 255 characters: %w", errs.ErrValidation)}
	s := NewContentServer(Options{}, res, &fakeNews{}, fakeLookups{})

	rec := do(t, s.Handler(), http.MethodGet, "/fetch-joke?category="+strings.Repeat("c", 300), "")
	if rec.Code != http.StatusBadRequest || decode(t, rec)["error"] != true {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
}

func TestJokesReport(t *testing.T) {
	res := &fakeResolver{recent: []model.JokeRow{
		{ID: 7, Category: "Misc", Content: "x", CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
	}}
	s := NewContentServer(Options{}, res, &fakeNews{}, fakeLookups{})

	got := decode(t, do(t, s.Handler(), http.MethodGet, "/reports/jokes?category=Misc&limit=5000", ""))
	if res.lastCat != "Misc" || res.lastLimit != 50 {
		t.Fatalf("category=%q limit=%d", res.lastCat, res.lastLimit)
	}
	want := map[string]any{
		"limit": float64(50),
		"count": float64(1),
		"results": []any{map[string]any{
			"id": float64(7), "category": "Misc", "content": "x", "created_at": "2024-05-01T12:00:00Z",
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("body (-want +got):\n%s", diff)
	}

	res.err = fmt.Errorf("list jokes: %w", errs.ErrPersistence)
	if rec := do(t, s.Handler(), http.MethodGet, "/reports/jokes", ""); rec.Code != http.StatusInternalServerError {
		t.Fatalf("store down: status %d", rec.Code)
	}
}

func TestJokeCategories(t *testing.T) {
	s := NewContentServer(Options{}, &fakeResolver{}, &fakeNews{}, fakeLookups{})
	got := decode(t, do(t, s.Handler(), http.MethodGet, "/joke-categories", ""))
	want := map[string]any{"joke_categories": []any{"Programming", "Pun"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("body (-want +got):\n%s", diff)
	}
}

func TestNewsRoutes(t *testing.T) {
	news := &fakeNews{headlines: []model.NewsHeadline{{Title: "T", URL: "u"}}}
	s := NewContentServer(Options{}, &fakeResolver{}, news, fakeLookups{})

	for _, target := range []string{"/fetch-news", "/fetch-news-category?category=tech"} {
		rec := do(t, s.Handler(), http.MethodGet, target, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d", target, rec.Code)
		}
		hs, ok := decode(t, rec)["headlines"].([]any)
		if !ok || len(hs) != 1 {
			t.Fatalf("%s: body %s", target, rec.Body.String())
		}
	}

	rec := do(t, s.Handler(), http.MethodGet, "/fetch-news-category", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing category: status %d", rec.Code)
	}
}

func TestNewsReportClampsLimit(t *testing.T) {
	news := &fakeNews{rows: []model.NewsRow{{Category: "tech", Title: "T"}}}
	s := NewContentServer(Options{}, &fakeResolver{}, news, fakeLookups{})

	got := decode(t, do(t, s.Handler(), http.MethodGet, "/reports/news?limit=5000", ""))
	if news.lastLimit != 50 {
		t.Fatalf("limit passed = %d", news.lastLimit)
	}
	if got["count"] != float64(1) {
		t.Fatalf("body = %v", got)
	}
}

func TestLookupRoutes(t *testing.T) {
	s := NewContentServer(Options{}, &fakeResolver{}, &fakeNews{}, fakeLookups{})
	h := s.Handler()

	got := decode(t, do(t, h, http.MethodPost, "/validate-email", `{"email":"a@b.com"}`))
	if diff := cmp.Diff(map[string]any{"result": map[string]any{"status": "valid"}}, got); diff != "" {
		t.Fatalf("validate-email (-want +got):\n%s", diff)
	}

	got = decode(t, do(t, h, http.MethodPost, "/paraphrase", `{"text":"hello"}`))
	if diff := cmp.Diff(map[string]any{"paraphrased_text": map[string]any{"rewrite": "hi"}}, got); diff != "" {
		t.Fatalf("paraphrase (-want +got):\n%s", diff)
	}

	if rec := do(t, h, http.MethodPost, "/validate-email", `{}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing email: status %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/scrape-url", `{"url":"https://x"}`); rec.Code != http.StatusBadGateway {
		t.Fatalf("scrape upstream down: status %d", rec.Code)
	}
}

func TestCommonRoutes(t *testing.T) {
	s := NewContentServer(Options{Label: "Service 1"}, &fakeResolver{}, &fakeNews{}, fakeLookups{})
	h := s.Handler()

	got := decode(t, do(t, h, http.MethodGet, "/health", ""))
	if got["status"] != "Service 1 is healthy" {
		t.Fatalf("health = %v", got)
	}
	got = decode(t, do(t, h, http.MethodGet, "/status", ""))
	if got["status"] != "Service 1 is up and running" {
		t.Fatalf("status = %v", got)
	}

	rec := do(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "joke_delivery_success") {
		t.Fatalf("metrics missing collectors")
	}

	rec = do(t, h, http.MethodGet, "/nope", "")
	if rec.Code != http.StatusNotFound || decode(t, rec)["error"] != true {
		t.Fatalf("404 body = %s", rec.Body.String())
	}
}
