package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/jmehdipour/content-gateway/internal/model"
	echo "github.com/labstack/echo/v4"
)

type JokeResolver interface {
	ResolveJoke(ctx context.Context, category string) (model.JokeResult, error)
	Categories(ctx context.Context) ([]string, error)
	Recent(ctx context.Context, category string, limit int) ([]model.JokeRow, error)
}

type NewsService interface {
	Fetch(ctx context.Context, category string) ([]model.NewsHeadline, error)
	FetchByCategory(ctx context.Context, category string) ([]model.NewsHeadline, error)
	Archive(ctx context.Context, category string, limit, offset int) ([]model.NewsRow, error)
}

type LookupService interface {
	ValidateEmail(ctx context.Context, email string) (json.RawMessage, error)
	Paraphrase(ctx context.Context, text string) (json.RawMessage, error)
	Scrape(ctx context.Context, target string) (json.RawMessage, error)
}

// NewContentServer serves jokes, news and the auxiliary lookups.
func NewContentServer(o Options, jokes JokeResolver, news NewsService, lookups LookupService) *Server {
	if o.Service == "" {
		o.Service = "content"
	}
	if o.Label == "" {
		o.Label = "Content service"
	}
	s, g := newServer(o)

	g.GET("/fetch-joke", fetchJokeHandler(jokes))
	g.GET("/joke-categories", jokeCategoriesHandler(jokes))
	g.GET("/fetch-news", fetchNewsHandler(news))
	g.GET("/fetch-news-category", fetchNewsCategoryHandler(news))
	g.GET("/reports/news", newsReportHandler(news))
	g.GET("/reports/jokes", jokesReportHandler(jokes))
	g.POST("/validate-email", validateEmailHandler(lookups))
	g.POST("/paraphrase", paraphraseHandler(lookups))
	g.POST("/scrape-url", scrapeHandler(lookups))

	return s
}

func fetchJokeHandler(jokes JokeResolver) echo.HandlerFunc {
	return func(c echo.Context) error {
		res, err := jokes.ResolveJoke(c.Request().Context(), c.QueryParam("category"))
		if err != nil {
			return writeError(c, err)
		}
		// permissively accepted primary payloads are not always JSON
		if res.Source == model.JokeSourcePrimary && !json.Valid(res.Raw) {
			return c.Blob(http.StatusOK, echo.MIMETextPlainCharsetUTF8, res.Raw)
		}
		return c.JSON(http.StatusOK, res.Payload())
	}
}

func jokeCategoriesHandler(jokes JokeResolver) echo.HandlerFunc {
	return func(c echo.Context) error {
		cats, err := jokes.Categories(c.Request().Context())
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, map[string]any{"joke_categories": cats})
	}
}

func fetchNewsHandler(news NewsService) echo.HandlerFunc {
	return func(c echo.Context) error {
		hs, err := news.Fetch(c.Request().Context(), c.QueryParam("category"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, map[string]any{"headlines": hs})
	}
}

func fetchNewsCategoryHandler(news NewsService) echo.HandlerFunc {
	return func(c echo.Context) error {
		hs, err := news.FetchByCategory(c.Request().Context(), c.QueryParam("category"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, map[string]any{"headlines": hs})
	}
}

func newsReportHandler(news NewsService) echo.HandlerFunc {
	return func(c echo.Context) error {
		limit := 50
		offset := 0
		if v := c.QueryParam("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
				limit = n
			}
		}
		if v := c.QueryParam("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				offset = n
			}
		}
		category := strings.TrimSpace(c.QueryParam("category"))

		rows, err := news.Archive(c.Request().Context(), category, limit, offset)
		if err != nil {
			c.Logger().Errorf("clickhouse list failed: %v", err)
			return writeError(c, err)
		}

		return c.JSON(http.StatusOK, map[string]any{
			"limit":   limit,
			"offset":  offset,
			"count":   len(rows),
			"results": rows,
		})
	}
}

func jokesReportHandler(jokes JokeResolver) echo.HandlerFunc {
	return func(c echo.Context) error {
		limit := 50
		if v := c.QueryParam("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
				limit = n
			}
		}

		rows, err := jokes.Recent(c.Request().Context(), c.QueryParam("category"), limit)
		if err != nil {
			c.Logger().Errorf("mysql list failed: %v", err)
			return writeError(c, err)
		}

		return c.JSON(http.StatusOK, map[string]any{
			"limit":   limit,
			"count":   len(rows),
			"results": rows,
		})
	}
}

type emailBody struct {
	Email string `json:"email"`
}

type textBody struct {
	Text string `json:"text"`
}

type urlBody struct {
	URL string `json:"url"`
}

func validateEmailHandler(l LookupService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var in emailBody
		if err := c.Bind(&in); err != nil {
			return badRequest(c, "invalid json body")
		}
		out, err := l.ValidateEmail(c.Request().Context(), in.Email)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, map[string]any{"result": out})
	}
}

func paraphraseHandler(l LookupService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var in textBody
		if err := c.Bind(&in); err != nil {
			return badRequest(c, "invalid json body")
		}
		out, err := l.Paraphrase(c.Request().Context(), in.Text)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, map[string]any{"paraphrased_text": out})
	}
}

func scrapeHandler(l LookupService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var in urlBody
		if err := c.Bind(&in); err != nil {
			return badRequest(c, "invalid json body")
		}
		out, err := l.Scrape(c.Request().Context(), in.URL)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, map[string]any{"scraped_data": out})
	}
}
