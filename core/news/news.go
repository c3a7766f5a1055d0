package news

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/trezcool/edutrack/core"
)

const (
	DefaultQuery = "education technology"
	DefaultMax   = 5
	MaxArticles  = 10
)

type Article struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// Result is never an error: on failure it holds the fallback articles and the failure message.
type Result struct {
	Query     string
	Articles  []Article
	FromCache bool
	Fallback  bool
	Error     string
}

type (
	// Searcher asks a search-capable LLM and returns the text of its answer.
	Searcher interface {
		Complete(ctx context.Context, prompt string) (string, error)
	}

	Cache interface {
		Get(key string) ([]Article, bool)
		Set(key string, articles []Article)
	}

	Service struct {
		searcher Searcher
		cache    Cache
		logger   core.Logger
	}
)

func NewService(searcher Searcher, cache Cache, logger core.Logger) *Service {
	return &Service{searcher: searcher, cache: cache, logger: logger}
}

// NormalizeQuery applies the defaults: empty query means DefaultQuery, max 0 means DefaultMax,
// other values are clamped to [1, MaxArticles].
func NormalizeQuery(query string, max int) (string, int) {
	query = core.CleanString(query)
	if query == "" {
		query = DefaultQuery
	}
	switch {
	case max == 0:
		max = DefaultMax
	case max < 1:
		max = 1
	case max > MaxArticles:
		max = MaxArticles
	}
	return query, max
}

func cacheKey(query string, max int) string {
	return fmt.Sprintf("news:%s:%d", query, max)
}

func prompt(query string, max int) string {
	return fmt.Sprintf(`Provide %d recent news articles about %q.
Return ONLY valid JSON array where each item has: title, description, and url.
Be accurate and provide real recent news.
Example: [{"title":"News Title","description":"Brief summary","url":"https://example.com"}]`, max, query)
}

// Search returns recent articles about query, from the cache when a fresh entry exists.
func (svc *Service) Search(ctx context.Context, query string, max int) Result {
	query, max = NormalizeQuery(query, max)
	key := cacheKey(query, max)

	if articles, ok := svc.cache.Get(key); ok {
		return Result{Query: query, Articles: articles, FromCache: true}
	}

	articles, err := svc.search(ctx, query, max)
	if err != nil {
		svc.logger.Warn("news search failed, serving fallback articles", err, map[string]interface{}{"query": query})
		return Result{Query: query, Articles: Fallback(query), Fallback: true, Error: err.Error()}
	}

	svc.cache.Set(key, articles)
	return Result{Query: query, Articles: articles}
}

func (svc *Service) search(ctx context.Context, query string, max int) ([]Article, error) {
	content, err := svc.searcher.Complete(ctx, prompt(query, max))
	if err != nil {
		return nil, err
	}
	articles, err := ParseArticles(content)
	if err != nil {
		return nil, err
	}
	if len(articles) > max {
		articles = articles[:max]
	}
	return articles, nil
}

// ParseArticles extracts the JSON array of articles from a free-text answer.
// Text and code fences around the array are ignored; items without a title are dropped.
func ParseArticles(content string) ([]Article, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end < start {
		return nil, core.NewParseError("news articles", "no JSON array found", nil)
	}

	var raw []Article
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return nil, core.NewParseError("news articles", "invalid JSON array", err)
	}

	articles := make([]Article, 0, len(raw))
	for _, a := range raw {
		a.Title = core.CleanString(a.Title)
		if a.Title == "" {
			continue
		}
		a.Description = core.CleanString(a.Description)
		a.URL = core.CleanString(a.URL)
		articles = append(articles, a)
	}
	return articles, nil
}
