package llmsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/trezcool/edutrack/core"
	"github.com/trezcool/edutrack/core/news"
)

const perplexityService = "news search"

var ErrNewsKeyMissing = errors.New("API key not configured")

type (
	perplexityMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	perplexityRequest struct {
		Model       string              `json:"model"`
		Messages    []perplexityMessage `json:"messages"`
		Temperature float64             `json:"temperature"`
		MaxTokens   int                 `json:"max_tokens"`
	}

	perplexityResponse struct {
		Choices []struct {
			Message perplexityMessage `json:"message"`
		} `json:"choices"`
	}
)

// Perplexity runs news searches against a Perplexity-compatible chat completions endpoint.
type Perplexity struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

var _ news.Searcher = (*Perplexity)(nil)

func NewPerplexity(conf *core.Config, httpClient *http.Client) *Perplexity {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: conf.HTTPClientTimeout}
	}
	return &Perplexity{
		apiKey:     conf.News.APIKey,
		model:      conf.News.Model,
		endpoint:   conf.News.Endpoint,
		httpClient: httpClient,
	}
}

// Complete sends prompt as a single user message and returns the first choice's content.
func (p *Perplexity) Complete(ctx context.Context, prompt string) (string, error) {
	if p.apiKey == "" {
		return "", core.NewUpstreamError(perplexityService, 0, "", ErrNewsKeyMissing)
	}

	payload, err := json.Marshal(perplexityRequest{
		Model:       p.model,
		Messages:    []perplexityMessage{{Role: "user", Content: prompt}},
		Temperature: 0.2,
		MaxTokens:   1000,
	})
	if err != nil {
		return "", errors.Wrap(err, "encoding request")
	}

	req, err := http.NewRequest(http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", errors.Wrap(err, "creating request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	body, err := do(ctx, p.httpClient, perplexityService, req)
	if err != nil {
		return "", err
	}

	var resp perplexityResponse
	if err = json.Unmarshal(body, &resp); err != nil {
		return "", core.NewParseError("news response", "invalid JSON", err)
	}
	if len(resp.Choices) == 0 {
		return "", core.NewParseError("news response", "no choices", nil)
	}
	return resp.Choices[0].Message.Content, nil
}
