package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/application/ports"
	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/domain"
)

// DefaultTriviaAPIURL is the public catalog the population job pulls from.
const DefaultTriviaAPIURL = "https://api.truthordarebot.xyz/v1"

// triviaQuestion is the catalog's JSON representation of a prompt.
type triviaQuestion struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Rating   string `json:"rating"`
	Question string `json:"question"`
}

// TriviaClient fetches prompts from the trivia catalog over HTTP.
type TriviaClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewTriviaClient creates a new TriviaClient for the catalog rooted at baseURL.
func NewTriviaClient(baseURL string, timeout time.Duration) *TriviaClient {
	return &TriviaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchRandom returns one random prompt of the given kind.
func (c *TriviaClient) FetchRandom(
	ctx context.Context,
	kind domain.Kind,
	rating domain.Rating,
) (*ports.SourcePrompt, error) {
	endpoint := c.baseURL + "/" + kind.SourcePath()
	if rating != "" {
		endpoint += "?" + url.Values{"rating": {rating.Lower()}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("catalog returned %s", resp.Status)
	}

	var q triviaQuestion
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&q); err != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}

	return q.toSourcePrompt(kind)
}

// toSourcePrompt validates the catalog payload. A missing type falls back to the
// kind that was requested.
func (q triviaQuestion) toSourcePrompt(requested domain.Kind) (*ports.SourcePrompt, error) {
	if q.ID == "" {
		return nil, fmt.Errorf("catalog response has no id")
	}
	if strings.TrimSpace(q.Question) == "" {
		return nil, fmt.Errorf("catalog prompt %s: %w", q.ID, domain.ErrEmptyText)
	}

	kind := requested
	if q.Type != "" {
		parsed, ok := domain.ParseKind(q.Type)
		if !ok {
			return nil, fmt.Errorf("catalog prompt %s: %w: %q", q.ID, domain.ErrInvalidKind, q.Type)
		}
		kind = parsed
	}

	rating, ok := domain.ParseRating(q.Rating)
	if !ok {
		return nil, fmt.Errorf("catalog prompt %s: %w: %q", q.ID, domain.ErrInvalidRating, q.Rating)
	}

	return &ports.SourcePrompt{
		SourceID: q.ID,
		Kind:     kind,
		Rating:   rating,
		Text:     strings.TrimSpace(q.Question),
	}, nil
}

// Ensure TriviaClient implements ports.TriviaSource.
var _ ports.TriviaSource = (*TriviaClient)(nil)
