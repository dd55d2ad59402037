package postag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultHTTPTimeout bounds a single tagging request.
const DefaultHTTPTimeout = 10 * time.Second

// HTTPTagger asks a remote model to tag words.
//
// The service receives {"words": [...]} as a JSON POST body and answers
// with {"tags": [...]}, one tag per word.
type HTTPTagger struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// HTTPOption configures an HTTPTagger.
type HTTPOption func(*HTTPTagger)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(t *HTTPTagger) { t.client = c }
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) HTTPOption {
	return func(t *HTTPTagger) {
		if d > 0 {
			t.client = &http.Client{Timeout: d}
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) HTTPOption {
	return func(t *HTTPTagger) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewHTTPTagger creates a tagger backed by the service at url.
func NewHTTPTagger(url string, opts ...HTTPOption) *HTTPTagger {
	t := &HTTPTagger{
		url:    url,
		client: &http.Client{Timeout: DefaultHTTPTimeout},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type tagRequest struct {
	Words []string `json:"words"`
}

type tagResponse struct {
	Tags []string `json:"tags"`
}

// Tag implements Tagger. Every failure to obtain a usable answer is
// reported as ErrUnavailable.
func (t *HTTPTagger) Tag(ctx context.Context, words []string) ([]string, error) {
	if len(words) == 0 {
		return nil, ErrEmptyInput
	}

	body, err := json.Marshal(tagRequest{Words: words})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrUnavailable, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	t.logger.Debug("tagger request",
		slog.String("url", t.url),
		slog.Int("words", len(words)),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: HTTP %d", ErrUnavailable, resp.StatusCode)
	}

	var out tagResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if len(out.Tags) != len(words) {
		return nil, fmt.Errorf("%w: got %d tags for %d words", ErrUnavailable, len(out.Tags), len(words))
	}
	return out.Tags, nil
}
