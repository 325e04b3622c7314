// Package inference talks to the text-embeddings-inference service that
// hosts both the sentence embedding model and the cross-encoder.
package inference

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ekipteam/ekip/internal/infrastructure/resilience"
)

const defaultRequestTimeout = 30 * time.Second

type Client struct {
	baseURL    string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		executor:   executor,
	}
}

type embedRequest struct {
	Inputs []string `json:"inputs"`
}

// Embed returns one vector per input text, in input order.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var vectors [][]float32
	err := c.executor.Execute(ctx, "inference.embed", func(ctx context.Context) error {
		vectors = nil
		return postJSON(ctx, c.httpClient, c.baseURL+"/embed", embedRequest{Inputs: texts}, &vectors)
	}, classifyError)
	if err != nil {
		return nil, fmt.Errorf("embed %d texts: %w", len(texts), err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embed returned %d vectors for %d texts", len(vectors), len(texts))
	}
	return vectors, nil
}

func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

type rerankRequest struct {
	Query string   `json:"query"`
	Texts []string `json:"texts"`
}

type rerankResult struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// Predict scores each passage against the query with the cross-encoder.
// The service replies sorted by score; results are realigned to the
// input passage order.
func (c *Client) Predict(ctx context.Context, query string, passages []string) ([]float64, error) {
	if len(passages) == 0 {
		return nil, nil
	}

	var results []rerankResult
	err := c.executor.Execute(ctx, "inference.rerank", func(ctx context.Context) error {
		results = nil
		return postJSON(ctx, c.httpClient, c.baseURL+"/rerank", rerankRequest{Query: query, Texts: passages}, &results)
	}, classifyError)
	if err != nil {
		return nil, fmt.Errorf("rerank %d passages: %w", len(passages), err)
	}

	scores := make([]float64, len(passages))
	seen := 0
	for _, r := range results {
		if r.Index < 0 || r.Index >= len(passages) {
			return nil, fmt.Errorf("rerank returned index %d for %d passages", r.Index, len(passages))
		}
		scores[r.Index] = r.Score
		seen++
	}
	if seen != len(passages) {
		return nil, fmt.Errorf("rerank returned %d scores for %d passages", seen, len(passages))
	}
	return scores, nil
}
