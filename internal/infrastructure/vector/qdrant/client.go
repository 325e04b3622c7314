// Package qdrant implements the vector store over qdrant's REST API.
// Access control is enforced here natively: each point carries an
// access_roles payload and searches filter on it server side.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ekipteam/ekip/internal/core/domain"
)

const (
	vectorSize     = 384
	distanceMetric = "Cosine"
)

type Client struct {
	baseURL    string
	collection string
	httpClient *http.Client

	ensureOnce sync.Once
	ensureErr  error
}

func New(baseURL, collection string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type point struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

// ReplaceDocument removes every point belonging to doc and upserts the
// new chunk set, so re-ingesting a document never leaves stale chunks.
func (c *Client) ReplaceDocument(ctx context.Context, doc *domain.Document, chunks []string, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("replace document %s: %d chunks but %d vectors", doc.ID, len(chunks), len(vectors))
	}
	if err := c.ensureCollection(ctx); err != nil {
		return err
	}
	if err := c.deleteByDocID(ctx, doc.ID); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	accessRoles := domain.AccessRolesFor(doc.Classification, doc.Department)
	points := make([]point, len(chunks))
	for i, chunk := range chunks {
		points[i] = point{
			ID:     uuid.NewString(),
			Vector: vectors[i],
			Payload: map[string]any{
				"doc_id":         doc.ID,
				"doc_title":      doc.Title,
				"department":     doc.Department,
				"classification": string(doc.Classification),
				"access_roles":   accessRoles,
				"chunk_index":    i,
				"text":           chunk,
			},
		}
	}

	url := fmt.Sprintf("%s/collections/%s/points?wait=true", c.baseURL, c.collection)
	return c.do(ctx, http.MethodPut, url, map[string]any{"points": points}, nil)
}

func (c *Client) deleteByDocID(ctx context.Context, docID string) error {
	url := fmt.Sprintf("%s/collections/%s/points/delete?wait=true", c.baseURL, c.collection)
	body := map[string]any{
		"filter": map[string]any{
			"must": []map[string]any{
				{"key": "doc_id", "match": map[string]any{"value": docID}},
			},
		},
	}
	return c.do(ctx, http.MethodPost, url, body, nil)
}

type searchResponse struct {
	Result []struct {
		Score   float64        `json:"score"`
		Payload map[string]any `json:"payload"`
	} `json:"result"`
}

// Search runs a cosine similarity query. A nil filter means the caller
// may see everything; otherwise only points whose access_roles overlap
// filter.AnyRole are returned.
func (c *Client) Search(ctx context.Context, queryVector []float32, filter *domain.AccessFilter, limit int) ([]domain.Candidate, error) {
	body := map[string]any{
		"vector":       queryVector,
		"limit":        limit,
		"with_payload": true,
	}
	if filter != nil {
		body["filter"] = map[string]any{
			"must": []map[string]any{
				{"key": "access_roles", "match": map[string]any{"any": filter.AnyRole}},
			},
		}
	}

	var resp searchResponse
	url := fmt.Sprintf("%s/collections/%s/points/search", c.baseURL, c.collection)
	if err := c.do(ctx, http.MethodPost, url, body, &resp); err != nil {
		return nil, err
	}

	candidates := make([]domain.Candidate, 0, len(resp.Result))
	for _, hit := range resp.Result {
		candidates = append(candidates, domain.Candidate{
			DocID:          payloadString(hit.Payload, "doc_id"),
			DocTitle:       payloadString(hit.Payload, "doc_title"),
			Department:     payloadString(hit.Payload, "department"),
			Classification: domain.Classification(payloadString(hit.Payload, "classification")),
			ChunkIndex:     payloadInt(hit.Payload, "chunk_index"),
			Text:           payloadString(hit.Payload, "text"),
			Source:         domain.SourceVector,
			Score:          hit.Score,
		})
	}
	return candidates, nil
}

func (c *Client) ensureCollection(ctx context.Context) error {
	c.ensureOnce.Do(func() {
		url := fmt.Sprintf("%s/collections/%s", c.baseURL, c.collection)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			c.ensureErr = err
			return
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.ensureErr = fmt.Errorf("check collection %s: %w", c.collection, err)
			return
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			return
		}

		body := map[string]any{
			"vectors": map[string]any{"size": vectorSize, "distance": distanceMetric},
		}
		c.ensureErr = c.do(ctx, http.MethodPut, url, body, nil)
	})
	return c.ensureErr
}

func (c *Client) do(ctx context.Context, method, url string, payload, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode qdrant request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build qdrant request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call qdrant: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("qdrant returned status %d: %s", resp.StatusCode, detail)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode qdrant response: %w", err)
	}
	return nil
}

func payloadString(payload map[string]any, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}

func payloadInt(payload map[string]any, key string) int {
	if v, ok := payload[key].(float64); ok {
		return int(v)
	}
	return -1
}
