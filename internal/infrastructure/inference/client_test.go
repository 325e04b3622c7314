package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ekipteam/ekip/internal/infrastructure/resilience"
)

func testExecutor() *resilience.Executor {
	return resilience.NewExecutor(resilience.Policy{
		MaxAttempts:    2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     time.Millisecond,
		BackoffFactor:  1,
	})
}

func TestEmbedDecodesVectors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Inputs) != 2 {
			t.Errorf("expected 2 inputs, got %d", len(req.Inputs))
		}
		_ = json.NewEncoder(w).Encode([][]float32{{0.1, 0.2}, {0.3, 0.4}})
	}))
	defer server.Close()

	client := New(server.URL, testExecutor())
	vectors, err := client.Embed(context.Background(), []string{"alpha", "beta"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vectors) != 2 || vectors[1][0] != 0.3 {
		t.Fatalf("unexpected vectors: %v", vectors)
	}
}

func TestEmbedQueryReturnsFirstVector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode([][]float32{{1, 2, 3}})
	}))
	defer server.Close()

	client := New(server.URL, testExecutor())
	vector, err := client.EmbedQuery(context.Background(), "query")
	if err != nil {
		t.Fatalf("EmbedQuery: %v", err)
	}
	if len(vector) != 3 || vector[2] != 3 {
		t.Fatalf("unexpected vector: %v", vector)
	}
}

func TestEmbedVectorCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode([][]float32{{1}})
	}))
	defer server.Close()

	client := New(server.URL, testExecutor())
	_, err := client.Embed(context.Background(), []string{"a", "b"})
	if err == nil || !strings.Contains(err.Error(), "1 vectors for 2 texts") {
		t.Fatalf("expected count mismatch error, got %v", err)
	}
}

func TestPredictRealignsScoresToInputOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rerank" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		// Sorted by score, not input order.
		_ = json.NewEncoder(w).Encode([]rerankResult{
			{Index: 2, Score: 0.9},
			{Index: 0, Score: 0.5},
			{Index: 1, Score: 0.1},
		})
	}))
	defer server.Close()

	client := New(server.URL, testExecutor())
	scores, err := client.Predict(context.Background(), "q", []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	want := []float64{0.5, 0.1, 0.9}
	for i := range want {
		if scores[i] != want[i] {
			t.Fatalf("scores = %v, want %v", scores, want)
		}
	}
}

func TestPredictRejectsOutOfRangeIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode([]rerankResult{{Index: 5, Score: 0.9}})
	}))
	defer server.Close()

	client := New(server.URL, testExecutor())
	_, err := client.Predict(context.Background(), "q", []string{"only"})
	if err == nil {
		t.Fatalf("expected error for out of range index")
	}
}

func TestServerErrorRetriesThenFails(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(server.URL, testExecutor())
	_, err := client.Embed(context.Background(), []string{"a"})
	if err == nil {
		t.Fatalf("expected error from 503")
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
}

func TestClientErrorDoesNotRetry(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		http.Error(w, "bad input", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := New(server.URL, testExecutor())
	_, err := client.Embed(context.Background(), []string{"a"})
	if err == nil {
		t.Fatalf("expected error from 422")
	}
	if calls != 1 {
		t.Fatalf("expected 1 attempt, got %d", calls)
	}
}

func TestEmbedEmptyInputSkipsRequest(t *testing.T) {
	client := New("http://127.0.0.1:1", testExecutor())
	vectors, err := client.Embed(context.Background(), nil)
	if err != nil || vectors != nil {
		t.Fatalf("expected nil, nil; got %v, %v", vectors, err)
	}
}
