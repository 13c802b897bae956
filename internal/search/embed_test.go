package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// fakeEmbeddingServer answers /embeddings with one small vector per input,
// deliberately returning data entries out of order to exercise index-based
// reassembly.
func fakeEmbeddingServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		calls.Add(1)

		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}

		var resp embeddingResponse
		for i := len(req.Input) - 1; i >= 0; i-- {
			resp.Data = append(resp.Data, embeddingData{
				Index:     i,
				Embedding: []float32{float32(i), float32(len(req.Input[i]))},
			})
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestEmbedOrdersByIndex(t *testing.T) {
	var calls atomic.Int32
	srv := fakeEmbeddingServer(t, &calls)
	defer srv.Close()

	client := NewEmbeddingClient("test-key", "test-model", srv.URL, 2)

	vectors, err := client.Embed(context.Background(), []string{"a", "bb", "ccc"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vectors) != 3 {
		t.Fatalf("got %d vectors, want 3", len(vectors))
	}
	for i, v := range vectors {
		if v[0] != float32(i) {
			t.Errorf("vector %d carries index %v, results not reordered", i, v[0])
		}
	}
}

func TestEmbedBatchSplitsRequests(t *testing.T) {
	var calls atomic.Int32
	srv := fakeEmbeddingServer(t, &calls)
	defer srv.Close()

	client := NewEmbeddingClient("test-key", "test-model", srv.URL, 2)

	texts := []string{"one", "two", "three", "four", "five"}
	vectors, err := client.EmbedBatch(context.Background(), texts, 2)
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}

	if len(vectors) != len(texts) {
		t.Fatalf("got %d vectors, want %d", len(vectors), len(texts))
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("got %d API calls, want 3", got)
	}
	// Each vector's second component is the length of its source text.
	for i, v := range vectors {
		if v[1] != float32(len(texts[i])) {
			t.Errorf("vector %d = %v, does not match text %q", i, v, texts[i])
		}
	}
}

func TestEmbedBatchEmpty(t *testing.T) {
	var calls atomic.Int32
	srv := fakeEmbeddingServer(t, &calls)
	defer srv.Close()

	client := NewEmbeddingClient("test-key", "test-model", srv.URL, 2)

	vectors, err := client.EmbedBatch(context.Background(), nil, 2)
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if vectors != nil {
		t.Errorf("expected nil for empty input, got %v", vectors)
	}
	if got := calls.Load(); got != 0 {
		t.Errorf("expected no API calls, got %d", got)
	}
}

func TestEmbedQuery(t *testing.T) {
	var calls atomic.Int32
	srv := fakeEmbeddingServer(t, &calls)
	defer srv.Close()

	client := NewEmbeddingClient("test-key", "test-model", srv.URL, 2)

	vector, err := client.EmbedQuery(context.Background(), "hello")
	if err != nil {
		t.Fatalf("EmbedQuery: %v", err)
	}
	if len(vector) != 2 || vector[1] != 5 {
		t.Errorf("unexpected query vector %v", vector)
	}
}

func TestEmbedAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewEmbeddingClient("test-key", "test-model", srv.URL, 2)

	if _, err := client.Embed(context.Background(), []string{"a"}); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}
