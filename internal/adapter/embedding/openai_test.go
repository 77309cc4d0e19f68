package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestEmbedder(t *testing.T, handler http.HandlerFunc) *OpenAIEmbedder {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	t.Setenv("TEST_API_KEY", "secret")
	e, err := NewOpenAICompatibleEmbedder("TEST_API_KEY", "text-embedding-3-small", srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestEmbed(t *testing.T) {
	e := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected authorization header: %q", got)
		}

		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}

		resp := embeddingResponse{}
		for i := range req.Input {
			resp.Data = append(resp.Data, embeddingData{
				Embedding: []float32{float32(i), 1},
				Index:     i,
			})
		}
		json.NewEncoder(w).Encode(resp)
	})

	embeddings, err := e.Embed(context.Background(), []string{"red shirt", "blue jacket"})
	if err != nil {
		t.Fatal(err)
	}
	if len(embeddings) != 2 {
		t.Fatalf("expected 2 embeddings, got %d", len(embeddings))
	}
	if embeddings[1][0] != 1 {
		t.Errorf("embeddings not ordered by index: %v", embeddings)
	}
}

func TestEmbedEmptyInput(t *testing.T) {
	e := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty input")
	})

	embeddings, err := e.Embed(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if embeddings != nil {
		t.Errorf("expected nil embeddings, got %v", embeddings)
	}
}

func TestEmbedServerError(t *testing.T) {
	e := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})

	_, err := e.Embed(context.Background(), []string{"red shirt"})
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestEmbedAPIError(t *testing.T) {
	e := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embeddingResponse{
			Error: &apiError{Message: "invalid model", Type: "invalid_request_error"},
		})
	})

	_, err := e.Embed(context.Background(), []string{"red shirt"})
	if err == nil {
		t.Fatal("expected API error to propagate")
	}
}

func TestEmbedContextCancelled(t *testing.T) {
	e := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embeddingResponse{})
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Embed(ctx, []string{"red shirt"})
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestMissingAPIKey(t *testing.T) {
	t.Setenv("EMPTY_API_KEY", "")
	if _, err := NewOpenAICompatibleEmbedder("EMPTY_API_KEY", "text-embedding-3-small", "http://localhost"); err == nil {
		t.Fatal("expected error when API key env is empty")
	}
}
