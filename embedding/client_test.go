package embedding_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/relaycache/llmproxy/embedding"
)

func vec(n int) []float32 {
	v := make([]float32, n)
	for i := range v {
		v[i] = 0.01
	}
	return v
}

func TestEmbedReturnsVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if !strings.Contains(body.Text, "hello") {
			t.Fatalf("unexpected request text: %q", body.Text)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"embedding": vec(embedding.Dimension)})
	}))
	defer srv.Close()

	c := embedding.New(srv.URL)
	got, err := c.Embed(context.Background(), "user: hello")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(got) != embedding.Dimension {
		t.Fatalf("got %d components, want %d", len(got), embedding.Dimension)
	}
}

func TestEmbedRejectsWrongDimension(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"embedding": vec(10)})
	}))
	defer srv.Close()

	c := embedding.New(srv.URL)
	if _, err := c.Embed(context.Background(), "hi"); err == nil {
		t.Fatalf("expected an error for a short embedding")
	}
}

func TestEmbedReportsNon2xxAsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := embedding.New(srv.URL)
	if _, err := c.Embed(context.Background(), "hi"); err == nil {
		t.Fatalf("expected an error for a non-2xx response")
	}
}
