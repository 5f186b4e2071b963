package upstream_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/relaycache/llmproxy/chatapi"
	"github.com/relaycache/llmproxy/upstream"
)

func TestCompleteReturnsResponseVerbatim(t *testing.T) {
	want := chatapi.Response{
		ID:      "resp-1",
		Created: 1700000000,
		Model:   "gpt-4",
		Choices: []chatapi.Choice{{Index: 0, Message: chatapi.Message{Role: "assistant", Content: "hi"}}},
		Usage:   chatapi.Usage{PromptTokens: 1, CompletionTokens: 1, TotalTokens: 2},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Fatalf("unexpected Authorization header: %q", got)
		}
		if r.URL.Path != "/chat/completions" {
			t.Fatalf("unexpected path: %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(want)
	}))
	defer srv.Close()

	c := upstream.New(srv.URL, "sk-test")
	got, err := c.Complete(context.Background(), &chatapi.Request{Model: "gpt-4"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got.ID != want.ID || got.Usage.TotalTokens != want.Usage.TotalTokens {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestCompleteReportsNon2xxAsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	c := upstream.New(srv.URL, "sk-test")
	if _, err := c.Complete(context.Background(), &chatapi.Request{Model: "gpt-4"}); err == nil {
		t.Fatalf("expected an error for a 500 response")
	}
}
