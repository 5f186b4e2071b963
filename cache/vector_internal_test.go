package cache

import (
	"context"
	"errors"
	"testing"
)

func TestIsAlreadyExistsMatchesQdrantWording(t *testing.T) {
	cases := map[string]bool{
		"rpc error: code = AlreadyExists desc = Collection `llm_cache` already exists!": true,
		"already exists":        true,
		"connection refused":    false,
		"collection not found":  false,
	}
	for msg, want := range cases {
		if got := isAlreadyExists(errors.New(msg)); got != want {
			t.Errorf("isAlreadyExists(%q) = %v, want %v", msg, got, want)
		}
	}
	if isAlreadyExists(nil) {
		t.Errorf("isAlreadyExists(nil) should be false")
	}
}

func TestVectorStoreRejectsWrongDimension(t *testing.T) {
	s := &VectorStore{}
	short := make([]float32, Dimension-1)

	if err := s.Upsert(context.Background(), "fp", short, []byte("{}")); err == nil {
		t.Fatalf("expected Upsert to reject a short embedding")
	}
	if _, err := s.Search(context.Background(), short, 0.9); err == nil {
		t.Fatalf("expected Search to reject a short embedding")
	}
}
