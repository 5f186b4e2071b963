package tokenizer_test

import (
	"testing"

	"github.com/relaycache/llmproxy/tokenizer"
)

func TestCountTextIsPositiveForNonEmptyInput(t *testing.T) {
	c, err := tokenizer.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if n := c.CountText("hello, world"); n <= 0 {
		t.Fatalf("expected a positive token count, got %d", n)
	}
}

func TestCountTextIsZeroForEmptyInput(t *testing.T) {
	c, err := tokenizer.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if n := c.CountText(""); n != 0 {
		t.Fatalf("expected zero tokens for empty text, got %d", n)
	}
}

func TestCountMessagesAddsPerMessageOverhead(t *testing.T) {
	c, err := tokenizer.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	single := c.CountMessages([]string{"user: hi"})
	pair := c.CountMessages([]string{"user: hi", "assistant: hi"})
	if pair <= single {
		t.Fatalf("expected two messages to cost more tokens than one, got %d vs %d", pair, single)
	}
}
