// Package tokenizer estimates token counts with a BPE vocabulary. The
// pipeline uses it as a fallback for metrics and the request log when
// a response reports zero total tokens.
package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// encodingName is the BPE vocabulary the configured provider uses.
// cl100k_base covers GPT-3.5/GPT-4-family models, which is the only
// family this proxy targets.
const encodingName = "cl100k_base"

// Counter estimates token counts with the provider's actual BPE
// vocabulary, replacing a flat chars-per-token guess with a real
// tokenizer.
type Counter struct {
	enc *tiktoken.Tiktoken
}

// New builds a Counter. It returns an error if the vocabulary cannot
// be loaded.
func New() (*Counter, error) {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer encoding %q: %w", encodingName, err)
	}
	return &Counter{enc: enc}, nil
}

// CountText returns the BPE token count of text.
func (c *Counter) CountText(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

// CountMessages returns the approximate prompt token count of a full
// message list, by summing each message's role and content tokens plus
// a fixed per-message framing overhead.
func (c *Counter) CountMessages(roleAndContent []string) int {
	total := 0
	for _, text := range roleAndContent {
		total += c.CountText(text) + 4
	}
	return total
}
