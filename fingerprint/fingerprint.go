// Package fingerprint derives a deterministic exact-match cache key
// from a chat-completion request.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/relaycache/llmproxy/chatapi"
)

// Compute returns the exact-tier cache key for req. Two requests that
// differ only in the surrounding whitespace or letter case of message
// content or the model identifier, or in the letter case of message
// role, produce the same key. Whitespace around a role is not trimmed.
// Any change to message order, model, temperature, or token cap
// produces a different key.
//
// The key ends with the lowercased, trimmed model identifier as given.
// For a model made of letters, digits, '.' and '-', the key matches
// ^cache:exact:[0-9a-f]{64}:[a-z0-9.\-]+$.
func Compute(req *chatapi.Request) string {
	normalized := make([]string, len(req.Messages))
	for i, msg := range req.Messages {
		content := strings.ToLower(strings.TrimSpace(msg.Content))
		role := strings.ToLower(msg.Role)
		normalized[i] = role + ":" + content
	}
	combined := strings.Join(normalized, "|")

	model := strings.ToLower(strings.TrimSpace(req.Model))

	tempStr := "temp:none"
	if req.Temperature != nil {
		tempStr = "temp:" + strconv.FormatFloat(*req.Temperature, 'g', -1, 64)
	}

	tokensStr := "tokens:none"
	if req.MaxTokens != nil {
		tokensStr = "tokens:" + strconv.Itoa(*req.MaxTokens)
	}

	toHash := fmt.Sprintf("%s|model:%s|%s|%s", combined, model, tempStr, tokensStr)

	sum := sha256.Sum256([]byte(toHash))
	hexDigest := hex.EncodeToString(sum[:])

	return fmt.Sprintf("cache:exact:%s:%s", hexDigest, model)
}

// EmbeddingText builds the verbatim prompt text used to derive a
// semantic embedding. This intentionally differs from Compute's
// normalization — it preserves case and joins with newlines instead of
// "|" because it feeds similarity, not identity.
func EmbeddingText(req *chatapi.Request) string {
	lines := make([]string, len(req.Messages))
	for i, msg := range req.Messages {
		lines[i] = fmt.Sprintf("%s: %s", msg.Role, msg.Content)
	}
	return strings.Join(lines, "\n")
}
