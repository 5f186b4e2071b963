// Package pipeline orchestrates the fingerprint, exact-tier,
// semantic-tier, and upstream components into the full request-handling
// algorithm: fingerprint, probe tiers cheapest-first, call upstream on
// a full miss, write back to both tiers.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/relaycache/llmproxy/cache"
	"github.com/relaycache/llmproxy/chatapi"
	"github.com/relaycache/llmproxy/fingerprint"
	"github.com/relaycache/llmproxy/metrics"
	"github.com/relaycache/llmproxy/pricing"
	"github.com/relaycache/llmproxy/requestlog"
)

// ExactStore is the subset of cache.ExactStore the pipeline depends on.
// Defined here, at the consumer, so tests can substitute a fake without
// touching the cache package.
type ExactStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// VectorStore is the subset of cache.VectorStore the pipeline depends on.
type VectorStore interface {
	Search(ctx context.Context, embedding []float32, threshold float32) ([]byte, error)
	Upsert(ctx context.Context, fingerprint string, embedding []float32, responseBlob []byte) error
}

// Embedder is the subset of embedding.Client the pipeline depends on.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Upstream is the subset of upstream.Client the pipeline depends on.
type Upstream interface {
	Complete(ctx context.Context, req *chatapi.Request) (*chatapi.Response, error)
}

// TokenCounter is the subset of tokenizer.Counter the pipeline depends
// on. It is consulted only when a response's usage block is missing or
// reports zero tokens — a cached blob predating usage accounting, or an
// upstream that omits it — so metrics and cost reporting still have a
// number to work with.
type TokenCounter interface {
	CountMessages(roleAndContent []string) int
}

// SemanticThreshold is the fixed cosine-similarity cutoff for a
// semantic-tier hit.
const SemanticThreshold = 0.90

// defaultTTL is applied to exact-tier writes when temperature is at or
// below hotTempThreshold, and always to semantic-hit promotion.
const defaultTTL = 86400 * time.Second

// hotTTL is applied to exact-tier writes when temperature exceeds
// hotTempThreshold — a high-temperature response is less likely to be
// worth caching long, so it expires sooner.
const hotTTL = 3600 * time.Second

const hotTempThreshold = 0.7

// Headers carries the two request headers the pipeline inspects.
type Headers struct {
	// BypassCache skips both cache-tier reads; writes still occur.
	BypassCache bool
	// TTLOverride, if non-nil, replaces the computed write-back TTL
	// for the exact tier on a miss. It never affects semantic-hit
	// promotion, which always uses defaultTTL.
	TTLOverride *time.Duration
}

// PromRecorder is the subset of observability.PromMetrics the pipeline
// needs, kept narrow so pipeline does not import the observability
// package's Prometheus registration concerns.
type PromRecorder interface {
	RecordExactHit()
	RecordSemanticHit(tokensSaved int64)
	RecordMiss(tokensUsed int64)
}

// Pipeline wires every adapter together. All fields are shared,
// cheaply-clonable handles safe for concurrent use by many request
// tasks.
type Pipeline struct {
	exact    ExactStore
	vector   VectorStore
	embedder Embedder
	upstream Upstream
	metrics  *metrics.Metrics
	prom     PromRecorder
	pricing  *pricing.Table
	log      requestlog.Writer
	logger   zerolog.Logger
	tokens   TokenCounter
}

// WithTokenizer attaches a fallback token counter, used when a response
// reaches the pipeline with a zero-valued usage block, and returns the
// Pipeline for chaining at construction time.
func (p *Pipeline) WithTokenizer(tc TokenCounter) *Pipeline {
	p.tokens = tc
	return p
}

// New builds a Pipeline from its constituent adapters.
func New(exact ExactStore, vector VectorStore, embedder Embedder, up Upstream, m *metrics.Metrics, prom PromRecorder, priceTable *pricing.Table, log requestlog.Writer, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		exact:    exact,
		vector:   vector,
		embedder: embedder,
		upstream: up,
		metrics:  m,
		prom:     prom,
		pricing:  priceTable,
		log:      log,
		logger:   logger.With().Str("component", "pipeline").Logger(),
	}
}

// Handle runs the full algorithm for req and returns the chat-completion
// response to send back to the caller, or an error that the HTTP layer
// must translate into a 500 — every other failure mode inside Handle is
// absorbed and logged, never returned.
func (p *Pipeline) Handle(ctx context.Context, req *chatapi.Request, hdr Headers) (*chatapi.Response, error) {
	key := fingerprint.Compute(req)

	if !hdr.BypassCache {
		if resp, ok := p.probeExact(ctx, key); ok {
			return resp, nil
		}
	}

	promptText := fingerprint.EmbeddingText(req)
	vec, embedErr := p.embedder.Embed(ctx, promptText)
	if embedErr != nil {
		p.logger.Warn().Err(embedErr).Msg("embedding request failed, skipping semantic tier")
	}

	if !hdr.BypassCache && embedErr == nil {
		if resp, ok := p.probeSemantic(ctx, key, vec); ok {
			return resp, nil
		}
	}

	resp, err := p.upstream.Complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("upstream call failed: %w", err)
	}

	blob, err := chatapi.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("serialize response for cache write-back: %w", err)
	}

	ttl := p.chooseTTL(req, hdr)
	if err := p.exact.Set(ctx, key, blob, ttl); err != nil {
		p.logger.Warn().Err(err).Msg("exact tier write-back failed")
	}
	if embedErr == nil {
		if err := p.vector.Upsert(ctx, key, vec, blob); err != nil {
			p.logger.Warn().Err(err).Msg("vector tier write-back failed")
		}
	}

	tokens := p.tokensOf(resp)
	p.metrics.RecordMiss(tokens)
	if p.prom != nil {
		p.prom.RecordMiss(tokens)
	}
	p.writeRequestLog("miss", resp)

	return resp, nil
}

// probeExact returns (response, true) on an exact-tier hit. Transient
// errors and misses are both reported as (nil, false) — the caller
// cannot distinguish them and does not need to.
func (p *Pipeline) probeExact(ctx context.Context, key string) (*chatapi.Response, bool) {
	blob, err := p.exact.Get(ctx, key)
	if err == cache.ErrNotFound {
		return nil, false
	}
	if err != nil {
		p.logger.Warn().Err(err).Msg("exact tier read failed, continuing")
		return nil, false
	}

	resp, err := chatapi.Unmarshal(blob)
	if err != nil {
		p.logger.Warn().Err(err).Msg("exact tier entry failed to deserialize, continuing")
		return nil, false
	}

	p.metrics.RecordExactHit()
	if p.prom != nil {
		p.prom.RecordExactHit()
	}
	p.writeRequestLog("exact_hit", resp)
	return resp, true
}

// tokensOf returns resp's reported total tokens, falling back to a
// tokenizer estimate over its message content when usage was never
// populated — e.g. a blob cached before this proxy tracked usage.
func (p *Pipeline) tokensOf(resp *chatapi.Response) int64 {
	if resp.Usage.TotalTokens > 0 {
		return int64(resp.Usage.TotalTokens)
	}
	if p.tokens == nil {
		return 0
	}
	texts := make([]string, 0, len(resp.Choices))
	for _, c := range resp.Choices {
		texts = append(texts, c.Message.Role+": "+c.Message.Content)
	}
	return int64(p.tokens.CountMessages(texts))
}

// probeSemantic returns (response, true) on a semantic-tier hit, and
// promotes the hit into the exact tier at the default TTL before
// returning.
func (p *Pipeline) probeSemantic(ctx context.Context, key string, vec []float32) (*chatapi.Response, bool) {
	blob, err := p.vector.Search(ctx, vec, SemanticThreshold)
	if err == cache.ErrNotFound {
		return nil, false
	}
	if err != nil {
		p.logger.Warn().Err(err).Msg("semantic tier search failed, continuing")
		return nil, false
	}

	resp, err := chatapi.Unmarshal(blob)
	if err != nil {
		p.logger.Warn().Err(err).Msg("semantic tier entry failed to deserialize, continuing")
		return nil, false
	}

	if err := p.exact.Set(ctx, key, blob, defaultTTL); err != nil {
		p.logger.Warn().Err(err).Msg("semantic-hit promotion to exact tier failed")
	}

	tokensSaved := p.tokensOf(resp)
	p.metrics.RecordSemanticHit(tokensSaved)
	if p.prom != nil {
		p.prom.RecordSemanticHit(tokensSaved)
	}
	p.writeRequestLog("semantic_hit", resp)
	return resp, true
}

// chooseTTL picks the exact-tier write-back TTL for a full miss: the
// request's override if present, else a short TTL for high-temperature
// (less repeatable) responses, else the long default.
func (p *Pipeline) chooseTTL(req *chatapi.Request, hdr Headers) time.Duration {
	if hdr.TTLOverride != nil {
		return *hdr.TTLOverride
	}
	if req.Temperature != nil && *req.Temperature > hotTempThreshold {
		return hotTTL
	}
	return defaultTTL
}

func (p *Pipeline) writeRequestLog(status string, resp *chatapi.Response) {
	if p.log == nil {
		return
	}
	var cost float64
	if p.pricing != nil {
		cost = p.pricing.CalculateCost(resp.Model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	}
	tokens := uint64(p.tokensOf(resp))
	if err := p.log.Log(status, resp.Model, tokens, cost); err != nil {
		p.logger.Warn().Err(err).Msg("request log write failed")
	}
}
