package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/relaycache/llmproxy/metrics"
	"github.com/relaycache/llmproxy/pricing"
)

// ServiceHealth is a cheap liveness probe, satisfied by cache.ExactStore,
// cache.VectorStore, and embedding.Client.
type ServiceHealth interface {
	HealthCheck(ctx context.Context) bool
}

// Flusher is the subset of cache.ExactStore the clear-cache endpoint
// depends on.
type Flusher interface {
	FlushAll(ctx context.Context) error
}

// AdminHandler serves GET /health, GET /metrics, GET /admin/stats, and
// POST /admin/clear-cache.
type AdminHandler struct {
	exact     ServiceHealth
	flusher   Flusher
	vector    ServiceHealth
	embedder  ServiceHealth
	metrics   *metrics.Metrics
	pricing   *pricing.Table
	costModel string
	logger    zerolog.Logger
}

// NewAdminHandler builds an AdminHandler. costModel names the pricing
// table entry used to estimate the aggregate cost figures /metrics
// reports — this proxy targets a single configured upstream model, so
// one entry is enough; an unrecognized costModel falls back to the
// table's documented default with a warning, per spec.
func NewAdminHandler(exact interface {
	ServiceHealth
	Flusher
}, vector ServiceHealth, embedder ServiceHealth, m *metrics.Metrics, priceTable *pricing.Table, costModel string, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		exact:     exact,
		flusher:   exact,
		vector:    vector,
		embedder:  embedder,
		metrics:   m,
		pricing:   priceTable,
		costModel: costModel,
		logger:    logger.With().Str("handler", "admin").Logger(),
	}
}

type serviceStatus struct {
	Redis      string `json:"redis"`
	Qdrant     string `json:"qdrant"`
	Embeddings string `json:"embeddings"`
}

func (h *AdminHandler) probeServices(ctx context.Context) (serviceStatus, bool) {
	cctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var redisUp, qdrantUp, embedUp bool
	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); redisUp = h.exact.HealthCheck(cctx) }()
	go func() { defer wg.Done(); qdrantUp = h.vector.HealthCheck(cctx) }()
	go func() { defer wg.Done(); embedUp = h.embedder.HealthCheck(cctx) }()
	wg.Wait()

	status := func(up bool) string {
		if up {
			return "up"
		}
		return "down"
	}

	svc := serviceStatus{
		Redis:      status(redisUp),
		Qdrant:     status(qdrantUp),
		Embeddings: status(embedUp),
	}
	healthy := redisUp && qdrantUp && embedUp
	return svc, healthy
}

type healthResponse struct {
	Status    string        `json:"status"`
	Services  serviceStatus `json:"services"`
	Timestamp time.Time     `json:"timestamp"`
}

// Health serves GET /health: fans out to the exact store, vector store,
// and embedding service health probes concurrently. Overall status is
// healthy iff all three are up.
func (h *AdminHandler) Health(w http.ResponseWriter, r *http.Request) {
	svc, healthy := h.probeServices(r.Context())

	resp := healthResponse{Services: svc, Timestamp: time.Now().UTC()}
	status := http.StatusOK
	if healthy {
		resp.Status = "healthy"
	} else {
		resp.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

type costAnalysis struct {
	Model             string  `json:"model"`
	EstimatedSavedUSD float64 `json:"estimated_cost_saved_usd"`
	EstimatedSpentUSD float64 `json:"estimated_cost_spent_usd"`
	Warning           string  `json:"warning,omitempty"`
}

func (h *AdminHandler) computeCostAnalysis(snap metrics.Snapshot) costAnalysis {
	ca := costAnalysis{Model: h.costModel}
	if h.pricing == nil {
		return ca
	}
	p, found := h.pricing.Lookup(h.costModel)
	if !found {
		ca.Warning = "model not in pricing table, using default rate"
	}
	avgPer1M := (p.InputPer1M + p.OutputPer1M) / 2
	ca.EstimatedSavedUSD = float64(snap.TokensSaved) / 1_000_000.0 * avgPer1M
	ca.EstimatedSpentUSD = float64(snap.TokensUsed) / 1_000_000.0 * avgPer1M
	return ca
}

type metricsResponse struct {
	metrics.Snapshot
	CostAnalysis costAnalysis `json:"cost_analysis"`
}

// Metrics serves GET /metrics: the raw counter snapshot plus derived
// cost figures from the configured pricing table.
func (h *AdminHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	snap := h.metrics.Snapshot()
	writeJSON(w, http.StatusOK, metricsResponse{
		Snapshot:     snap,
		CostAnalysis: h.computeCostAnalysis(snap),
	})
}

type statsResponse struct {
	metrics.Snapshot
	CostAnalysis costAnalysis  `json:"cost_analysis"`
	Services     serviceStatus `json:"services"`
}

// Stats serves GET /admin/stats: metrics plus current service status,
// without the overall healthy/unhealthy verdict Health computes.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	snap := h.metrics.Snapshot()
	svc, _ := h.probeServices(r.Context())
	writeJSON(w, http.StatusOK, statsResponse{
		Snapshot:     snap,
		CostAnalysis: h.computeCostAnalysis(snap),
		Services:     svc,
	})
}

// ClearCache serves POST /admin/clear-cache: flushes the exact tier
// only. The semantic tier is intentionally left untouched — it is the
// proxy's long-lived associative memory.
func (h *AdminHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.flusher.FlushAll(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("cache flush failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "exact cache tier flushed",
	})
}
