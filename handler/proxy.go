// Package handler exposes the HTTP surface: the proxy endpoint that
// fronts the cache pipeline, and the administrative endpoints that
// report health, metrics, and let an operator flush the exact tier.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/relaycache/llmproxy/chatapi"
	"github.com/relaycache/llmproxy/pipeline"
)

// Completer is the pipeline surface the proxy handler depends on.
type Completer interface {
	Handle(ctx context.Context, req *chatapi.Request, hdr pipeline.Headers) (*chatapi.Response, error)
}

// ProxyHandler serves POST /v1/chat/completions.
type ProxyHandler struct {
	pipeline Completer
	logger   zerolog.Logger
}

// NewProxyHandler creates a ProxyHandler.
func NewProxyHandler(p Completer, logger zerolog.Logger) *ProxyHandler {
	return &ProxyHandler{pipeline: p, logger: logger.With().Str("handler", "proxy").Logger()}
}

// ChatCompletions handles POST /v1/chat/completions: decode, run the
// pipeline, and write back the response (or a 500 on failure) verbatim.
func (h *ProxyHandler) ChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req chatapi.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Model == "" {
		writeError(w, http.StatusBadRequest, "model field is required")
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages field is required and must not be empty")
		return
	}

	hdr := parseHeaders(r)

	resp, err := h.pipeline.Handle(r.Context(), &req, hdr)
	if err != nil {
		h.logger.Error().Err(err).Msg("pipeline request failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// parseHeaders translates the two recognized request headers into
// pipeline.Headers.
func parseHeaders(r *http.Request) pipeline.Headers {
	var hdr pipeline.Headers
	hdr.BypassCache = strings.EqualFold(r.Header.Get("x-bypass-cache"), "true")

	if raw := r.Header.Get("x-cache-ttl"); raw != "" {
		if secs, err := strconv.ParseUint(raw, 10, 64); err == nil {
			ttl := time.Duration(secs) * time.Second
			hdr.TTLOverride = &ttl
		}
	}
	return hdr
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
