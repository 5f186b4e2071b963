// Package pricing estimates the USD cost of a chat completion from its
// token usage, for the administrative stats surface.
package pricing

import (
	"math"
	"strings"
	"sync"
)

// ModelPricing holds per-model token pricing in USD per 1M tokens.
type ModelPricing struct {
	InputPer1M  float64
	OutputPer1M float64
}

// unknownModelPricing is the flat-rate fallback applied to any model
// not present in the table.
var unknownModelPricing = ModelPricing{InputPer1M: 1.00, OutputPer1M: 2.00}

// Table holds pricing data for a fixed set of models, with a flat-rate
// fallback for anything unrecognized.
type Table struct {
	mu      sync.RWMutex
	pricing map[string]ModelPricing
}

// Default returns the built-in pricing table.
func Default() *Table {
	return &Table{
		pricing: map[string]ModelPricing{
			"gpt-4o":                 {InputPer1M: 2.50, OutputPer1M: 10.00},
			"gpt-4o-mini":            {InputPer1M: 0.15, OutputPer1M: 0.60},
			"gpt-4-turbo":            {InputPer1M: 10.00, OutputPer1M: 30.00},
			"gpt-4":                  {InputPer1M: 30.00, OutputPer1M: 60.00},
			"gpt-3.5-turbo":          {InputPer1M: 0.50, OutputPer1M: 1.50},
			"text-embedding-3-small": {InputPer1M: 0.02, OutputPer1M: 0.0},
			"text-embedding-3-large": {InputPer1M: 0.13, OutputPer1M: 0.0},
		},
	}
}

// Lookup returns the pricing for model, case-insensitively, and
// whether it was found in the table (as opposed to the flat-rate
// fallback).
func (t *Table) Lookup(model string) (ModelPricing, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if p, ok := t.pricing[strings.ToLower(strings.TrimSpace(model))]; ok {
		return p, true
	}
	return unknownModelPricing, false
}

// CalculateCost returns the USD cost of a completion with the given
// prompt and completion token counts, rounded to eight decimal places.
// An unrecognized model falls back to a flat estimate rather than
// failing the request — cost reporting is informational, not billing.
func (t *Table) CalculateCost(model string, promptTokens, completionTokens int) float64 {
	p, _ := t.Lookup(model)
	inputCost := (float64(promptTokens) / 1_000_000.0) * p.InputPer1M
	outputCost := (float64(completionTokens) / 1_000_000.0) * p.OutputPer1M
	return math.Round((inputCost+outputCost)*1e8) / 1e8
}

// Set adds or overrides pricing for a model.
func (t *Table) Set(model string, p ModelPricing) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pricing[strings.ToLower(strings.TrimSpace(model))] = p
}
