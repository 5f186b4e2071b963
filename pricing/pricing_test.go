package pricing_test

import "testing"
import "github.com/relaycache/llmproxy/pricing"

func TestLookupKnownModelIsCaseInsensitive(t *testing.T) {
	tbl := pricing.Default()
	p1, ok1 := tbl.Lookup("gpt-4o")
	p2, ok2 := tbl.Lookup("GPT-4O")
	if !ok1 || !ok2 || p1 != p2 {
		t.Fatalf("expected case-insensitive match, got %+v/%v %+v/%v", p1, ok1, p2, ok2)
	}
}

func TestLookupUnknownModelFallsBack(t *testing.T) {
	tbl := pricing.Default()
	_, ok := tbl.Lookup("some-unreleased-model")
	if ok {
		t.Fatalf("expected an unknown model to report ok=false")
	}
}

func TestCalculateCostKnownModel(t *testing.T) {
	tbl := pricing.Default()
	got := tbl.CalculateCost("gpt-4o-mini", 1_000_000, 1_000_000)
	want := 0.15 + 0.60
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCalculateCostUnknownModelUsesFlatRate(t *testing.T) {
	tbl := pricing.Default()
	got := tbl.CalculateCost("mystery-model", 1_000_000, 0)
	if got <= 0 {
		t.Fatalf("expected a positive flat-rate fallback cost, got %v", got)
	}
}

func TestSetOverridesPricing(t *testing.T) {
	tbl := pricing.Default()
	tbl.Set("custom-model", pricing.ModelPricing{InputPer1M: 5, OutputPer1M: 5})
	p, ok := tbl.Lookup("custom-model")
	if !ok || p.InputPer1M != 5 {
		t.Fatalf("expected overridden pricing, got %+v ok=%v", p, ok)
	}
}
