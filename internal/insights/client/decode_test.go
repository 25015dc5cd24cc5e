package client

import (
	"errors"
	"testing"

	"github.com/radieske/sports-insights-poc/internal/shared/transport"
	"github.com/radieske/sports-insights-poc/pkg/contracts/predictions"
)

func TestDecodeBatchShapes(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		shape predictions.Shape
		ids   []string
	}{
		{"bare array", `[{"id":"a"},{"id":"b"}]`, predictions.ShapeArray, []string{"a", "b"}},
		{"props", `{"props":[{"id":"p"}]}`, predictions.ShapeProps, []string{"p"}},
		{"enhanced", `{"enhanced_bets":[{"id":"e"}],"predictions":[{"id":"x"}]}`, predictions.ShapeEnhanced, []string{"e"}},
		{"predictions only", `{"enhanced_bets":null,"predictions":[{"id":"x"}]}`, predictions.ShapeEnhanced, []string{"x"}},
		{"empty list", `{"enhanced_bets":[]}`, predictions.ShapeEnhanced, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b, err := DecodeBatch("u", []byte(c.body))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if b.Shape != c.shape {
				t.Errorf("shape = %s, want %s", b.Shape, c.shape)
			}
			if len(b.Records) != len(c.ids) {
				t.Fatalf("records = %d, want %d", len(b.Records), len(c.ids))
			}
			for i, id := range c.ids {
				if b.Records[i].String("id") != id {
					t.Errorf("record %d id = %s, want %s", i, b.Records[i].String("id"), id)
				}
			}
			if b.Records == nil {
				t.Error("records must never be nil")
			}
		})
	}
}

func TestDecodeBatchMetadata(t *testing.T) {
	body := `{
		"success": true,
		"enhanced_bets": [{"id":"1"}],
		"total_predictions": 9,
		"status": "fallback_mode",
		"portfolio_metrics": {"sharpe_ratio": 2.1},
		"ai_insights": [{"unexpected": "array"}],
		"generated_at": "2025-03-04T05:06:07.123Z"
	}`
	b, err := DecodeBatch("u", []byte(body))
	if err != nil {
		t.Fatal(err)
	}
	if !b.IsFallback() || b.TotalPredictions != 9 {
		t.Errorf("metadata lost: %+v", b)
	}
	if b.PortfolioMetrics == nil || b.PortfolioMetrics.SharpeRatio != 2.1 {
		t.Errorf("portfolio metrics = %+v", b.PortfolioMetrics)
	}
	if b.AIInsights != nil {
		t.Errorf("array ai_insights must be ignored, got %+v", b.AIInsights)
	}
	if b.GeneratedAt.IsZero() {
		t.Error("generated_at not parsed")
	}
}

func TestDecodeBatchAIInsightsFractionalCount(t *testing.T) {
	body := `{
		"enhanced_bets": [{"id":"1"}],
		"ai_insights": {"quantum_analysis": "ok", "market_inefficiencies": 2.0, "pattern_strength": "HIGH"}
	}`
	b, err := DecodeBatch("u", []byte(body))
	if err != nil {
		t.Fatal(err)
	}
	if b.AIInsights == nil {
		t.Fatal("ai_insights dropped")
	}
	if b.AIInsights.MarketInefficiencies != 2 || b.AIInsights.PatternStrength != "HIGH" {
		t.Errorf("ai_insights = %+v", b.AIInsights)
	}
}

func TestDecodeBatchErrors(t *testing.T) {
	for _, body := range []string{"", "<html>", `{"detail":"nope"}`, `{"props": {"id": 1}}`} {
		_, err := DecodeBatch("http://backend/x", []byte(body))
		var pe *transport.ParseError
		if !errors.As(err, &pe) {
			t.Errorf("body %q: expected *ParseError, got %v", body, err)
		}
	}
}
