package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/radieske/sports-insights-poc/internal/shared/transport"
	"github.com/radieske/sports-insights-poc/pkg/contracts/predictions"
)

var errNoList = errors.New("response has no prediction list (expected array, props, enhanced_bets or predictions)")

type envelope struct {
	Props            json.RawMessage `json:"props"`
	EnhancedBets     json.RawMessage `json:"enhanced_bets"`
	Predictions      json.RawMessage `json:"predictions"`
	Status           string          `json:"status"`
	Success          *bool           `json:"success"`
	TotalPredictions int             `json:"total_predictions"`
	PortfolioMetrics json.RawMessage `json:"portfolio_metrics"`
	AIInsights       json.RawMessage `json:"ai_insights"`
	GeneratedAt      string          `json:"generated_at"`
}

// DecodeBatch aplica uma única vez a discriminação de formatos do backend:
// array puro, {props: [...]} ou {enhanced_bets: [...], predictions: [...]}
// (enhanced_bets tem precedência). Corpo inválido vira *transport.ParseError.
func DecodeBatch(url string, body []byte) (predictions.RawBatch, error) {
	var batch predictions.RawBatch
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return batch, &transport.ParseError{URL: url, Err: errors.New("empty body")}
	}

	if trimmed[0] == '[' {
		var recs []predictions.RawRecord
		if err := json.Unmarshal(trimmed, &recs); err != nil {
			return batch, &transport.ParseError{URL: url, Err: err}
		}
		batch.Records = nonNil(recs)
		batch.Shape = predictions.ShapeArray
		batch.Success = true
		batch.TotalPredictions = len(batch.Records)
		return batch, nil
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return batch, &transport.ParseError{URL: url, Err: err}
	}

	var list json.RawMessage
	switch {
	case present(env.EnhancedBets):
		list, batch.Shape = env.EnhancedBets, predictions.ShapeEnhanced
	case present(env.Predictions):
		list, batch.Shape = env.Predictions, predictions.ShapeEnhanced
	case present(env.Props):
		list, batch.Shape = env.Props, predictions.ShapeProps
	default:
		return batch, &transport.ParseError{URL: url, Err: errNoList}
	}

	var recs []predictions.RawRecord
	if err := json.Unmarshal(list, &recs); err != nil {
		return batch, &transport.ParseError{URL: url, Err: err}
	}
	batch.Records = nonNil(recs)
	batch.Status = env.Status
	batch.Success = env.Success == nil || *env.Success
	batch.TotalPredictions = env.TotalPredictions
	if batch.TotalPredictions == 0 {
		batch.TotalPredictions = len(batch.Records)
	}

	// métricas e insights são opcionais; formato inesperado é ignorado
	if present(env.PortfolioMetrics) {
		var pm predictions.PortfolioMetrics
		if json.Unmarshal(env.PortfolioMetrics, &pm) == nil {
			batch.PortfolioMetrics = &pm
		}
	}
	if present(env.AIInsights) {
		var ai predictions.AIInsights
		if json.Unmarshal(env.AIInsights, &ai) == nil {
			batch.AIInsights = &ai
		}
	}
	if t, err := time.Parse(time.RFC3339, env.GeneratedAt); err == nil {
		batch.GeneratedAt = t
	}
	return batch, nil
}

func present(b json.RawMessage) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && !bytes.Equal(b, []byte("null"))
}

func nonNil(r []predictions.RawRecord) []predictions.RawRecord {
	if r == nil {
		return []predictions.RawRecord{}
	}
	return r
}
