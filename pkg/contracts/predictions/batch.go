package predictions

import "time"

// Source identifica a origem de um lote
type Source string

const (
	SourceLive     Source = "live"
	SourceFallback Source = "fallback_mode"
)

// StatusFallback é o discriminador gravado no envelope de lotes sintetizados
const StatusFallback = "fallback_mode"

// Shape registra qual formato de envelope o backend devolveu
type Shape string

const (
	ShapeArray    Shape = "array"    // [ ... ]
	ShapeProps    Shape = "props"    // { "props": [ ... ] }
	ShapeEnhanced Shape = "enhanced" // { "enhanced_bets": [ ... ], "predictions": [ ... ] }
)

// RawBatch é o lote canônico produzido pelo decoder de envelopes, antes da normalização
type RawBatch struct {
	Records          []RawRecord
	Shape            Shape
	Status           string
	Success          bool
	TotalPredictions int
	PortfolioMetrics *PortfolioMetrics
	AIInsights       *AIInsights
	GeneratedAt      time.Time
}

// IsFallback indica lote sintetizado localmente
func (b RawBatch) IsFallback() bool { return b.Status == StatusFallback }

// FetchResult é o lote normalizado que pertence a uma página
type FetchResult struct {
	Records          []PredictionRecord `json:"records"`
	Source           Source             `json:"source"`
	ReceivedAt       time.Time          `json:"received_at"`
	PortfolioMetrics *PortfolioMetrics  `json:"portfolio_metrics,omitempty"`
	AIInsights       *AIInsights        `json:"ai_insights,omitempty"`
}

type PortfolioMetrics struct {
	TotalExpectedValue       float64 `json:"total_expected_value"`
	TotalRiskScore           float64 `json:"total_risk_score"`
	DiversificationScore     float64 `json:"diversification_score"`
	KellyOptimization        float64 `json:"kelly_optimization"`
	SharpeRatio              float64 `json:"sharpe_ratio"`
	MaxDrawdown              float64 `json:"max_drawdown"`
	ConfidenceWeightedReturn float64 `json:"confidence_weighted_return"`
}

type AIInsights struct {
	QuantumAnalysis      string   `json:"quantum_analysis"`
	NeuralPatterns       []string `json:"neural_patterns"`
	MarketInefficiencies float64  `json:"market_inefficiencies"`
	PatternStrength      string   `json:"pattern_strength"`
	RecommendedAction    string   `json:"recommended_action"`
	ConfidenceReasoning  string   `json:"confidence_reasoning"`
}
