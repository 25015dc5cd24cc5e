package predictions

import (
	"encoding/json"
	"time"
)

// Respostas dos demais endpoints do backend. Partes sem contrato estável
// ficam como json.RawMessage e são repassadas sem interpretação.

type PortfolioOptimization struct {
	PortfolioMetrics            PortfolioMetrics  `json:"portfolio_metrics"`
	OptimizationRecommendations []json.RawMessage `json:"optimization_recommendations"`
	RiskAssessment              json.RawMessage   `json:"risk_assessment,omitempty"`
	Status                      string            `json:"status"`
}

type PortfolioAnalysis struct {
	TotalInvestment float64           `json:"total_investment"`
	ExpectedReturn  float64           `json:"expected_return"`
	RiskScore       float64           `json:"risk_score"`
	Allocations     []json.RawMessage `json:"allocations"`
	Recommendations []string          `json:"recommendations"`
}

type BetInsight struct {
	BetID               string          `json:"bet_id"`
	PlayerName          string          `json:"player_name"`
	Sport               string          `json:"sport"`
	Confidence          float64         `json:"confidence"`
	QuantumAnalysis     string          `json:"quantum_analysis"`
	NeuralPatterns      []string        `json:"neural_patterns"`
	ShapExplanation     json.RawMessage `json:"shap_explanation,omitempty"`
	RiskFactors         []string        `json:"risk_factors"`
	OpportunityScore    float64         `json:"opportunity_score"`
	MarketEdge          float64         `json:"market_edge"`
	ConfidenceReasoning string          `json:"confidence_reasoning"`
	KeyFactors          []Factor        `json:"key_factors"`
}

type AIInsightsResponse struct {
	AIInsights []BetInsight `json:"ai_insights"`
	Summary    struct {
		TotalOpportunities       int     `json:"total_opportunities"`
		AverageOpportunityScore  float64 `json:"average_opportunity_score"`
		TotalMarketEdge          float64 `json:"total_market_edge"`
		QuantumAnalysisAvailable bool    `json:"quantum_analysis_available"`
		NeuralPatternsDetected   int     `json:"neural_patterns_detected"`
		HighConfidenceBets       int     `json:"high_confidence_bets"`
	} `json:"summary"`
	MarketIntelligence struct {
		InefficienciesDetected int    `json:"inefficiencies_detected"`
		PatternStrength        string `json:"pattern_strength"`
		Recommendation         string `json:"recommendation"`
	} `json:"market_intelligence"`
}

type LiveGameContext struct {
	LiveContext       json.RawMessage   `json:"live_context"`
	RelevantBets      []json.RawMessage `json:"relevant_bets"`
	LiveOpportunities []json.RawMessage `json:"live_opportunities"`
	Alerts            []json.RawMessage `json:"alerts"`
	NextUpdate        string            `json:"next_update"`
}

type MultiPlatformOpportunities struct {
	Opportunities []json.RawMessage `json:"multi_platform_opportunities"`
	Arbitrage     []json.RawMessage `json:"arbitrage_opportunities"`
	Summary       struct {
		TotalPlatforms     int    `json:"total_platforms"`
		OpportunitiesFound int    `json:"opportunities_found"`
		ArbitrageCount     int    `json:"arbitrage_count"`
		RecommendedPrimary string `json:"recommended_primary"`
	} `json:"platform_summary"`
	Recommendations []string `json:"recommendations"`
}

type ServiceHealth struct {
	Status             string            `json:"status"`
	LastUpdate         string            `json:"last_update,omitempty"`
	PredictionsCount   int               `json:"predictions_count"`
	PortfolioOptimized bool              `json:"portfolio_optimized"`
	Services           map[string]string `json:"services"`
	OverallStatus      string            `json:"overall_status"`
	Capabilities       []string          `json:"capabilities"`
	APIHealth          json.RawMessage   `json:"api_health,omitempty"`
}

// ScraperHealth é o status do scraper de props. Em falha de rede o poller grava
// IsHealthy=false e LastError.
type ScraperHealth struct {
	IsHealthy bool      `json:"is_healthy"`
	LastError string    `json:"last_error,omitempty"`
	LastRun   string    `json:"last_run,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Admin

type AdminStats struct {
	TotalProfit            float64 `json:"totalProfit"`
	ActiveBets             int     `json:"activeBets"`
	WinRate                float64 `json:"winRate"`
	ArbitrageOpportunities int     `json:"arbitrageOpportunities"`
}

type AdminActivity struct {
	Time     string  `json:"time"`
	Event    string  `json:"event"`
	Amount   float64 `json:"amount"`
	Status   string  `json:"status"` // won | pending | lost | completed
	IsProfit bool    `json:"isProfit"`
}

type SystemStatus struct {
	Status          string    `json:"status"` // operational | warning | error
	Message         string    `json:"message"`
	ArbitrageAlerts int       `json:"arbitrageAlerts"`
	LastUpdate      time.Time `json:"lastUpdate"`
}

type UserManagementData struct {
	TotalUsers          int `json:"totalUsers"`
	ActiveUsers         int `json:"activeUsers"`
	AdminUsers          int `json:"adminUsers"`
	RecentRegistrations int `json:"recentRegistrations"`
}
