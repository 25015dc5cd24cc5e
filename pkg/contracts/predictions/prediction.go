package predictions

import (
	"encoding/json"
	"fmt"
)

// Recomendações possíveis para uma linha
const (
	RecommendationOver  = "OVER"
	RecommendationUnder = "UNDER"
)

// Níveis de risco
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// PredictionRecord é uma recomendação de aposta já normalizada.
// Percentuais ficam em [0,100] e frações em [0,1].
type PredictionRecord struct {
	ID             string  `json:"id"`
	PlayerName     string  `json:"player_name"`
	Team           string  `json:"team"`
	Sport          string  `json:"sport"`
	StatType       string  `json:"stat_type"`
	Line           float64 `json:"line"`
	Recommendation string  `json:"recommendation"` // OVER | UNDER
	Source         string  `json:"source,omitempty"`

	Confidence        float64 `json:"confidence"`         // %
	QuantumConfidence float64 `json:"quantum_confidence"` // %
	NeuralScore       float64 `json:"neural_score"`       // %
	ExpectedValue     float64 `json:"expected_value"`     // com sinal
	LineScore         float64 `json:"line_score"`

	KellyFraction        float64 `json:"kelly_fraction"`
	SynergyRating        float64 `json:"synergy_rating"`
	StackPotential       float64 `json:"stack_potential"`
	OptimalStake         float64 `json:"optimal_stake"`
	CorrelationScore     float64 `json:"correlation_score"`
	DiversificationValue float64 `json:"diversification_value"`
	InjuryRisk           float64 `json:"injury_risk"`
	PortfolioImpact      float64 `json:"portfolio_impact"`
	VarianceContribution float64 `json:"variance_contribution"`
	RiskScore            float64 `json:"risk_score"`

	RiskAssessment  RiskAssessment  `json:"risk_assessment"`
	ShapExplanation ShapExplanation `json:"shap_explanation"`
}

type RiskAssessment struct {
	OverallRisk    float64 `json:"overall_risk"`
	ConfidenceRisk float64 `json:"confidence_risk"`
	LineRisk       float64 `json:"line_risk"`
	MarketRisk     float64 `json:"market_risk"`
	RiskLevel      string  `json:"risk_level"` // low | medium | high
}

// ShapExplanation explica a contribuição de cada feature para a confiança
type ShapExplanation struct {
	Baseline    float64            `json:"baseline"`
	Features    map[string]float64 `json:"features"`
	Prediction  float64            `json:"prediction"`
	TopFactors  []Factor           `json:"top_factors"`
	Explanation string             `json:"explanation,omitempty"`
}

// Factor trafega no JSON como tupla: ["recent_performance", 21.9]
type Factor struct {
	Name   string
	Weight float64
}

func (f Factor) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{f.Name, f.Weight})
}

func (f *Factor) UnmarshalJSON(b []byte) error {
	var tuple []json.RawMessage
	if err := json.Unmarshal(b, &tuple); err != nil {
		return fmt.Errorf("factor: %w", err)
	}
	if len(tuple) != 2 {
		return fmt.Errorf("factor: expected [name, weight], got %d items", len(tuple))
	}
	if err := json.Unmarshal(tuple[0], &f.Name); err != nil {
		return fmt.Errorf("factor name: %w", err)
	}
	w, ok := parseNumber(tuple[1])
	if !ok {
		return fmt.Errorf("factor weight: invalid number %s", tuple[1])
	}
	f.Weight = w
	return nil
}

// RiskLevelFor deriva o nível categórico a partir do risco geral
func RiskLevelFor(overall float64) string {
	switch {
	case overall <= 0.3:
		return RiskLow
	case overall <= 0.6:
		return RiskMedium
	default:
		return RiskHigh
	}
}
