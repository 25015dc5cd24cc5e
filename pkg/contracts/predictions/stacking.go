package predictions

// Tipos de stack
const (
	StackTeam = "team"
	StackGame = "game"
)

// Recomendações para pares da matriz de correlação
const (
	PairStack   = "STACK"
	PairAvoid   = "AVOID"
	PairNeutral = "NEUTRAL"
)

// StackSuggestion agrupa jogadores do mesmo time/esporte. Recalculado a cada refresh.
type StackSuggestion struct {
	Type             string   `json:"type"` // team | game
	Players          []string `json:"players"`
	CorrelationScore float64  `json:"correlation_score"`
	SynergyRating    float64  `json:"synergy_rating"`
	ExpectedBoost    float64  `json:"expected_boost"`
	RiskLevel        string   `json:"risk_level"`
	Explanation      string   `json:"explanation"`
}

type CorrelationMatrix struct {
	Players  []string             `json:"players"`
	Matrix   [][]float64          `json:"matrix"`
	Insights []CorrelationInsight `json:"insights"`
}

type CorrelationInsight struct {
	PlayerA        string  `json:"player_a"`
	PlayerB        string  `json:"player_b"`
	Correlation    float64 `json:"correlation"`
	Recommendation string  `json:"recommendation"` // STACK | AVOID | NEUTRAL
}

// Stacking é o resultado derivado do lote corrente
type Stacking struct {
	Suggestions       []StackSuggestion `json:"suggestions"`
	CorrelationMatrix CorrelationMatrix `json:"correlation_matrix"`
}
