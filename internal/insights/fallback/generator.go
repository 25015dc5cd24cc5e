// Package fallback sintetiza dados com o formato do backend quando ele está
// fora do ar. Valores são literais ou sorteados em [base, base+span).
package fallback

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/radieske/sports-insights-poc/pkg/contracts/predictions"
)

// Rand é a única fonte de aleatoriedade do pacote (e do stacking)
type Rand interface {
	Float64() float64
}

// Generator é seguro para uso concorrente. Com seed fixa a sequência é determinística.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

func New(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed)), now: time.Now}
}

// NewRandom usa o relógio como seed; não determinístico
func NewRandom() *Generator { return New(time.Now().UnixNano()) }

// WithClock troca o relógio usado em timestamps (testes)
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

func (g *Generator) Float64() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.Float64()
}

// Between sorteia em [base, base+span)
func (g *Generator) Between(base, span float64) float64 {
	return base + g.Float64()*span
}

// Intn sorteia em [0, n)
func (g *Generator) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(g.Float64() * float64(n))
}

// EnhancedBets devolve o lote fixo usado quando /unified/enhanced-bets falha
func (g *Generator) EnhancedBets() predictions.RawBatch {
	records := []predictions.RawRecord{
		predictions.RawFrom(map[string]any{
			"id":                 "fallback_1",
			"player_name":        "Aaron Judge",
			"team":               "NYY",
			"sport":              "MLB",
			"stat_type":          "Home Runs",
			"line":               1.5,
			"recommendation":     "OVER",
			"confidence":         87.3,
			"expected_return":    0.124,
			"risk_score":         0.23,
			"kelly_fraction":     0.045,
			"quantum_confidence": 89.2,
			"neural_score":       91.7,
			"feature_importance": map[string]float64{
				"recent_performance": 0.35,
				"matchup_advantage":  0.28,
				"historical_avg":     0.22,
				"weather_conditions": 0.15,
			},
			"shap_explanation": map[string]any{
				"explanation": "Strong recent performance and favorable matchup drive high confidence.",
				"key_factors": [][2]any{{"Recent form", 0.35}, {"Matchup", 0.28}, {"Historical", 0.22}},
			},
		}),
		predictions.RawFrom(map[string]any{
			"id":                 "fallback_2",
			"player_name":        "Mookie Betts",
			"team":               "LAD",
			"sport":              "MLB",
			"stat_type":          "Total Bases",
			"line":               2.5,
			"recommendation":     "OVER",
			"confidence":         82.1,
			"expected_return":    0.098,
			"risk_score":         0.31,
			"kelly_fraction":     0.038,
			"quantum_confidence": 85.4,
			"neural_score":       87.9,
			"feature_importance": map[string]float64{
				"recent_performance": 0.42,
				"matchup_advantage":  0.24,
				"historical_avg":     0.2,
				"team_pace":          0.14,
			},
			"shap_explanation": map[string]any{
				"explanation": "Consistent performer with good matchup fundamentals.",
				"key_factors": [][2]any{{"Recent form", 0.42}, {"Matchup", 0.24}, {"Historical", 0.2}},
			},
		}),
	}

	return predictions.RawBatch{
		Records:          records,
		Shape:            predictions.ShapeEnhanced,
		Status:           predictions.StatusFallback,
		Success:          true,
		TotalPredictions: len(records),
		PortfolioMetrics: &predictions.PortfolioMetrics{
			TotalExpectedValue:       0.222,
			TotalRiskScore:           0.27,
			DiversificationScore:     0.85,
			KellyOptimization:        0.041,
			SharpeRatio:              2.1,
			MaxDrawdown:              -0.082,
			ConfidenceWeightedReturn: 0.198,
		},
		AIInsights: &predictions.AIInsights{
			QuantumAnalysis:      "Quantum algorithms detected optimal betting patterns with 87.3% confidence.",
			NeuralPatterns:       []string{"Strong momentum indicators", "Positive correlation clusters"},
			MarketInefficiencies: 2,
			PatternStrength:      "HIGH",
			RecommendedAction:    "INCREASE_STAKE",
			ConfidenceReasoning:  "Multiple AI models show consensus on positive expected value.",
		},
		GeneratedAt: g.now().UTC(),
	}
}

type lockedSeed struct {
	id, player, team, sport, stat, opponent, venue string
	line, confidence, winProb, ev, kelly, risk     float64
	explanation, riskLevel                         string
	factors                                        []string
	valueRating, kellyPct                          float64
}

var lockedSeeds = []lockedSeed{
	{
		id: "mock-1", player: "Luka Dončić", team: "DAL", sport: "NBA", stat: "Points",
		opponent: "LAL", venue: "American Airlines Center",
		line: 28.5, confidence: 91.2, winProb: 0.845, ev: 3.24, kelly: 0.12, risk: 18,
		explanation: "Exceptional scoring form vs Lakers defense. High pace game expected with over/under at 238.5.",
		riskLevel:   "Low",
		factors:     []string{"Recent scoring surge", "Pace advantage", "Defensive matchup", "Rest advantage"},
		valueRating: 9.1, kellyPct: 12.3,
	},
	{
		id: "mock-2", player: "Josh Allen", team: "BUF", sport: "NFL", stat: "Passing Yards",
		opponent: "MIA", venue: "Highmark Stadium",
		line: 267.5, confidence: 86.7, winProb: 0.783, ev: 2.45, kelly: 0.09, risk: 28,
		explanation: "Perfect weather conditions for passing. Miami ranks 28th in pass defense allowing 267.8 YPG.",
		riskLevel:   "Medium",
		factors:     []string{"Weather conditions", "Pass defense ranking", "Home performance", "Divisional matchup"},
		valueRating: 8.7, kellyPct: 9.2,
	},
	{
		id: "mock-3", player: "Connor McDavid", team: "EDM", sport: "NHL", stat: "Points",
		opponent: "CGY", venue: "Rogers Place",
		line: 1.5, confidence: 88.9, winProb: 0.801, ev: 2.78, kelly: 0.11, risk: 22,
		explanation: "McDavid has recorded 2+ points in 8 of last 10 games vs Calgary.",
		riskLevel:   "Low",
		factors:     []string{"Historical vs opponent", "Power play upside", "Home ice advantage", "Line chemistry"},
		valueRating: 8.9, kellyPct: 10.8,
	},
}

// LockedBets devolve as props de demonstração, já filtradas por esporte e confiança
// mínima (sport vazio ou "ALL" = todos). Identidade e confiança são literais;
// EV e win probability variam levemente a cada chamada.
func (g *Generator) LockedBets(sport string, minConfidence float64) []predictions.RawRecord {
	sport = strings.ToUpper(strings.TrimSpace(sport))
	out := make([]predictions.RawRecord, 0, len(lockedSeeds))
	for _, s := range lockedSeeds {
		if sport != "" && sport != "ALL" && s.sport != sport {
			continue
		}
		if s.confidence < minConfidence {
			continue
		}
		out = append(out, predictions.RawFrom(map[string]any{
			"id":                  s.id,
			"player_name":         s.player,
			"team":                s.team,
			"sport":               s.sport,
			"stat_type":           s.stat,
			"line_score":          s.line,
			"recommendation":      predictions.RecommendationOver,
			"confidence":          s.confidence,
			"ensemble_confidence": s.confidence,
			"win_probability":     g.Between(s.winProb, 0.02),
			"expected_value":      g.Between(s.ev, 0.25),
			"kelly_fraction":      s.kelly,
			"risk_score":          s.risk,
			"source":              "PrizePicks",
			"opponent":            s.opponent,
			"venue":               s.venue,
			"ai_explanation": map[string]any{
				"explanation": s.explanation,
				"key_factors": s.factors,
				"risk_level":  s.riskLevel,
			},
			"value_rating":     s.valueRating,
			"kelly_percentage": s.kellyPct,
		}))
	}
	return out
}

// Admin

func (g *Generator) AdminStats() predictions.AdminStats {
	return predictions.AdminStats{
		TotalProfit:            float64(12847 + g.Intn(1000)),
		ActiveBets:             47 + g.Intn(10),
		WinRate:                g.Between(74.3, 10),
		ArbitrageOpportunities: 23 + g.Intn(15),
	}
}

var (
	activityEvents = []string{
		"Lakers ML vs Warriors",
		"Chiefs -3.5 vs Bills",
		"Celtics O 220.5",
		"Arbitrage: DK/FD",
		"Nuggets -7 vs Heat",
		"Rangers ML vs Kings",
	}
	activityStatuses = []string{"won", "pending", "lost", "completed"}
)

// RecentActivity gera limit entradas espaçadas de 10 minutos, da mais recente para trás
func (g *Generator) RecentActivity(limit int) []predictions.AdminActivity {
	if limit <= 0 {
		limit = 10
	}
	now := g.now()
	out := make([]predictions.AdminActivity, limit)
	for i := range out {
		amount := float64(g.Intn(1000) + 100)
		isProfit := g.Float64() > 0.3
		if !isProfit {
			amount = -amount
		}
		out[i] = predictions.AdminActivity{
			Time:     now.Add(-time.Duration(i) * 10 * time.Minute).Format("15:04"),
			Event:    activityEvents[g.Intn(len(activityEvents))],
			Amount:   amount,
			Status:   activityStatuses[g.Intn(len(activityStatuses))],
			IsProfit: isProfit,
		}
	}
	return out
}

func (g *Generator) SystemStatus() predictions.SystemStatus {
	return predictions.SystemStatus{
		Status:          "operational",
		Message:         "All systems operational",
		ArbitrageAlerts: 3,
		LastUpdate:      g.now().UTC(),
	}
}

func (g *Generator) UserManagementData() predictions.UserManagementData {
	return predictions.UserManagementData{
		TotalUsers:          1247,
		ActiveUsers:         892,
		AdminUsers:          12,
		RecentRegistrations: 34,
	}
}
