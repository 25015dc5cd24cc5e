// Package stacking deriva sugestões de stack e a matriz de correlação a partir
// do lote corrente. Recalculado do zero a cada refresh; nada é persistido.
package stacking

import (
	"fmt"
	"math"

	"github.com/radieske/sports-insights-poc/pkg/contracts/predictions"
)

// Quantidade de jogadores na matriz de correlação
const MatrixSize = 5

const (
	maxCorrelation  = 0.95
	sameTeamBoost   = 0.4
	sameSportBoost  = 0.2
	highThreshold   = 0.7
	mediumThreshold = 0.4
)

type Rand interface {
	Float64() float64
}

// Generate monta sugestões e matriz. A matriz é sorteada antes das sugestões para
// que a sequência de sorteios da matriz dependa só do tamanho do lote.
func Generate(records []predictions.PredictionRecord, rnd Rand) predictions.Stacking {
	out := predictions.Stacking{
		Suggestions: []predictions.StackSuggestion{},
		CorrelationMatrix: predictions.CorrelationMatrix{
			Players:  []string{},
			Matrix:   [][]float64{},
			Insights: []predictions.CorrelationInsight{},
		},
	}
	if len(records) == 0 {
		return out
	}

	out.CorrelationMatrix = Matrix(records, rnd)
	out.Suggestions = append(teamStacks(records, rnd), gameStacks(records, rnd)...)
	return out
}

// RiskLevel: >0.7 high, >=0.4 medium, senão low
func RiskLevel(correlation float64) string {
	switch {
	case correlation > highThreshold:
		return predictions.RiskHigh
	case correlation >= mediumThreshold:
		return predictions.RiskMedium
	default:
		return predictions.RiskLow
	}
}

// PairRecommendation: >0.7 AVOID, >=0.4 STACK, senão NEUTRAL
func PairRecommendation(correlation float64) string {
	switch {
	case correlation > highThreshold:
		return predictions.PairAvoid
	case correlation >= mediumThreshold:
		return predictions.PairStack
	default:
		return predictions.PairNeutral
	}
}

// Matrix calcula a matriz simétrica dos primeiros MatrixSize registros.
// Diagonal 1.0; fora dela 0.1+r*0.3, +0.4 mesmo time, +0.2 mesmo esporte, teto 0.95.
func Matrix(records []predictions.PredictionRecord, rnd Rand) predictions.CorrelationMatrix {
	n := len(records)
	if n > MatrixSize {
		n = MatrixSize
	}
	cm := predictions.CorrelationMatrix{
		Players:  make([]string, n),
		Matrix:   make([][]float64, n),
		Insights: []predictions.CorrelationInsight{},
	}
	for i := 0; i < n; i++ {
		cm.Players[i] = records[i].PlayerName
		cm.Matrix[i] = make([]float64, n)
		cm.Matrix[i][i] = 1.0
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a, b := records[i], records[j]
			c := 0.1 + rnd.Float64()*0.3
			if a.Team != "" && a.Team == b.Team {
				c += sameTeamBoost
			}
			if a.Sport != "" && a.Sport == b.Sport {
				c += sameSportBoost
			}
			c = math.Min(maxCorrelation, c)
			cm.Matrix[i][j] = c
			cm.Matrix[j][i] = c

			cm.Insights = append(cm.Insights, predictions.CorrelationInsight{
				PlayerA:        a.PlayerName,
				PlayerB:        b.PlayerName,
				Correlation:    c,
				Recommendation: PairRecommendation(c),
			})
		}
	}
	return cm
}

// agrupa preservando a ordem da primeira aparição
func groupBy(records []predictions.PredictionRecord, key func(predictions.PredictionRecord) string) ([]string, map[string][]predictions.PredictionRecord) {
	var order []string
	groups := map[string][]predictions.PredictionRecord{}
	for _, r := range records {
		k := key(r)
		if k == "" {
			continue
		}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}
	return order, groups
}

func names(rs []predictions.PredictionRecord) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.PlayerName
	}
	return out
}

func teamStacks(records []predictions.PredictionRecord, rnd Rand) []predictions.StackSuggestion {
	order, groups := groupBy(records, func(r predictions.PredictionRecord) string { return r.Team })
	var out []predictions.StackSuggestion
	for _, team := range order {
		members := groups[team]
		if len(members) < 2 {
			continue
		}
		corr := 0.6 + rnd.Float64()*0.3
		synergy := 0.7 + rnd.Float64()*0.2
		boost := 5 + rnd.Float64()*10
		out = append(out, predictions.StackSuggestion{
			Type:             predictions.StackTeam,
			Players:          names(members),
			CorrelationScore: corr,
			SynergyRating:    synergy,
			ExpectedBoost:    boost,
			RiskLevel:        RiskLevel(corr),
			Explanation: fmt.Sprintf("Strong %s team correlation with %d players showing positive synergy. Expected %.1f%% performance boost when stacked together.",
				team, len(members), boost),
		})
	}
	return out
}

func gameStacks(records []predictions.PredictionRecord, rnd Rand) []predictions.StackSuggestion {
	order, groups := groupBy(records, func(r predictions.PredictionRecord) string { return r.Sport })
	var out []predictions.StackSuggestion
	for _, sport := range order {
		members := groups[sport]
		if len(members) < 3 {
			continue
		}
		corr := 0.4 + rnd.Float64()*0.3
		synergy := 0.5 + rnd.Float64()*0.3
		boost := 3 + rnd.Float64()*7
		out = append(out, predictions.StackSuggestion{
			Type:             predictions.StackGame,
			Players:          names(members[:3]),
			CorrelationScore: corr,
			SynergyRating:    synergy,
			ExpectedBoost:    boost,
			RiskLevel:        RiskLevel(corr),
			Explanation:      fmt.Sprintf("Multi-game %s stack with diverse player types. Lower correlation risk with moderate upside potential.", sport),
		})
	}
	return out
}
