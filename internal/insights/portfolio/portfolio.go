// Package portfolio calcula métricas agregadas do lote e a alocação de stakes.
package portfolio

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/radieske/sports-insights-poc/pkg/contracts/predictions"
)

// Investimento padrão da análise de portfólio
const DefaultInvestment = 1000

var (
	ErrNoSelection       = errors.New("no predictions selected")
	ErrInvalidInvestment = errors.New("investment amount must be positive")
)

// Metrics agrega o lote quando o backend não envia portfolio_metrics.
// Sharpe e drawdown não são derivados localmente e ficam zerados.
func Metrics(records []predictions.PredictionRecord) predictions.PortfolioMetrics {
	var m predictions.PortfolioMetrics
	n := len(records)
	if n == 0 {
		return m
	}

	teams := map[string]struct{}{}
	var risk, kelly, weighted float64
	for _, r := range records {
		m.TotalExpectedValue += r.ExpectedValue
		risk += r.RiskScore
		kelly += r.KellyFraction
		weighted += r.ExpectedValue * r.Confidence / 100
		if r.Team != "" {
			teams[r.Team] = struct{}{}
		}
	}
	m.TotalRiskScore = risk / float64(n)
	m.KellyOptimization = kelly / float64(n)
	m.DiversificationScore = float64(len(teams)) / float64(n)
	m.ConfidenceWeightedReturn = weighted
	return m
}

// Allocation é a stake sugerida para um registro
type Allocation struct {
	PredictionID   string          `json:"prediction_id"`
	PlayerName     string          `json:"player_name"`
	Stake          decimal.Decimal `json:"stake"`
	ExpectedReturn decimal.Decimal `json:"expected_return"`
	KellyFraction  float64         `json:"kelly_fraction"`
}

// Plan é o resultado de Allocate
type Plan struct {
	Investment     decimal.Decimal `json:"investment"`
	Allocated      decimal.Decimal `json:"allocated"`
	Reserve        decimal.Decimal `json:"reserve"`
	ExpectedReturn decimal.Decimal `json:"expected_return"`
	RiskScore      float64         `json:"risk_score"`
	Allocations    []Allocation    `json:"allocations"`
	Missing        []string        `json:"missing,omitempty"`
}

// Allocate distribui investment entre os ids selecionados: stake = investment × optimal_stake,
// arredondada em centavos. Se a soma passar do investimento, as stakes são escaladas.
// ids vazio seleciona o lote inteiro; investment <= 0 usa DefaultInvestment.
func Allocate(records []predictions.PredictionRecord, ids []string, investment float64) (Plan, error) {
	if investment < 0 {
		return Plan{}, ErrInvalidInvestment
	}
	if investment == 0 {
		investment = DefaultInvestment
	}
	inv := decimal.NewFromFloat(investment).Round(2)

	selected, missing := pick(records, ids)
	if len(selected) == 0 {
		return Plan{Investment: inv, Missing: missing}, ErrNoSelection
	}

	raw := make([]decimal.Decimal, len(selected))
	total := decimal.Zero
	for i, r := range selected {
		raw[i] = inv.Mul(decimal.NewFromFloat(r.OptimalStake))
		total = total.Add(raw[i])
	}
	if total.GreaterThan(inv) {
		scale := inv.Div(total)
		for i := range raw {
			raw[i] = raw[i].Mul(scale)
		}
	}

	plan := Plan{Investment: inv, Missing: missing, Allocations: make([]Allocation, len(selected))}
	var risk float64
	for i, r := range selected {
		// RoundDown garante que a soma nunca passe do investimento
		stake := raw[i].RoundDown(2)
		ret := stake.Mul(decimal.NewFromFloat(r.ExpectedValue)).Round(2)
		plan.Allocations[i] = Allocation{
			PredictionID:   r.ID,
			PlayerName:     r.PlayerName,
			Stake:          stake,
			ExpectedReturn: ret,
			KellyFraction:  r.KellyFraction,
		}
		plan.Allocated = plan.Allocated.Add(stake)
		plan.ExpectedReturn = plan.ExpectedReturn.Add(ret)
		risk += r.RiskScore
	}
	plan.Reserve = inv.Sub(plan.Allocated)
	plan.RiskScore = risk / float64(len(selected))
	return plan, nil
}

func pick(records []predictions.PredictionRecord, ids []string) ([]predictions.PredictionRecord, []string) {
	if len(ids) == 0 {
		return records, nil
	}
	byID := make(map[string]predictions.PredictionRecord, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}
	var out []predictions.PredictionRecord
	var missing []string
	seen := map[string]bool{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		r, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		out = append(out, r)
	}
	return out, missing
}

// String resume o plano para logs
func (p Plan) String() string {
	return fmt.Sprintf("invested=%s allocated=%s reserve=%s positions=%d", p.Investment, p.Allocated, p.Reserve, len(p.Allocations))
}
