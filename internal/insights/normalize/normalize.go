// Package normalize transforma registros crus do backend (ou do fallback) em
// PredictionRecord completos. Funções puras, sem efeitos colaterais.
package normalize

import (
	"fmt"
	"strings"

	"github.com/radieske/sports-insights-poc/pkg/contracts/predictions"
)

// Defaults aplicados quando o campo está ausente ou null
const (
	DefaultExpectedValue        = 0
	DefaultConfidence           = 75
	DefaultQuantumConfidence    = 75
	DefaultKellyFraction        = 0.05
	DefaultSynergyRating        = 0.5
	DefaultStackPotential       = 0.5
	DefaultOptimalStake         = 0.05
	DefaultCorrelationScore     = 0.3
	DefaultDiversificationValue = 0.7
	DefaultNeuralScore          = 75
	DefaultInjuryRisk           = 0.1
	DefaultPortfolioImpact      = 0.5
	DefaultVarianceContribution = 0.2
	DefaultLineScore            = 0
	DefaultRiskScore            = 0.5

	DefaultSubRisk      = 0.2
	DefaultShapBaseline = 0.5
)

type kind int

const (
	signed kind = iota
	percent
	fraction
)

type numeric struct {
	key  string
	def  float64
	kind kind
	dst  func(*predictions.PredictionRecord) *float64
}

var numericFields = []numeric{
	{"expected_value", DefaultExpectedValue, signed, func(p *predictions.PredictionRecord) *float64 { return &p.ExpectedValue }},
	{"confidence", DefaultConfidence, percent, func(p *predictions.PredictionRecord) *float64 { return &p.Confidence }},
	{"quantum_confidence", DefaultQuantumConfidence, percent, func(p *predictions.PredictionRecord) *float64 { return &p.QuantumConfidence }},
	{"kelly_fraction", DefaultKellyFraction, fraction, func(p *predictions.PredictionRecord) *float64 { return &p.KellyFraction }},
	{"synergy_rating", DefaultSynergyRating, fraction, func(p *predictions.PredictionRecord) *float64 { return &p.SynergyRating }},
	{"stack_potential", DefaultStackPotential, fraction, func(p *predictions.PredictionRecord) *float64 { return &p.StackPotential }},
	{"optimal_stake", DefaultOptimalStake, fraction, func(p *predictions.PredictionRecord) *float64 { return &p.OptimalStake }},
	{"correlation_score", DefaultCorrelationScore, fraction, func(p *predictions.PredictionRecord) *float64 { return &p.CorrelationScore }},
	{"diversification_value", DefaultDiversificationValue, fraction, func(p *predictions.PredictionRecord) *float64 { return &p.DiversificationValue }},
	{"neural_score", DefaultNeuralScore, percent, func(p *predictions.PredictionRecord) *float64 { return &p.NeuralScore }},
	{"injury_risk", DefaultInjuryRisk, fraction, func(p *predictions.PredictionRecord) *float64 { return &p.InjuryRisk }},
	{"portfolio_impact", DefaultPortfolioImpact, fraction, func(p *predictions.PredictionRecord) *float64 { return &p.PortfolioImpact }},
	{"variance_contribution", DefaultVarianceContribution, fraction, func(p *predictions.PredictionRecord) *float64 { return &p.VarianceContribution }},
	{"line_score", DefaultLineScore, signed, func(p *predictions.PredictionRecord) *float64 { return &p.LineScore }},
	{"risk_score", DefaultRiskScore, fraction, func(p *predictions.PredictionRecord) *float64 { return &p.RiskScore }},
}

// NumericFields lista as chaves numéricas com default
func NumericFields() map[string]float64 {
	out := make(map[string]float64, len(numericFields))
	for _, f := range numericFields {
		out[f.key] = f.def
	}
	return out
}

// Normalize preenche todos os campos ausentes com os defaults. Valores presentes
// são preservados; só saem da faixa natural quando já chegaram fora dela, e nesse
// caso são limitados (percentuais em [0,100], frações em [0,1]).
func Normalize(raw predictions.RawRecord) predictions.PredictionRecord {
	var p predictions.PredictionRecord

	p.ID = raw.String("id")
	p.PlayerName = firstString(raw, "player_name", "player")
	p.Team = raw.String("team")
	p.Sport = strings.ToUpper(raw.String("sport"))
	p.StatType = firstString(raw, "stat_type", "market")
	p.Recommendation = strings.ToUpper(raw.String("recommendation"))
	p.Source = raw.String("source")

	for _, f := range numericFields {
		v, ok := raw.Float(f.key)
		if !ok && f.key == "confidence" {
			// props do scraper trazem a confiança do ensemble
			v, ok = raw.Float("ensemble_confidence")
		}
		if !ok {
			v = f.def
		}
		*f.dst(&p) = clamp(v, f.kind)
	}

	// "line" é a linha da aposta; alguns payloads só mandam line_score
	if v, ok := raw.Float("line"); ok {
		p.Line = v
	} else {
		p.Line = p.LineScore
	}

	p.RiskAssessment = riskAssessment(raw, p.RiskScore)
	p.ShapExplanation = shapExplanation(raw, p.Confidence)
	return p
}

// NormalizeAll normaliza um lote. Registros sem id recebem "pred-<n>" pela posição.
func NormalizeAll(raws []predictions.RawRecord) []predictions.PredictionRecord {
	out := make([]predictions.PredictionRecord, 0, len(raws))
	for i, r := range raws {
		p := Normalize(r)
		if p.ID == "" {
			p.ID = fmt.Sprintf("pred-%d", i+1)
		}
		out = append(out, p)
	}
	return out
}

func riskAssessment(raw predictions.RawRecord, riskScore float64) predictions.RiskAssessment {
	ra := predictions.RiskAssessment{
		OverallRisk:    riskScore,
		ConfidenceRisk: DefaultSubRisk,
		LineRisk:       DefaultSubRisk,
		MarketRisk:     DefaultSubRisk,
	}

	if sub, ok := raw.Object("risk_assessment"); ok {
		if v, ok := sub.Float("overall_risk"); ok {
			ra.OverallRisk = clamp(v, fraction)
		}
		if v, ok := sub.Float("confidence_risk"); ok {
			ra.ConfidenceRisk = clamp(v, fraction)
		}
		if v, ok := sub.Float("line_risk"); ok {
			ra.LineRisk = clamp(v, fraction)
		}
		if v, ok := sub.Float("market_risk"); ok {
			ra.MarketRisk = clamp(v, fraction)
		}
		if lvl := strings.ToLower(sub.String("risk_level")); isRiskLevel(lvl) {
			ra.RiskLevel = lvl
		}
	}

	if ra.RiskLevel == "" {
		ra.RiskLevel = predictions.RiskLevelFor(ra.OverallRisk)
	}
	return ra
}

func shapExplanation(raw predictions.RawRecord, confidence float64) predictions.ShapExplanation {
	se := predictions.ShapExplanation{
		Baseline:   DefaultShapBaseline,
		Features:   map[string]float64{},
		Prediction: confidence,
		TopFactors: []predictions.Factor{},
	}

	sub, ok := raw.Object("shap_explanation")
	if !ok {
		return se
	}
	se.Explanation = sub.String("explanation")
	if v, ok := sub.Float("baseline"); ok {
		se.Baseline = v
	}
	if v, ok := sub.Float("prediction"); ok {
		se.Prediction = v
	}
	feats, ok := sub.Object("features")
	if !ok {
		feats, ok = raw.Object("feature_importance")
	}
	if ok {
		for k := range feats {
			if v, ok := feats.Float(k); ok {
				se.Features[k] = v
			}
		}
	}
	var factors []predictions.Factor
	if sub.Decode("top_factors", &factors) || sub.Decode("key_factors", &factors) {
		se.TopFactors = factors
	}
	return se
}

// clamp leva o valor para a faixa natural (percentuais em [0,100], frações em [0,1])
func clamp(v float64, k kind) float64 {
	var hi float64
	switch k {
	case percent:
		hi = 100
	case fraction:
		hi = 1
	default:
		return v
	}
	if v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}

func isRiskLevel(s string) bool {
	return s == predictions.RiskLow || s == predictions.RiskMedium || s == predictions.RiskHigh
}

func firstString(raw predictions.RawRecord, keys ...string) string {
	for _, k := range keys {
		if s := raw.String(k); s != "" {
			return s
		}
	}
	return ""
}
