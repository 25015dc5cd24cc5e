package normalize

import (
	"encoding/json"
	"testing"

	"github.com/radieske/sports-insights-poc/pkg/contracts/predictions"
)

func raw(t *testing.T, s string) predictions.RawRecord {
	t.Helper()
	var r predictions.RawRecord
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return r
}

// valor de cada campo numérico depois de normalizar, via JSON, para comparar por chave
func fieldValues(t *testing.T, p predictions.PredictionRecord) map[string]float64 {
	t.Helper()
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out := map[string]float64{}
	for k := range NumericFields() {
		out[k] = m[k].(float64)
	}
	return out
}

func TestNormalizeFillsEveryDefault(t *testing.T) {
	p := Normalize(raw(t, `{"id":"x","player_name":"A"}`))
	got := fieldValues(t, p)
	for k, def := range NumericFields() {
		if got[k] != def {
			t.Errorf("%s = %v, want default %v", k, got[k], def)
		}
	}

	if p.RiskAssessment.OverallRisk != DefaultRiskScore {
		t.Errorf("overall_risk = %v, want %v", p.RiskAssessment.OverallRisk, DefaultRiskScore)
	}
	if p.RiskAssessment.RiskLevel != predictions.RiskMedium {
		t.Errorf("risk_level = %s, want medium", p.RiskAssessment.RiskLevel)
	}
	if p.ShapExplanation.Baseline != 0.5 || p.ShapExplanation.Features == nil || p.ShapExplanation.TopFactors == nil {
		t.Errorf("unexpected shap defaults: %+v", p.ShapExplanation)
	}
	if p.ShapExplanation.Prediction != DefaultConfidence {
		t.Errorf("shap prediction = %v, want confidence default", p.ShapExplanation.Prediction)
	}
}

func TestNormalizeEachMissingFieldIndividually(t *testing.T) {
	present := map[string]float64{
		"expected_value":        2.34,
		"confidence":            88.1,
		"quantum_confidence":    90.5,
		"kelly_fraction":        0.08,
		"synergy_rating":        0.77,
		"stack_potential":       0.66,
		"optimal_stake":         0.03,
		"correlation_score":     0.41,
		"diversification_value": 0.9,
		"neural_score":          81.2,
		"injury_risk":           0.02,
		"portfolio_impact":      0.33,
		"variance_contribution": 0.12,
		"line_score":            1.5,
		"risk_score":            0.25,
	}
	defaults := NumericFields()

	for missing := range present {
		fields := map[string]any{"id": "r"}
		for k, v := range present {
			if k != missing {
				fields[k] = v
			}
		}
		// null e ausente são equivalentes
		fields[missing] = nil

		got := fieldValues(t, Normalize(predictions.RawFrom(fields)))
		for k, want := range present {
			if k == missing {
				want = defaults[k]
			}
			if got[k] != want {
				t.Errorf("missing %s: %s = %v, want %v", missing, k, got[k], want)
			}
		}
	}
}

func TestNormalizeRiskLevelThresholds(t *testing.T) {
	for i := 0; i <= 100; i++ {
		risk := float64(i) / 100
		p := Normalize(predictions.RawFrom(map[string]any{"risk_score": risk}))
		var want string
		switch {
		case risk <= 0.3:
			want = "low"
		case risk <= 0.6:
			want = "medium"
		default:
			want = "high"
		}
		if p.RiskAssessment.RiskLevel != want {
			t.Fatalf("risk %v: level %s, want %s", risk, p.RiskAssessment.RiskLevel, want)
		}
		if p.RiskAssessment.OverallRisk != risk {
			t.Fatalf("overall_risk must follow risk_score, got %v", p.RiskAssessment.OverallRisk)
		}
	}
}

func TestNormalizeZeroRiskScoreIsPresent(t *testing.T) {
	p := Normalize(raw(t, `{"risk_score": 0}`))
	if p.RiskScore != 0 || p.RiskAssessment.OverallRisk != 0 {
		t.Fatalf("zero must not be replaced by the default: %+v", p.RiskAssessment)
	}
	if p.RiskAssessment.RiskLevel != "low" {
		t.Fatalf("level = %s, want low", p.RiskAssessment.RiskLevel)
	}
}

func TestNormalizePartialRiskAssessment(t *testing.T) {
	p := Normalize(raw(t, `{"risk_score": 0.9, "risk_assessment": {"line_risk": 0.4}}`))
	ra := p.RiskAssessment
	if ra.LineRisk != 0.4 {
		t.Errorf("line_risk = %v, want 0.4", ra.LineRisk)
	}
	if ra.ConfidenceRisk != DefaultSubRisk || ra.MarketRisk != DefaultSubRisk {
		t.Errorf("missing sub-risks must default to %v: %+v", DefaultSubRisk, ra)
	}
	if ra.OverallRisk != 0.9 || ra.RiskLevel != "high" {
		t.Errorf("overall/level from risk_score expected, got %+v", ra)
	}
}

func TestNormalizeKeepsPresentShap(t *testing.T) {
	p := Normalize(raw(t, `{
		"confidence": 91.2,
		"shap_explanation": {
			"baseline": 50,
			"features": {"recent_form": 12.5, "matchup": "8.1"},
			"key_factors": [["recent_form", 12.5], ["matchup", 8.1]],
			"explanation": "hot streak"
		}
	}`))
	se := p.ShapExplanation
	if se.Baseline != 50 {
		t.Errorf("baseline = %v", se.Baseline)
	}
	if se.Features["matchup"] != 8.1 {
		t.Errorf("features = %v", se.Features)
	}
	if len(se.TopFactors) != 2 || se.TopFactors[0].Name != "recent_form" {
		t.Errorf("key_factors alias not applied: %+v", se.TopFactors)
	}
	if se.Prediction != 91.2 {
		t.Errorf("prediction must default to confidence, got %v", se.Prediction)
	}
	if se.Explanation != "hot streak" {
		t.Errorf("explanation = %q", se.Explanation)
	}
}

func TestNormalizeClampsOutOfRange(t *testing.T) {
	p := Normalize(raw(t, `{"confidence": 140, "kelly_fraction": -0.2, "expected_value": -3.5}`))
	if p.Confidence != 100 {
		t.Errorf("confidence = %v, want 100", p.Confidence)
	}
	if p.KellyFraction != 0 {
		t.Errorf("kelly_fraction = %v, want 0", p.KellyFraction)
	}
	if p.ExpectedValue != -3.5 {
		t.Errorf("signed expected_value must pass through, got %v", p.ExpectedValue)
	}

	p = Normalize(raw(t, `{"risk_score": 18, "injury_risk": 250}`))
	if p.RiskScore != 1 {
		t.Errorf("risk_score = %v, want 1", p.RiskScore)
	}
	if p.InjuryRisk != 1 {
		t.Errorf("injury_risk = %v, want 1", p.InjuryRisk)
	}
	if p.RiskAssessment.RiskLevel != "high" {
		t.Errorf("level = %s, want high", p.RiskAssessment.RiskLevel)
	}
}

func TestNormalizeFractionClampIsMonotonic(t *testing.T) {
	prev := -1.0
	for _, v := range []string{"0.5", "1", "1.5", "2", "150"} {
		p := Normalize(raw(t, `{"kelly_fraction": `+v+`}`))
		if p.KellyFraction < prev {
			t.Fatalf("kelly_fraction %s -> %v, smaller than previous %v", v, p.KellyFraction, prev)
		}
		prev = p.KellyFraction
	}
	if p := Normalize(raw(t, `{"kelly_fraction": 1.5}`)); p.KellyFraction != 1 {
		t.Errorf("kelly_fraction 1.5 = %v, want 1", p.KellyFraction)
	}
	if p := Normalize(raw(t, `{"kelly_fraction": 0.4}`)); p.KellyFraction != 0.4 {
		t.Errorf("in-range kelly_fraction changed: %v", p.KellyFraction)
	}
}

func TestNormalizeNonFiniteStrings(t *testing.T) {
	for _, v := range []string{"NaN", "Inf", "-Infinity", "+Inf"} {
		p := Normalize(raw(t, `{"confidence": "`+v+`", "expected_value": "`+v+`", "risk_score": "`+v+`", "line": "`+v+`"}`))
		if p.Confidence != DefaultConfidence {
			t.Errorf("%s: confidence = %v, want default", v, p.Confidence)
		}
		if p.ExpectedValue != DefaultExpectedValue {
			t.Errorf("%s: expected_value = %v, want default", v, p.ExpectedValue)
		}
		if p.RiskScore != DefaultRiskScore {
			t.Errorf("%s: risk_score = %v, want default", v, p.RiskScore)
		}
		if p.Line != p.LineScore {
			t.Errorf("%s: line = %v, want line_score fallback", v, p.Line)
		}
		if _, err := json.Marshal(p); err != nil {
			t.Fatalf("%s: marshal: %v", v, err)
		}
	}
}

func TestNormalizeAliases(t *testing.T) {
	p := Normalize(raw(t, `{"ensemble_confidence": 86.7, "feature_importance": {"recent_performance": 0.35}, "shap_explanation": {"explanation": "x"}}`))
	if p.Confidence != 86.7 {
		t.Errorf("confidence = %v, want ensemble_confidence", p.Confidence)
	}
	if p.ShapExplanation.Features["recent_performance"] != 0.35 {
		t.Errorf("feature_importance alias not applied: %v", p.ShapExplanation.Features)
	}
}

func TestNormalizeTextAndLine(t *testing.T) {
	p := Normalize(raw(t, `{"id": 7, "player": "Josh Allen", "sport": "nfl", "market": "Passing Yards", "line_score": 267.5, "recommendation": "over"}`))
	if p.ID != "7" || p.PlayerName != "Josh Allen" || p.Sport != "NFL" || p.StatType != "Passing Yards" {
		t.Errorf("unexpected text fields: %+v", p)
	}
	if p.Line != 267.5 {
		t.Errorf("line must fall back to line_score, got %v", p.Line)
	}
	if p.Recommendation != predictions.RecommendationOver {
		t.Errorf("recommendation = %q", p.Recommendation)
	}
}

func TestNormalizeAllAssignsMissingIDs(t *testing.T) {
	out := NormalizeAll([]predictions.RawRecord{
		raw(t, `{"id": "a"}`),
		raw(t, `{}`),
	})
	if len(out) != 2 || out[0].ID != "a" || out[1].ID != "pred-2" {
		t.Fatalf("unexpected ids: %q %q", out[0].ID, out[1].ID)
	}
}
