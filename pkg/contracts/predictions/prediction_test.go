package predictions

import (
	"encoding/json"
	"testing"
)

func TestFactorTupleJSON(t *testing.T) {
	var got []Factor
	if err := json.Unmarshal([]byte(`[["recent_performance", 21.9], ["matchup", "17.5"]]`), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 factors, got %d", len(got))
	}
	if got[0].Name != "recent_performance" || got[0].Weight != 21.9 {
		t.Fatalf("unexpected first factor: %+v", got[0])
	}
	if got[1].Weight != 17.5 {
		t.Fatalf("string weight should be coerced, got %v", got[1].Weight)
	}

	b, err := json.Marshal(Factor{Name: "historical_avg", Weight: 13.1})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `["historical_avg",13.1]` {
		t.Fatalf("unexpected tuple encoding: %s", b)
	}
}

func TestFactorRejectsWrongArity(t *testing.T) {
	var f Factor
	if err := json.Unmarshal([]byte(`["only_name"]`), &f); err == nil {
		t.Fatal("expected error for single-item tuple")
	}
}

func TestRawRecordAccessors(t *testing.T) {
	var r RawRecord
	input := `{"id": 42, "confidence": "87.5", "kelly_fraction": null, "team": "DAL", "shap_explanation": {"baseline": 50}}`
	if err := json.Unmarshal([]byte(input), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if r.String("id") != "42" {
		t.Errorf("id = %q, want 42", r.String("id"))
	}
	if v, ok := r.Float("confidence"); !ok || v != 87.5 {
		t.Errorf("confidence = %v (%v), want 87.5", v, ok)
	}
	if _, ok := r.Float("kelly_fraction"); ok {
		t.Error("null field must be reported as absent")
	}
	if r.Has("kelly_fraction") {
		t.Error("Has must be false for null")
	}
	if _, ok := r.Float("missing"); ok {
		t.Error("missing field must be reported as absent")
	}
	sub, ok := r.Object("shap_explanation")
	if !ok {
		t.Fatal("expected nested object")
	}
	if v, _ := sub.Float("baseline"); v != 50 {
		t.Errorf("baseline = %v, want 50", v)
	}
}

func TestRiskLevelFor(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, RiskLow},
		{0.3, RiskLow},
		{0.30001, RiskMedium},
		{0.6, RiskMedium},
		{0.61, RiskHigh},
		{1, RiskHigh},
	}
	for _, c := range cases {
		if got := RiskLevelFor(c.in); got != c.want {
			t.Errorf("RiskLevelFor(%v) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestRawRecordFloatRejectsNonFinite(t *testing.T) {
	r := RawFrom(map[string]any{"a": "NaN", "b": "Inf", "c": "-Infinity", "d": "1e400", "e": " 2.5 "})
	for _, k := range []string{"a", "b", "c", "d"} {
		if v, ok := r.Float(k); ok {
			t.Errorf("%s: expected absent, got %v", k, v)
		}
	}
	if v, ok := r.Float("e"); !ok || v != 2.5 {
		t.Errorf("e = %v, %v", v, ok)
	}

	var f Factor
	if err := json.Unmarshal([]byte(`["x", "NaN"]`), &f); err == nil {
		t.Errorf("expected error for NaN factor weight")
	}
}
