package client

import "testing"

func TestBetsQueryValues(t *testing.T) {
	cases := []struct {
		name string
		q    BetsQuery
		want string
	}{
		{"empty", BetsQuery{}, ""},
		{"sport only", BetsQuery{Sport: "NBA"}, "sport=NBA"},
		{"zero confidence omitted", BetsQuery{MinConfidence: 0, MaxResults: 0}, ""},
		{"false flag kept", BetsQuery{IncludePortfolioOptimization: Bool(false)}, "include_portfolio_optimization=false"},
		{"decimal confidence", BetsQuery{MinConfidence: 72.5}, "min_confidence=72.5"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v, err := c.q.Values()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := v.Encode(); got != c.want {
				t.Errorf("got %q, want %q", got, c.want)
			}
		})
	}
}

func TestQueryValidation(t *testing.T) {
	if _, err := (BetsQuery{MinConfidence: 101}).Values(); err == nil {
		t.Error("min_confidence above 100 must fail")
	}
	if _, err := (BetsQuery{MaxResults: -1}).Values(); err == nil {
		t.Error("negative max_results must fail")
	}
	if _, err := (PropsQuery{MinConfidence: -1}).Values(); err == nil {
		t.Error("negative min_confidence must fail")
	}
	if _, err := (OptimizationQuery{MaxPositions: -2}).Values(); err == nil {
		t.Error("negative max_positions must fail")
	}
}

func TestPropsQueryEnhancedFlag(t *testing.T) {
	v, err := PropsQuery{Sport: "NFL", MinConfidence: 70, Enhanced: true}.Values()
	if err != nil {
		t.Fatal(err)
	}
	if got := v.Encode(); got != "enhanced=true&min_confidence=70&sport=NFL" {
		t.Errorf("got %q", got)
	}
}
