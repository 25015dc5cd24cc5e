package stacking

import (
	"math/rand"
	"testing"

	"github.com/radieske/sports-insights-poc/pkg/contracts/predictions"
)

func rec(name, team, sport string) predictions.PredictionRecord {
	return predictions.PredictionRecord{PlayerName: name, Team: team, Sport: sport}
}

func TestGenerateEmpty(t *testing.T) {
	s := Generate(nil, rand.New(rand.NewSource(1)))
	if len(s.Suggestions) != 0 || len(s.CorrelationMatrix.Players) != 0 {
		t.Fatalf("expected empty result, got %+v", s)
	}
	if s.Suggestions == nil || s.CorrelationMatrix.Matrix == nil {
		t.Fatal("empty result must serialize as empty arrays")
	}
}

func TestMatrixDiagonalSymmetryAndBounds(t *testing.T) {
	records := []predictions.PredictionRecord{
		rec("A", "DAL", "NBA"), rec("B", "DAL", "NBA"), rec("C", "LAL", "NBA"),
		rec("D", "BUF", "NFL"), rec("E", "EDM", "NHL"), rec("F", "EDM", "NHL"),
	}
	for seed := int64(0); seed < 50; seed++ {
		cm := Matrix(records, rand.New(rand.NewSource(seed)))
		if len(cm.Players) != MatrixSize {
			t.Fatalf("matrix must be limited to %d players, got %d", MatrixSize, len(cm.Players))
		}
		for i := range cm.Matrix {
			if cm.Matrix[i][i] != 1.0 {
				t.Fatalf("diagonal [%d] = %v", i, cm.Matrix[i][i])
			}
			for j := range cm.Matrix[i] {
				if cm.Matrix[i][j] != cm.Matrix[j][i] {
					t.Fatalf("matrix not symmetric at %d,%d", i, j)
				}
				if i != j && (cm.Matrix[i][j] < 0.1 || cm.Matrix[i][j] > 0.95) {
					t.Fatalf("off-diagonal out of range: %v", cm.Matrix[i][j])
				}
			}
		}
		if len(cm.Insights) != MatrixSize*(MatrixSize-1)/2 {
			t.Fatalf("expected one insight per pair, got %d", len(cm.Insights))
		}
		for _, in := range cm.Insights {
			if in.Recommendation != PairRecommendation(in.Correlation) {
				t.Fatalf("insight recommendation mismatch: %+v", in)
			}
		}
	}
}

func TestSameTeamBoostIsMonotonic(t *testing.T) {
	shared := []predictions.PredictionRecord{rec("A", "DAL", "NBA"), rec("B", "DAL", "NBA")}
	apart := []predictions.PredictionRecord{rec("A", "DAL", "NBA"), rec("B", "BOS", "NBA")}

	for seed := int64(0); seed < 100; seed++ {
		withTeam := Generate(shared, rand.New(rand.NewSource(seed))).CorrelationMatrix.Matrix[0][1]
		without := Generate(apart, rand.New(rand.NewSource(seed))).CorrelationMatrix.Matrix[0][1]
		if withTeam < without {
			t.Fatalf("seed %d: shared team %v < no shared team %v", seed, withTeam, without)
		}
	}
}

func TestSuggestions(t *testing.T) {
	records := []predictions.PredictionRecord{
		rec("Luka", "DAL", "NBA"), rec("Kyrie", "DAL", "NBA"), rec("LeBron", "LAL", "NBA"),
		rec("Allen", "BUF", "NFL"),
	}
	s := Generate(records, rand.New(rand.NewSource(9)))

	var team, game *predictions.StackSuggestion
	for i := range s.Suggestions {
		switch s.Suggestions[i].Type {
		case predictions.StackTeam:
			team = &s.Suggestions[i]
		case predictions.StackGame:
			game = &s.Suggestions[i]
		}
	}
	if team == nil || len(team.Players) != 2 || team.Players[0] != "Luka" {
		t.Fatalf("expected DAL team stack, got %+v", team)
	}
	if team.CorrelationScore < 0.6 || team.CorrelationScore >= 0.9 {
		t.Errorf("team correlation out of bounds: %v", team.CorrelationScore)
	}
	if team.ExpectedBoost < 5 || team.ExpectedBoost >= 15 {
		t.Errorf("team boost out of bounds: %v", team.ExpectedBoost)
	}
	if team.RiskLevel != RiskLevel(team.CorrelationScore) {
		t.Errorf("risk level mismatch: %+v", team)
	}
	if game == nil || len(game.Players) != 3 {
		t.Fatalf("expected NBA game stack with 3 players, got %+v", game)
	}
	if game.CorrelationScore < 0.4 || game.CorrelationScore >= 0.7 {
		t.Errorf("game correlation out of bounds: %v", game.CorrelationScore)
	}
	if len(s.Suggestions) != 2 {
		t.Errorf("NFL has a single player and no team pair; got %d suggestions", len(s.Suggestions))
	}
}

func TestThresholds(t *testing.T) {
	cases := []struct {
		c          float64
		risk, pair string
	}{
		{0.95, "high", "AVOID"},
		{0.71, "high", "AVOID"},
		{0.7, "medium", "STACK"},
		{0.4, "medium", "STACK"},
		{0.39, "low", "NEUTRAL"},
	}
	for _, c := range cases {
		if got := RiskLevel(c.c); got != c.risk {
			t.Errorf("RiskLevel(%v) = %s, want %s", c.c, got, c.risk)
		}
		if got := PairRecommendation(c.c); got != c.pair {
			t.Errorf("PairRecommendation(%v) = %s, want %s", c.c, got, c.pair)
		}
	}
}
