package simulator

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type player struct {
	ID     string
	Name   string
	Team   string
	Sport  string
	Stat   string
	Line   float64
	GameID string
}

// Catálogo fixo de jogadores usado para gerar as props
var catalog = []player{
	{"nba-lbj-pts", "LeBron James", "LAL", "NBA", "Points", 25.5, "NBA_LAL_GSW"},
	{"nba-ad-reb", "Anthony Davis", "LAL", "NBA", "Rebounds", 11.5, "NBA_LAL_GSW"},
	{"nba-sc-3pm", "Stephen Curry", "GSW", "NBA", "3-Pointers Made", 4.5, "NBA_LAL_GSW"},
	{"nba-ld-pra", "Luka Doncic", "DAL", "NBA", "Points + Rebounds + Assists", 52.5, "NBA_DAL_PHX"},
	{"nba-kd-pts", "Kevin Durant", "PHX", "NBA", "Points", 27.5, "NBA_DAL_PHX"},
	{"nfl-ja-pass", "Josh Allen", "BUF", "NFL", "Passing Yards", 267.5, "NFL_BUF_KC"},
	{"nfl-pm-pass", "Patrick Mahomes", "KC", "NFL", "Passing Yards", 274.5, "NFL_BUF_KC"},
	{"nfl-tk-rec", "Travis Kelce", "KC", "NFL", "Receiving Yards", 68.5, "NFL_BUF_KC"},
	{"mlb-aj-hr", "Aaron Judge", "NYY", "MLB", "Home Runs", 0.5, "MLB_NYY_BOS"},
	{"mlb-rd-hits", "Rafael Devers", "BOS", "MLB", "Hits", 1.5, "MLB_NYY_BOS"},
	{"mlb-mb-hits", "Mookie Betts", "LAD", "MLB", "Hits", 1.5, "MLB_LAD_SF"},
	{"nhl-cm-pts", "Connor McDavid", "EDM", "NHL", "Points", 1.5, "NHL_EDM_CGY"},
}

var featureNames = []string{"recent_form", "matchup_rating", "usage_rate", "rest_days", "home_away", "pace"}

var platforms = []string{"PrizePicks", "Underdog", "DraftKings Pick6"}

// gera número aleatório entre min e max
func (s *Server) rnd(min, max float64) float64 {
	return s.float()*(max-min) + min
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func matchSport(p player, sport string) bool {
	sport = strings.TrimSpace(sport)
	return sport == "" || strings.EqualFold(sport, "ALL") || strings.EqualFold(p.Sport, sport)
}

// prop monta um registro no formato heterogêneo do backend real: alguns campos
// faltam ou chegam como string, para o normalizador do cliente ter trabalho.
func (s *Server) prop(p player) map[string]any {
	confidence := round(s.rnd(60, 96), 1)
	ev := round(s.rnd(-0.05, 0.3), 3)
	rec := "OVER"
	if s.float() < 0.35 {
		rec = "UNDER"
	}

	m := map[string]any{
		"id":             p.ID,
		"player_name":    p.Name,
		"team":           p.Team,
		"sport":          p.Sport,
		"stat_type":      p.Stat,
		"line":           p.Line,
		"recommendation": rec,
		"confidence":     confidence,
		"expected_value": ev,
		"kelly_fraction": round(s.rnd(0.01, 0.12), 3),
		"risk_score":     round(s.rnd(0.1, 0.8), 2),
		"source":         platforms[int(s.float()*float64(len(platforms)))%len(platforms)],
		"game_id":        p.GameID,
	}

	// campos opcionais
	if s.float() < 0.7 {
		m["quantum_confidence"] = round(s.rnd(65, 98), 1)
		m["neural_score"] = round(s.rnd(60, 95), 1)
	}
	if s.float() < 0.5 {
		m["synergy_rating"] = round(s.rnd(0.3, 0.9), 2)
		m["stack_potential"] = round(s.rnd(0.2, 0.9), 2)
		m["optimal_stake"] = round(s.rnd(0.01, 0.1), 3)
	}
	if s.float() < 0.2 {
		// alguns upstreams mandam número como string
		m["expected_value"] = fmt.Sprintf("%.3f", ev)
	}
	if s.float() < 0.6 {
		features := map[string]float64{}
		var top [][2]any
		for _, f := range featureNames[:3+int(s.float()*3)] {
			w := round(s.rnd(-0.1, 0.25), 3)
			features[f] = w
			top = append(top, [2]any{f, w})
		}
		m["shap_explanation"] = map[string]any{
			"baseline":    0.5,
			"features":    features,
			"prediction":  confidence / 100,
			"top_factors": top,
		}
	}
	return m
}

func (s *Server) props(sport string, minConfidence float64, max int) []map[string]any {
	out := []map[string]any{}
	for _, p := range catalog {
		if !matchSport(p, sport) {
			continue
		}
		rec := s.prop(p)
		if rec["confidence"].(float64) < minConfidence {
			continue
		}
		out = append(out, rec)
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out
}

func nowISO() string { return time.Now().UTC().Format(time.RFC3339) }
