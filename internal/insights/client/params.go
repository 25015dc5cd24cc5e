package client

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// BetsQuery filtra /unified/enhanced-bets. Sport vazio = todos os esportes; o
// código do esporte não é validado, só repassado.
type BetsQuery struct {
	Sport                        string  `validate:"omitempty,max=32"`
	MinConfidence                float64 `validate:"gte=0,lte=100"`
	MaxResults                   int     `validate:"gte=0"`
	IncludeAIInsights            *bool
	IncludePortfolioOptimization *bool
}

func (q BetsQuery) Values() (url.Values, error) {
	if err := validate.Struct(q); err != nil {
		return nil, fmt.Errorf("invalid bets query: %w", err)
	}
	v := url.Values{}
	addSport(v, q.Sport)
	addConfidence(v, q.MinConfidence)
	addBool(v, "include_ai_insights", q.IncludeAIInsights)
	addBool(v, "include_portfolio_optimization", q.IncludePortfolioOptimization)
	if q.MaxResults > 0 {
		v.Set("max_results", strconv.Itoa(q.MaxResults))
	}
	return v, nil
}

// PropsQuery filtra /prizepicks/props
type PropsQuery struct {
	Sport         string  `validate:"omitempty,max=32"`
	MinConfidence float64 `validate:"gte=0,lte=100"`
	Enhanced      bool
}

func (q PropsQuery) Values() (url.Values, error) {
	if err := validate.Struct(q); err != nil {
		return nil, fmt.Errorf("invalid props query: %w", err)
	}
	v := url.Values{}
	addSport(v, q.Sport)
	addConfidence(v, q.MinConfidence)
	if q.Enhanced {
		v.Set("enhanced", "true")
	}
	return v, nil
}

// OptimizationQuery filtra /unified/portfolio-optimization
type OptimizationQuery struct {
	Sport         string  `validate:"omitempty,max=32"`
	MinConfidence float64 `validate:"gte=0,lte=100"`
	MaxPositions  int     `validate:"gte=0"`
}

func (q OptimizationQuery) Values() (url.Values, error) {
	if err := validate.Struct(q); err != nil {
		return nil, fmt.Errorf("invalid optimization query: %w", err)
	}
	v := url.Values{}
	addSport(v, q.Sport)
	addConfidence(v, q.MinConfidence)
	if q.MaxPositions > 0 {
		v.Set("max_positions", strconv.Itoa(q.MaxPositions))
	}
	return v, nil
}

// InsightsQuery filtra /unified/ai-insights e /unified/multi-platform
type InsightsQuery struct {
	Sport            string  `validate:"omitempty,max=32"`
	MinConfidence    float64 `validate:"gte=0,lte=100"`
	IncludeArbitrage *bool
}

func (q InsightsQuery) Values() (url.Values, error) {
	if err := validate.Struct(q); err != nil {
		return nil, fmt.Errorf("invalid insights query: %w", err)
	}
	v := url.Values{}
	addSport(v, q.Sport)
	addConfidence(v, q.MinConfidence)
	addBool(v, "include_arbitrage", q.IncludeArbitrage)
	return v, nil
}

// Bool facilita flags opcionais
func Bool(b bool) *bool { return &b }

func addSport(v url.Values, sport string) {
	if sport != "" {
		v.Set("sport", sport)
	}
}

// min_confidence só entra quando diferente de zero
func addConfidence(v url.Values, c float64) {
	if c != 0 {
		v.Set("min_confidence", strconv.FormatFloat(c, 'f', -1, 64))
	}
}

// flags só entram quando definidas, inclusive false
func addBool(v url.Values, key string, b *bool) {
	if b != nil {
		v.Set(key, strconv.FormatBool(*b))
	}
}

func withQuery(base string, v url.Values) string {
	if len(v) == 0 {
		return base
	}
	return base + "?" + v.Encode()
}
