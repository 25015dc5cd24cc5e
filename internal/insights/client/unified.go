package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/sports-insights-poc/internal/insights/fallback"
	"github.com/radieske/sports-insights-poc/pkg/contracts/predictions"
)

const DefaultUnifiedTimeout = 10 * time.Second

// Unified cobre /api/unified/*
type Unified struct {
	c        caller
	fallback *fallback.Generator
	log      *zap.Logger
}

// NewUnified recebe a URL base do backend (sem /api)
func NewUnified(doer Doer, apiBase string, timeout time.Duration, gen *fallback.Generator, log *zap.Logger) *Unified {
	if timeout <= 0 {
		timeout = DefaultUnifiedTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Unified{
		c:        caller{doer: doer, base: apiBase + "/api/unified", timeout: timeout},
		fallback: gen,
		log:      log,
	}
}

// GetEnhancedBets é o único endpoint que absorve qualquer falha do backend:
// erro de rede, timeout, status não-2xx ou corpo inválido devolvem o lote de
// fallback (status fallback_mode) com um warning no log. Só devolve erro quando
// o próprio chamador cancelou o contexto ou a query é inválida.
func (u *Unified) GetEnhancedBets(ctx context.Context, q BetsQuery) (predictions.RawBatch, error) {
	v, err := q.Values()
	if err != nil {
		return predictions.RawBatch{}, err
	}
	url := withQuery(u.c.url("/enhanced-bets"), v)

	resp, err := u.c.raw(ctx, "unified.enhanced_bets", http.MethodGet, url, nil, nil, 0)
	if err == nil {
		var batch predictions.RawBatch
		batch, err = DecodeBatch(url, resp.Body)
		if err == nil {
			return batch, nil
		}
	}
	if ctx.Err() != nil {
		return predictions.RawBatch{}, ctx.Err()
	}

	u.log.Warn("enhanced bets API unavailable, using fallback data", zap.Error(err))
	return u.fallback.EnhancedBets(), nil
}

func (u *Unified) GetPortfolioOptimization(ctx context.Context, q OptimizationQuery) (predictions.PortfolioOptimization, error) {
	var out predictions.PortfolioOptimization
	v, err := q.Values()
	if err != nil {
		return out, err
	}
	err = u.c.json(ctx, "unified.portfolio_optimization", http.MethodGet, withQuery(u.c.url("/portfolio-optimization"), v), nil, nil, &out)
	return out, err
}

// AnalyzeCustomPortfolio envia os ids como array JSON; investment <= 0 usa 1000
func (u *Unified) AnalyzeCustomPortfolio(ctx context.Context, betIDs []string, investment float64) (predictions.PortfolioAnalysis, error) {
	var out predictions.PortfolioAnalysis
	if investment <= 0 {
		investment = 1000
	}
	if betIDs == nil {
		betIDs = []string{}
	}
	v := url.Values{}
	v.Set("investment_amount", strconv.FormatFloat(investment, 'f', -1, 64))
	err := u.c.json(ctx, "unified.portfolio_analyze", http.MethodPost, withQuery(u.c.url("/portfolio/analyze"), v), betIDs, nil, &out)
	return out, err
}

func (u *Unified) GetAIInsights(ctx context.Context, q InsightsQuery) (predictions.AIInsightsResponse, error) {
	var out predictions.AIInsightsResponse
	q.IncludeArbitrage = nil
	v, err := q.Values()
	if err != nil {
		return out, err
	}
	err = u.c.json(ctx, "unified.ai_insights", http.MethodGet, withQuery(u.c.url("/ai-insights"), v), nil, nil, &out)
	return out, err
}

func (u *Unified) GetLiveGameContext(ctx context.Context, gameID string, includeOpportunities bool) (predictions.LiveGameContext, error) {
	var out predictions.LiveGameContext
	v := url.Values{}
	v.Set("include_betting_opportunities", strconv.FormatBool(includeOpportunities))
	err := u.c.json(ctx, "unified.live_context", http.MethodGet, withQuery(u.c.url("/live-context/"+url.PathEscape(gameID)), v), nil, nil, &out)
	return out, err
}

func (u *Unified) GetMultiPlatformOpportunities(ctx context.Context, q InsightsQuery) (predictions.MultiPlatformOpportunities, error) {
	var out predictions.MultiPlatformOpportunities
	v, err := q.Values()
	if err != nil {
		return out, err
	}
	err = u.c.json(ctx, "unified.multi_platform", http.MethodGet, withQuery(u.c.url("/multi-platform"), v), nil, nil, &out)
	return out, err
}

func (u *Unified) GetHealth(ctx context.Context) (predictions.ServiceHealth, error) {
	var out predictions.ServiceHealth
	err := u.c.json(ctx, "unified.health", http.MethodGet, u.c.url("/health"), nil, nil, &out)
	return out, err
}
