package poller

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/sports-insights-poc/pkg/contracts/predictions"
)

type HealthSource interface {
	GetScraperHealth(ctx context.Context) (predictions.ScraperHealth, error)
}

// Health acompanha o status do scraper. Falha de rede vira is_healthy=false
// com last_error; nunca é propagada.
type Health struct {
	Source HealthSource
	Loop   *Loop
	Log    *zap.Logger
	Now    func() time.Time

	OnChange func(predictions.ScraperHealth)

	mu     sync.RWMutex
	status predictions.ScraperHealth
}

func NewHealth(src HealthSource, interval time.Duration, log *zap.Logger) *Health {
	if log == nil {
		log = zap.NewNop()
	}
	return &Health{Source: src, Loop: NewLoop(interval), Log: log, Now: time.Now}
}

func (h *Health) Run(ctx context.Context) error {
	return h.Loop.Run(ctx, h.Check)
}

// Check consulta uma vez e grava o resultado
func (h *Health) Check(ctx context.Context) {
	st, err := h.Source.GetScraperHealth(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		h.Log.Warn("scraper health check failed", zap.Error(err))
		st = predictions.ScraperHealth{IsHealthy: false, LastError: err.Error(), CheckedAt: h.Now().UTC()}
	}

	h.mu.Lock()
	changed := h.status.IsHealthy != st.IsHealthy || h.status.CheckedAt.IsZero()
	h.status = st
	h.mu.Unlock()

	if changed && h.OnChange != nil {
		h.OnChange(st)
	}
}

func (h *Health) Status() predictions.ScraperHealth {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.status
}
