package poller

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/radieske/sports-insights-poc/internal/insights/normalize"
	"github.com/radieske/sports-insights-poc/internal/insights/portfolio"
	"github.com/radieske/sports-insights-poc/internal/insights/stacking"
	"github.com/radieske/sports-insights-poc/pkg/contracts/predictions"
)

// Estados da página. Populated/FallbackPopulated são os estados de repouso após
// o primeiro lote; Idle só antes dele.
const (
	StateIdle              = "idle"
	StateFetching          = "fetching"
	StatePopulated         = "populated"
	StateFallbackPopulated = "fallback_populated"
)

// Resultados de um refresh (label de métrica)
const (
	ResultLive     = "live"
	ResultFallback = "fallback"
	ResultError    = "error"
	ResultAborted  = "aborted"
)

var validate = validator.New()

// ErrStopped: o refresh terminou depois do cancelamento e foi descartado
var ErrStopped = errors.New("page stopped")

// FetchFunc busca o lote cru para os filtros atuais
type FetchFunc func(ctx context.Context, f predictions.Filters) (predictions.RawBatch, error)

// SubstituteFunc decide se um erro vira lote de fallback (ok=true) ou erro bloqueante
type SubstituteFunc func(f predictions.Filters, err error) (predictions.RawBatch, bool)

// Page é o controlador de uma página: dono exclusivo do lote corrente
type Page struct {
	Name       string
	Fetch      FetchFunc
	Substitute SubstituteFunc
	// ClientFilter reaplica sport/min_confidence sobre o lote recebido
	ClientFilter bool
	Sort         func([]predictions.PredictionRecord)
	Rand         stacking.Rand
	Notifier     Notifier
	Log          *zap.Logger
	Now          func() time.Time
	Loop         *Loop

	OnRefresh func(predictions.Snapshot) // sinks
	OnResult  func(result string)        // métricas

	mu          sync.RWMutex
	state       string
	filters     predictions.Filters
	result      *predictions.FetchResult
	stack       *predictions.Stacking
	lastRefresh time.Time
	lastErr     string
	version     int64
}

// NewPage monta uma página com loop no intervalo dado
func NewPage(name string, interval time.Duration, f predictions.Filters, fetch FetchFunc, rnd stacking.Rand, log *zap.Logger) *Page {
	if log == nil {
		log = zap.NewNop()
	}
	return &Page{
		Name:     name,
		Fetch:    fetch,
		Rand:     rnd,
		Notifier: nopNotifier{},
		Log:      log.With(zap.String("page", name)),
		Now:      time.Now,
		Loop:     NewLoop(interval),
		state:    StateIdle,
		filters:  f,
	}
}

// Run mantém a página atualizada até ctx ser cancelado
func (p *Page) Run(ctx context.Context) error {
	return p.Loop.Run(ctx, func(ctx context.Context) {
		_ = p.Refresh(ctx)
	})
}

// Busy indica fetch em andamento
func (p *Page) Busy() bool { return p.Loop.Busy() }

// Kick pede refresh imediato
func (p *Page) Kick() { p.Loop.Kick() }

func (p *Page) Filters() predictions.Filters {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.filters
}

// SetFilters troca os filtros e dispara um refresh (mudança de dependência)
func (p *Page) SetFilters(f predictions.Filters) error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("invalid filters: %w", err)
	}
	p.mu.Lock()
	changed := p.filters != f
	p.filters = f
	p.mu.Unlock()
	if changed {
		p.Kick()
	}
	return nil
}

// Restore carrega um snapshot salvo (ex.: cache Redis) antes do primeiro fetch
func (p *Page) Restore(s predictions.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.result != nil || s.Result == nil {
		return
	}
	p.result = s.Result
	p.stack = s.Stacking
	p.lastRefresh = s.LastRefresh
	p.version = s.Version
	p.state = StatePopulated
	if s.Result.Source == predictions.SourceFallback {
		p.state = StateFallbackPopulated
	}
}

// Snapshot devolve uma cópia do estado publicado
func (p *Page) Snapshot() predictions.Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshotLocked()
}

func (p *Page) snapshotLocked() predictions.Snapshot {
	return predictions.Snapshot{
		Page:        p.Name,
		State:       p.state,
		Version:     p.version,
		Filters:     p.filters,
		Result:      p.result,
		Stacking:    p.stack,
		LastRefresh: p.lastRefresh,
		LastError:   p.lastErr,
	}
}

// Refresh executa um ciclo completo. Em sucesso (ou fallback) substitui o lote
// inteiro; em erro sem fallback mantém o lote anterior e devolve o erro.
func (p *Page) Refresh(ctx context.Context) error {
	p.mu.Lock()
	prev := p.state
	p.state = StateFetching
	f := p.filters
	p.mu.Unlock()

	batch, err := p.Fetch(ctx, f)
	if ctx.Err() != nil {
		// parado durante o fetch: nenhuma atualização depois do stop
		p.mu.Lock()
		p.state = prev
		p.mu.Unlock()
		p.report(ResultAborted)
		return ErrStopped
	}

	substituted := false
	if err != nil && p.Substitute != nil {
		if fb, ok := p.Substitute(f, err); ok {
			p.Log.Warn("backend unavailable, using fallback data", zap.Error(err))
			batch, err, substituted = fb, nil, true
		}
	}
	if err != nil {
		p.mu.Lock()
		p.state = prev
		p.lastErr = err.Error()
		p.mu.Unlock()
		p.Log.Error("refresh failed, keeping previous batch", zap.Error(err))
		p.notify(LevelError, "Failed to load data: "+err.Error())
		p.report(ResultError)
		return err
	}

	fallback := substituted || batch.IsFallback()
	res := p.build(batch, f, fallback)
	st := stacking.Generate(res.Records, p.Rand)

	p.mu.Lock()
	p.result = res
	p.stack = &st
	p.lastRefresh = res.ReceivedAt
	p.lastErr = ""
	p.version++
	p.state = StatePopulated
	if fallback {
		p.state = StateFallbackPopulated
	}
	snap := p.snapshotLocked()
	p.mu.Unlock()

	if fallback {
		p.notify(LevelWarning, "Using fallback data - backend unavailable")
		p.report(ResultFallback)
	} else {
		p.report(ResultLive)
	}
	p.Log.Debug("page refreshed",
		zap.Int("records", len(res.Records)),
		zap.String("source", string(res.Source)),
		zap.Int64("version", snap.Version),
	)
	if p.OnRefresh != nil {
		p.OnRefresh(snap)
	}
	return nil
}

func (p *Page) build(batch predictions.RawBatch, f predictions.Filters, fallback bool) *predictions.FetchResult {
	recs := normalize.NormalizeAll(batch.Records)
	if p.ClientFilter {
		kept := recs[:0]
		for _, r := range recs {
			if f.Match(r) {
				kept = append(kept, r)
			}
		}
		recs = kept
	}
	if p.Sort != nil {
		p.Sort(recs)
	}

	res := &predictions.FetchResult{
		Records:          recs,
		Source:           predictions.SourceLive,
		ReceivedAt:       p.Now().UTC(),
		PortfolioMetrics: batch.PortfolioMetrics,
		AIInsights:       batch.AIInsights,
	}
	if fallback {
		res.Source = predictions.SourceFallback
	}
	if res.PortfolioMetrics == nil {
		m := portfolio.Metrics(recs)
		res.PortfolioMetrics = &m
	}
	return res
}

func (p *Page) notify(level Level, msg string) {
	if p.Notifier != nil {
		p.Notifier.Notify(p.Name, level, msg)
	}
}

func (p *Page) report(r string) {
	if p.OnResult != nil {
		p.OnResult(r)
	}
}

// ByConfidence ordena por confiança desc
func ByConfidence(recs []predictions.PredictionRecord) {
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Confidence > recs[j].Confidence })
}

// ByConfidenceValue ordena por confiança × EV desc
func ByConfidenceValue(recs []predictions.PredictionRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Confidence*recs[i].ExpectedValue > recs[j].Confidence*recs[j].ExpectedValue
	})
}
