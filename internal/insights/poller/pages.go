package poller

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/sports-insights-poc/internal/insights/client"
	"github.com/radieske/sports-insights-poc/internal/insights/fallback"
	"github.com/radieske/sports-insights-poc/internal/shared/transport"
	"github.com/radieske/sports-insights-poc/pkg/contracts/predictions"
)

// Nomes das páginas
const (
	PageEnhancedBets = "enhanced-bets"
	PageLockedBets   = "locked-bets"
	PageBestBets     = "best-bets"
)

// Confiança mínima fixa da página de melhores apostas
const BestBetsMinConfidence = 70

type BetsSource interface {
	GetEnhancedBets(ctx context.Context, q client.BetsQuery) (predictions.RawBatch, error)
}

type PropsSource interface {
	GetProps(ctx context.Context, q client.PropsQuery, timeout time.Duration) (predictions.RawBatch, error)
}

// PageOptions são os parâmetros comuns das páginas
type PageOptions struct {
	Interval     time.Duration
	Filters      predictions.Filters
	MaxResults   int
	PropsTimeout time.Duration
}

// NewEnhancedBetsPage usa o endpoint unificado, que já devolve fallback em
// qualquer falha. O filtro fica no servidor: o lote passa sem re-filtragem.
func NewEnhancedBetsPage(src BetsSource, opts PageOptions, gen *fallback.Generator, log *zap.Logger) *Page {
	fetch := func(ctx context.Context, f predictions.Filters) (predictions.RawBatch, error) {
		return src.GetEnhancedBets(ctx, client.BetsQuery{
			Sport:                        f.SportParam(),
			MinConfidence:                f.MinConfidence,
			MaxResults:                   opts.MaxResults,
			IncludeAIInsights:            client.Bool(true),
			IncludePortfolioOptimization: client.Bool(true),
		})
	}
	return NewPage(PageEnhancedBets, opts.Interval, opts.Filters, fetch, gen, log)
}

// NewLockedBetsPage busca props enhanced com timeout curto. Backend inacessível
// (rede/timeout) cai nas props de demonstração; erro HTTP é bloqueante e mantém
// o lote anterior. O filtro é reaplicado no cliente e o lote é ordenado por
// confiança × EV.
func NewLockedBetsPage(src PropsSource, opts PageOptions, gen *fallback.Generator, log *zap.Logger) *Page {
	fetch := func(ctx context.Context, f predictions.Filters) (predictions.RawBatch, error) {
		return src.GetProps(ctx, client.PropsQuery{
			Sport:         f.SportParam(),
			MinConfidence: f.MinConfidence,
			Enhanced:      true,
		}, opts.PropsTimeout)
	}
	p := NewPage(PageLockedBets, opts.Interval, opts.Filters, fetch, gen, log)
	p.ClientFilter = true
	p.Sort = ByConfidenceValue
	p.Substitute = func(f predictions.Filters, err error) (predictions.RawBatch, bool) {
		if !transport.IsUnreachable(err) {
			return predictions.RawBatch{}, false
		}
		return predictions.RawBatch{
			Records: gen.LockedBets(f.SportParam(), f.MinConfidence),
			Shape:   predictions.ShapeProps,
			Status:  predictions.StatusFallback,
		}, true
	}
	return p
}

// NewBestBetsPage lista as props com confiança >= 70 ordenadas por confiança.
// Sem fallback: em erro o lote anterior continua publicado.
func NewBestBetsPage(src PropsSource, opts PageOptions, gen *fallback.Generator, log *zap.Logger) *Page {
	fetch := func(ctx context.Context, f predictions.Filters) (predictions.RawBatch, error) {
		return src.GetProps(ctx, client.PropsQuery{
			Sport:         f.SportParam(),
			MinConfidence: f.MinConfidence,
		}, 0)
	}
	if opts.Filters.MinConfidence == 0 {
		opts.Filters.MinConfidence = BestBetsMinConfidence
	}
	p := NewPage(PageBestBets, opts.Interval, opts.Filters, fetch, gen, log)
	p.Sort = ByConfidence
	return p
}
