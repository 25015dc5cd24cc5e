// Package fanout entrega os snapshots das páginas aos sinks (Redis, Kafka,
// Postgres) fora do caminho do refresh.
package fanout

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/sports-insights-poc/pkg/contracts/predictions"
)

const (
	DefaultQueueSize   = 64
	DefaultSinkTimeout = 5 * time.Second
)

// Sink recebe cada snapshot publicado
type Sink interface {
	Name() string
	Save(ctx context.Context, s predictions.Snapshot) error
}

// Fanout enfileira snapshots e os entrega, em ordem, a todos os sinks.
// Falha de um sink é logada e não impede os demais.
type Fanout struct {
	Sinks       []Sink
	Log         *zap.Logger
	SinkTimeout time.Duration

	OnError   func(sink string) // métricas
	OnDropped func()

	queue chan predictions.Snapshot
}

func New(log *zap.Logger, queueSize int, sinks ...Sink) *Fanout {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Fanout{
		Sinks:       sinks,
		Log:         log,
		SinkTimeout: DefaultSinkTimeout,
		queue:       make(chan predictions.Snapshot, queueSize),
	}
}

// Publish não bloqueia: com a fila cheia o snapshot é descartado
func (f *Fanout) Publish(s predictions.Snapshot) {
	select {
	case f.queue <- s:
	default:
		f.Log.Warn("sink queue full, dropping snapshot", zap.String("page", s.Page), zap.Int64("version", s.Version))
		if f.OnDropped != nil {
			f.OnDropped()
		}
	}
}

// Run entrega até ctx ser cancelado
func (f *Fanout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s := <-f.queue:
			f.deliver(ctx, s)
		}
	}
}

func (f *Fanout) deliver(ctx context.Context, s predictions.Snapshot) {
	for _, sink := range f.Sinks {
		sctx, cancel := context.WithTimeout(ctx, f.SinkTimeout)
		err := sink.Save(sctx, s)
		cancel()
		if err != nil {
			f.Log.Warn("sink failed",
				zap.String("sink", sink.Name()),
				zap.String("page", s.Page),
				zap.Error(err),
			)
			if f.OnError != nil {
				f.OnError(sink.Name())
			}
		}
	}
}
