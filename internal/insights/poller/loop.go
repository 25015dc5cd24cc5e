// Package poller mantém o lote de cada página atualizado: um loop por página
// com intervalo fixo, descartando ticks enquanto um fetch está em andamento.
package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Ticker abstrai time.Ticker para os testes controlarem o relógio
type Ticker interface {
	C() <-chan time.Time
	Reset(d time.Duration)
	Stop()
}

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time   { return r.t.C }
func (r realTicker) Reset(d time.Duration) { r.t.Reset(d) }
func (r realTicker) Stop()                 { r.t.Stop() }

// NewTicker é o construtor padrão (time.NewTicker)
func NewTicker(d time.Duration) Ticker { return realTicker{t: time.NewTicker(d)} }

// Loop dispara fn no início, a cada Interval e a cada Kick.
// Só um fn roda por vez (flag busy). Tick durante fetch é descartado e contado;
// Kick durante fetch fica pendente (no máximo um) e roda ao final do fetch atual.
type Loop struct {
	Interval  time.Duration
	NewTicker func(time.Duration) Ticker

	OnDropped func() // métricas

	busy    atomic.Bool
	dropped atomic.Int64
	kick    chan struct{}
	once    sync.Once
}

func NewLoop(interval time.Duration) *Loop {
	return &Loop{Interval: interval, NewTicker: NewTicker}
}

func (l *Loop) init() {
	l.once.Do(func() { l.kick = make(chan struct{}, 1) })
}

// Busy indica fetch em andamento
func (l *Loop) Busy() bool { return l.busy.Load() }

// Dropped é o total de ticks descartados
func (l *Loop) Dropped() int64 { return l.dropped.Load() }

// Kick pede um refresh imediato e reinicia o intervalo. Não bloqueia.
func (l *Loop) Kick() {
	l.init()
	select {
	case l.kick <- struct{}{}:
	default:
	}
}

// Run bloqueia até ctx ser cancelado. Ao sair, espera o fetch em andamento
// (que recebe o mesmo ctx e portanto é abortado).
func (l *Loop) Run(ctx context.Context, fn func(context.Context)) error {
	l.init()
	newTicker := l.NewTicker
	if newTicker == nil {
		newTicker = NewTicker
	}
	t := newTicker(l.Interval)
	defer t.Stop()

	var wg sync.WaitGroup
	defer wg.Wait()
	done := make(chan struct{}, 1)

	start := func() bool {
		if !l.busy.CompareAndSwap(false, true) {
			return false
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				l.busy.Store(false)
				select {
				case done <- struct{}{}:
				default:
				}
			}()
			fn(ctx)
		}()
		return true
	}

	pending := false
	start()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C():
			if !start() {
				l.dropped.Add(1)
				if l.OnDropped != nil {
					l.OnDropped()
				}
			}
		case <-l.kick:
			t.Reset(l.Interval)
			if !start() {
				pending = true
			}
		case <-done:
			if pending && ctx.Err() == nil {
				pending = !start()
			}
		}
	}
}
