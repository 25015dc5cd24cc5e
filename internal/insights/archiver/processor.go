// Package archiver consome os lotes publicados no Kafka e grava o histórico
// no Postgres. Lotes que esgotam as tentativas vão para a DLQ.
package archiver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/sports-insights-poc/internal/insights/publisher"
	"github.com/radieske/sports-insights-poc/pkg/contracts/predictions"
)

// Reader é o subconjunto do *kafka.Reader usado aqui
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Writer é o subconjunto do *kafka.Writer usado na DLQ
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Store persiste um lote (ver repository.PostgresRepo)
type Store interface {
	Save(ctx context.Context, s predictions.Snapshot) error
}

// Processor consome lotes do Kafka e persiste no banco.
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa.
type Processor struct {
	Log    *zap.Logger
	Reader Reader
	Store  Store
	DLQ    Writer // opcional

	// MaxElapsed limita as tentativas de persistência de um lote
	MaxElapsed time.Duration
	// ReadRetry é a espera após falha de leitura
	ReadRetry time.Duration

	OnConsumed func()       // métricas (counter++)
	OnPersist  func()       // métricas
	OnDLQ      func()       // métricas
	OnError    func(string) // métricas por fase
}

func (p *Processor) fail(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}

// Run inicia o loop principal de consumo. O offset só é confirmado depois que o
// lote foi gravado ou enviado para a DLQ; se nenhum dos dois aceitar, Run retorna erro.
func (p *Processor) Run(ctx context.Context) error {
	wait := p.ReadRetry
	if wait <= 0 {
		wait = 500 * time.Millisecond
	}
	for {
		m, err := p.Reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			p.fail("read")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		if err := p.Handle(ctx, m); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// FetchMessage segue adiante; um commit posterior pularia este offset.
			// Para o consumo e o grupo retoma do último offset confirmado.
			p.Log.Error("batch not archived, stopping consumer",
				zap.String("key", string(m.Key)),
				zap.Int("partition", m.Partition),
				zap.Int64("offset", m.Offset),
				zap.Error(err),
			)
			return fmt.Errorf("archive offset %d: %w", m.Offset, err)
		}

		if err := p.Reader.CommitMessages(ctx, m); err != nil {
			p.Log.Warn("kafka commit failed", zap.Error(err))
			p.fail("commit")
		}
	}
}

// Handle processa uma mensagem. Retorna erro apenas quando nem a gravação nem
// a DLQ aceitaram o lote.
func (p *Processor) Handle(ctx context.Context, m kafka.Message) error {
	var ev publisher.BatchEvent
	if err := json.Unmarshal(m.Value, &ev); err != nil || ev.Page == "" {
		p.Log.Warn("invalid message", zap.String("key", string(m.Key)), zap.Error(err))
		p.fail("decode")
		return p.deadLetter(ctx, m)
	}

	b := p.backOff()
	op := func() error {
		return p.Store.Save(ctx, ev.Snapshot())
	}
	notify := func(err error, next time.Duration) {
		p.Log.Warn("db save failed, retrying",
			zap.String("page", ev.Page),
			zap.Int64("version", ev.Version),
			zap.Duration("next", next),
			zap.Error(err),
		)
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.fail("db")
		return p.deadLetter(ctx, m)
	}

	if p.OnPersist != nil {
		p.OnPersist()
	}
	p.Log.Debug("batch archived",
		zap.String("page", ev.Page),
		zap.Int64("version", ev.Version),
		zap.Int("records", ev.RecordCount),
	)
	return nil
}

func (p *Processor) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 300 * time.Millisecond
	b.MaxElapsedTime = p.MaxElapsed
	if b.MaxElapsedTime <= 0 {
		b.MaxElapsedTime = 5 * time.Second
	}
	return b
}

func (p *Processor) deadLetter(ctx context.Context, m kafka.Message) error {
	if p.DLQ == nil {
		// sem DLQ o lote é descartado
		return nil
	}
	msg := kafka.Message{
		Key:   m.Key,
		Value: m.Value,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "origin_topic", Value: []byte(m.Topic)},
		},
	}
	err := backoff.RetryNotify(func() error {
		return p.DLQ.WriteMessages(ctx, msg)
	}, backoff.WithContext(p.backOff(), ctx), func(err error, next time.Duration) {
		p.Log.Warn("dlq write failed, retrying", zap.Duration("next", next), zap.Error(err))
	})
	if err != nil {
		p.fail("dlq")
		return err
	}
	if p.OnDLQ != nil {
		p.OnDLQ()
	}
	return nil
}
