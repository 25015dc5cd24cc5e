package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	sharedkafka "github.com/radieske/sports-insights-poc/internal/shared/kafka"
	"github.com/radieske/sports-insights-poc/pkg/contracts/predictions"
)

// BatchEvent é a mensagem publicada a cada lote aplicado numa página
type BatchEvent struct {
	Page        string                         `json:"page"`
	Version     int64                          `json:"version"`
	Source      predictions.Source             `json:"source"`
	Filters     predictions.Filters            `json:"filters"`
	ReceivedAt  time.Time                      `json:"received_at"`
	RecordCount int                            `json:"record_count"`
	Records     []predictions.PredictionRecord `json:"records"`
	Portfolio   *predictions.PortfolioMetrics  `json:"portfolio_metrics,omitempty"`
}

// EventFrom converte um snapshot; ok=false quando ainda não há lote
func EventFrom(s predictions.Snapshot) (BatchEvent, bool) {
	if s.Result == nil {
		return BatchEvent{}, false
	}
	return BatchEvent{
		Page:        s.Page,
		Version:     s.Version,
		Source:      s.Result.Source,
		Filters:     s.Filters,
		ReceivedAt:  s.Result.ReceivedAt,
		RecordCount: len(s.Result.Records),
		Records:     s.Result.Records,
		Portfolio:   s.Result.PortfolioMetrics,
	}, true
}

// Snapshot reconstrói o snapshot mínimo que os repositórios aceitam
func (e BatchEvent) Snapshot() predictions.Snapshot {
	return predictions.Snapshot{
		Page:    e.Page,
		Version: e.Version,
		Filters: e.Filters,
		Result: &predictions.FetchResult{
			Records:          e.Records,
			Source:           e.Source,
			ReceivedAt:       e.ReceivedAt,
			PortfolioMetrics: e.Portfolio,
		},
	}
}

// KafkaPublisher encapsula o writer Kafka e o logger
type KafkaPublisher struct {
	writer *kafka.Writer
	log    *zap.Logger
}

// NewKafkaPublisher cria o publisher do tópico. Em env local/dev garante a
// existência do tópico pelo controller do cluster.
func NewKafkaPublisher(ctx context.Context, brokers []string, topic, env string, log *zap.Logger) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers not provided")
	}
	if env == "local" || env == "dev" {
		if err := ensureTopic(ctx, brokers[0], topic, log); err != nil {
			return nil, err
		}
	}
	return &KafkaPublisher{writer: sharedkafka.NewWriter(brokers, topic), log: log}, nil
}

func ensureTopic(ctx context.Context, broker, topic string, log *zap.Logger) error {
	ctrlCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, err := kafka.DialContext(ctrlCtx, "tcp", broker)
	if err != nil {
		return fmt.Errorf("connect kafka: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("kafka controller: %w", err)
	}
	cconn, err := kafka.DialContext(ctrlCtx, "tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	if err != nil {
		return fmt.Errorf("dial kafka controller: %w", err)
	}
	defer cconn.Close()

	// single-broker: 1 partição, replicação 1
	cfg := kafka.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1}
	if err := cconn.CreateTopics(cfg); err != nil && !strings.Contains(err.Error(), "already exists") {
		log.Warn("failed to create kafka topic", zap.String("topic", topic), zap.Error(err))
	} else if err == nil {
		log.Info("kafka topic created", zap.String("topic", topic))
	}
	return nil
}

func (p *KafkaPublisher) Name() string { return "kafka" }

// Save publica o lote com a página como chave (mesma partição por página)
func (p *KafkaPublisher) Save(ctx context.Context, s predictions.Snapshot) error {
	ev, ok := EventFrom(s)
	if !ok {
		return nil
	}
	value, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := sharedkafka.WriteJSON(ctx, p.writer, ev.Page, value); err != nil {
		return err
	}
	p.log.Debug("published prediction batch", zap.String("page", ev.Page), zap.Int64("version", ev.Version))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
