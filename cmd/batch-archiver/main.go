package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/sports-insights-poc/internal/insights/archiver"
	"github.com/radieske/sports-insights-poc/internal/insights/repository"
	"github.com/radieske/sports-insights-poc/internal/shared/config"
	"github.com/radieske/sports-insights-poc/internal/shared/db"
	"github.com/radieske/sports-insights-poc/internal/shared/kafka"
	"github.com/radieske/sports-insights-poc/internal/shared/logger"
	"github.com/radieske/sports-insights-poc/internal/shared/metrics"
)

func main() {
	cfg, err := config.LoadService("batch-archiver")
	if err != nil {
		panic(fmt.Errorf("config: %w", err))
	}
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pg, err := db.ConnectPostgres(ctx, cfg.PostgresDSN, 30*time.Second)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	repo := repository.NewPostgresRepo(pg)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatal("ensure schema", zap.Error(err))
	}

	// Consumer Kafka (consumer group do archiver); commit manual após gravar
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.Brokers(),
		GroupID:  cfg.ArchiverGroup,
		Topic:    cfg.TopicPredictionBatches,
		MinBytes: 1e3,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	proc := &archiver.Processor{
		Log:    log,
		Reader: reader,
		Store:  repo,
	}
	if cfg.TopicPredictionBatchesDLQ != "" {
		dlq := kafka.NewWriter(cfg.Brokers(), cfg.TopicPredictionBatchesDLQ)
		defer dlq.Close()
		proc.DLQ = dlq
	}

	// Métricas Prometheus para monitoramento do processamento
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "archiver_messages_consumed_total", Help: "mensagens consumidas"})
	persisted := prometheus.NewCounter(prometheus.CounterOpts{Name: "archiver_batches_persisted_total", Help: "lotes gravados no banco"})
	deadLettered := prometheus.NewCounter(prometheus.CounterOpts{Name: "archiver_batches_dlq_total", Help: "lotes enviados para a DLQ"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "archiver_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, persisted, deadLettered, errorsBy)

	proc.OnConsumed = consumed.Inc
	proc.OnPersist = persisted.Inc
	proc.OnDLQ = deadLettered.Inc
	proc.OnError = func(stage string) { errorsBy.WithLabelValues(stage).Inc() }

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, nil, pg.PingContext)
	defer func() {
		shutdownCtx, c := context.WithTimeout(context.Background(), 5*time.Second)
		defer c()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}()

	log.Info("batch-archiver started",
		zap.String("consume", cfg.TopicPredictionBatches),
		zap.String("dlq", cfg.TopicPredictionBatchesDLQ),
		zap.String("group", cfg.ArchiverGroup),
	)
	// erro aqui significa lote sem destino: sair para o grupo reprocessar do último commit
	if err := proc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("archiver stopped with error", zap.Error(err))
	}
	log.Info("batch-archiver stopped")
}
