package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	icache "github.com/radieske/sports-insights-poc/internal/insights/cache"
	"github.com/radieske/sports-insights-poc/internal/insights/client"
	"github.com/radieske/sports-insights-poc/internal/insights/fallback"
	"github.com/radieske/sports-insights-poc/internal/insights/fanout"
	httpapi "github.com/radieske/sports-insights-poc/internal/insights/http"
	"github.com/radieske/sports-insights-poc/internal/insights/poller"
	"github.com/radieske/sports-insights-poc/internal/insights/publisher"
	"github.com/radieske/sports-insights-poc/internal/insights/pubsub"
	"github.com/radieske/sports-insights-poc/internal/insights/repository"
	"github.com/radieske/sports-insights-poc/internal/insights/ws"
	"github.com/radieske/sports-insights-poc/internal/shared/auth"
	"github.com/radieske/sports-insights-poc/internal/shared/cache"
	"github.com/radieske/sports-insights-poc/internal/shared/config"
	"github.com/radieske/sports-insights-poc/internal/shared/db"
	"github.com/radieske/sports-insights-poc/internal/shared/logger"
	"github.com/radieske/sports-insights-poc/internal/shared/metrics"
	"github.com/radieske/sports-insights-poc/internal/shared/transport"
	"github.com/radieske/sports-insights-poc/pkg/contracts/predictions"
)

// tempo máximo esperando Redis/Postgres na subida
const connectWait = 30 * time.Second

func main() {
	// carrega config
	cfg, err := config.LoadService("insights-service")
	if err != nil {
		panic(fmt.Errorf("config: %w", err))
	}

	// inicia logger
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service",
		zap.String("service", cfg.ServiceName),
		zap.String("env", cfg.Env),
		zap.String("backend", cfg.APIBaseURL),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// métricas em registry próprio
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewCollectors(reg)

	// transporte compartilhado pelos clientes
	tr := transport.New(cfg.Backend.UnifiedTimeout, cfg.Backend.RequestsPerSec, cfg.Backend.Burst)
	tr.OnDone = m.ObserveRequest

	gen := fallback.NewRandom()
	if cfg.FallbackSeed != 0 {
		gen = fallback.New(cfg.FallbackSeed)
	}

	// Redis só quando algum componente precisa
	var rdb *redis.Client
	if cfg.Sinks.Redis || cfg.Auth.Store == "redis" {
		rdb, err = cache.ConnectRedis(ctx, cfg.RedisAddr, connectWait)
		if err != nil {
			log.Fatal("failed to connect redis", zap.Error(err))
		}
		defer rdb.Close()
		log.Info("redis connected")
	}

	tokens := tokenStore(cfg, rdb)
	if cfg.Auth.Token != "" {
		if err := tokens.Set(ctx, cfg.Auth.Token, nil); err != nil {
			log.Warn("failed to store initial auth token", zap.Error(err))
		}
	}

	unified := client.NewUnified(tr, cfg.APIBaseURL, cfg.Backend.UnifiedTimeout, gen, log)
	api := client.NewAPI(tr, cfg.APIBaseURL, cfg.Backend.APITimeout, tokens, gen, log)

	// páginas
	bets := poller.PageOptions{
		Interval:     cfg.Polling.BetsInterval,
		MaxResults:   cfg.Filters.MaxResults,
		PropsTimeout: cfg.Backend.PropsTimeout,
	}
	bets.Filters.Sport = cfg.Filters.Sport
	bets.Filters.MinConfidence = cfg.Filters.MinConfidence
	best := bets
	best.Interval = cfg.Polling.BestBetsInterval
	best.Filters.MinConfidence = cfg.Filters.BestBetsMinConf

	group := poller.NewGroup(
		poller.NewHealth(api, cfg.Polling.HealthInterval, log),
		poller.NewEnhancedBetsPage(unified, bets, gen, log),
		poller.NewLockedBetsPage(api, bets, gen, log),
		poller.NewBestBetsPage(api, best, gen, log),
	)
	group.Health.OnChange = func(s predictions.ScraperHealth) {
		log.Info("scraper health changed", zap.Bool("healthy", s.IsHealthy), zap.String("last_error", s.LastError))
	}

	// hub WS: snapshot atual no subscribe
	hub := ws.NewHub(func(*http.Request) bool { return true })
	hub.OnConnect = m.WSConnections.Inc
	hub.OnDisconnect = m.WSConnections.Dec
	hub.Current = func(page string) (predictions.Snapshot, bool) {
		p, ok := group.Get(page)
		if !ok {
			return predictions.Snapshot{}, false
		}
		s := p.Snapshot()
		return s, s.Result != nil
	}

	// sinks
	var sinks []fanout.Sink
	var snapshots *icache.SnapshotCache
	if cfg.Sinks.Redis {
		snapshots = icache.NewSnapshotCache(rdb, cfg.Sinks.SnapshotTTL)
		sinks = append(sinks, snapshots, pubsub.NewRedisBroadcaster(rdb, cfg.RedisPubSubChannel))
		ws.StartRedisSubscriber(ctx, rdb, cfg.RedisPubSubChannel, hub, log)
	} else {
		sinks = append(sinks, hub)
	}
	if cfg.Sinks.Kafka {
		pub, err := publisher.NewKafkaPublisher(ctx, cfg.Brokers(), cfg.TopicPredictionBatches, cfg.Env, log)
		if err != nil {
			log.Fatal("failed to init kafka publisher", zap.Error(err))
		}
		defer pub.Close()
		sinks = append(sinks, pub)
		log.Info("kafka publisher ready", zap.String("topic", cfg.TopicPredictionBatches))
	}
	var repo *repository.PostgresRepo
	if cfg.Sinks.Postgres {
		pg, err := db.ConnectPostgres(ctx, cfg.PostgresDSN, connectWait)
		if err != nil {
			log.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()
		repo = repository.NewPostgresRepo(pg)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatal("failed to ensure schema", zap.Error(err))
		}
		sinks = append(sinks, repo)
		log.Info("postgres connected")
	}

	fan := fanout.New(log, 0, sinks...)
	fan.OnError = func(sink string) { m.SinkErrors.WithLabelValues(sink).Inc() }

	for _, p := range group.Pages() {
		p := p
		p.Notifier = poller.LogNotifier{Log: log}
		p.Loop.OnDropped = func() { m.DroppedTicks.WithLabelValues(p.Name).Inc() }
		p.OnResult = func(r string) {
			m.Refreshes.WithLabelValues(p.Name, r).Inc()
			if r == poller.ResultFallback {
				m.Fallbacks.WithLabelValues(p.Name).Inc()
			}
		}
		p.OnRefresh = func(s predictions.Snapshot) {
			if s.Result != nil {
				m.BatchSize.WithLabelValues(s.Page).Set(float64(len(s.Result.Records)))
			}
			fan.Publish(s)
		}

		// lote antigo disponível antes do primeiro fetch
		if snapshots != nil {
			if s, ok, err := snapshots.Load(ctx, p.Name); err != nil {
				log.Warn("snapshot restore failed", zap.String("page", p.Name), zap.Error(err))
			} else if ok {
				p.Restore(s)
				log.Info("snapshot restored", zap.String("page", p.Name), zap.Int64("version", s.Version))
			}
		}
	}

	router := &httpapi.API{
		Pages:   group,
		Backend: unified,
		Admin:   api,
		Tokens:  tokens,
		WS:      hub.HandleWS,
		Log:     log,

		AllowAdminSession: cfg.Auth.AllowAdminSession,
	}
	if repo != nil {
		router.History = repo
	}
	if cfg.Auth.AllowAdminSession {
		log.Warn("admin sessions enabled without authentication; do not expose this instance")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	msrv := metrics.StartMetricsServer(cfg.MetricsPort, reg, func(ctx context.Context) error {
		if rdb != nil {
			if err := rdb.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
		}
		if repo != nil {
			if err := repo.DB.PingContext(ctx); err != nil {
				return fmt.Errorf("postgres: %w", err)
			}
		}
		return nil
	})

	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return group.Run(gctx) })
	eg.Go(func() error { return fan.Run(gctx) })
	eg.Go(func() error {
		log.Info("http server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
		_ = msrv.Shutdown(sctx)
		return nil
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("service stopped with error", zap.Error(err))
		return
	}
	log.Info("service stopped")
}

// tokenStore escolhe onde a sessão fica guardada
func tokenStore(cfg config.Config, rdb *redis.Client) auth.Store {
	switch cfg.Auth.Store {
	case "file":
		return auth.NewFileStore(cfg.Auth.File)
	case "redis":
		return auth.NewRedisStore(rdb, "insights:", 24*time.Hour)
	default:
		return auth.NewMemoryStore()
	}
}
