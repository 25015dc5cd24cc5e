package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	simulator "github.com/radieske/sports-insights-poc/internal/backend-simulator"
	"github.com/radieske/sports-insights-poc/internal/shared/config"
	"github.com/radieske/sports-insights-poc/internal/shared/logger"
	"github.com/radieske/sports-insights-poc/internal/shared/metrics"
)

func main() {
	cfg, err := config.LoadService("backend-simulator")
	if err != nil {
		panic(fmt.Errorf("config: %w", err))
	}
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	seed := cfg.FallbackSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := simulator.NewServer(log, seed, cfg.SimFailureRate)
	s.AdminToken = cfg.Auth.Token
	s.Requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "simulator_requests_total",
		Help: "Requests servidos pelo simulador por rota e status",
	}, []string{"route", "status"})
	prometheus.MustRegister(s.Requests)

	// ==== MUX DE MÉTRICAS (/healthz, /metrics)
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, nil, nil)
	log.Info("backend simulator (metrics) running",
		zap.String("addr", metricsSrv.Addr),
		zap.String("paths", "/healthz,/metrics"),
	)

	// Servidor público (/api/unified, /api/prizepicks, /api/admin)
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		_ = metricsSrv.Shutdown(shutdownCtx)
	}()

	log.Info("backend simulator (public) running",
		zap.String("addr", srv.Addr),
		zap.Float64("failure_rate", s.FailureRate),
		zap.String("paths", "/api/unified/*,/api/prizepicks/*,/api/admin/*"),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("public server error", zap.Error(err))
	}
}
