package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/radieske/sports-insights-poc/internal/shared/config"
	"github.com/radieske/sports-insights-poc/internal/shared/logger"
	"github.com/radieske/sports-insights-poc/internal/shared/metrics"
)

func rp(to string, log *zap.Logger) (*httputil.ReverseProxy, error) {
	u, err := url.Parse(to)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid upstream %q", to)
	}
	p := httputil.NewSingleHostReverseProxy(u)
	p.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Warn("upstream unavailable", zap.String("upstream", u.Host), zap.String("path", r.URL.Path), zap.Error(err))
		w.WriteHeader(http.StatusBadGateway)
	}
	return p, nil
}

// router expõe o backend de predições em /api/* e o insights-service em /insights/*
func router(backend, insights http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	}))

	// backend (ex.: /api/unified/* -> backend de predições, caminho preservado)
	r.Handle("/api/*", backend)

	// insights (ex.: /insights/v1/pages -> insights-service /v1/pages)
	r.Handle("/insights/*", http.StripPrefix("/insights", insights))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func main() {
	cfg, err := config.LoadService("api-gateway")
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

	// targets
	backend, err := rp(cfg.APIBaseURL, log)
	if err != nil {
		log.Fatal("backend upstream", zap.Error(err))
	}
	insights, err := rp(cfg.InsightsURL, log)
	if err != nil {
		log.Fatal("insights upstream", zap.Error(err))
	}

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, nil, nil)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router(backend, insights),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		_ = metricsSrv.Shutdown(shutdownCtx)
	}()

	log.Info("api-gateway listening",
		zap.String("addr", srv.Addr),
		zap.String("backend", cfg.APIBaseURL),
		zap.String("insights", cfg.InsightsURL),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("gateway failed", zap.Error(err))
	}
}
