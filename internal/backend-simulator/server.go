// Package simulator é o backend de predições falso usado em dev: serve
// /api/unified/*, /api/prizepicks/* e /api/admin/* com dados aleatórios,
// injeta falhas e alterna os formatos de envelope.
package simulator

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Server estrutura principal do simulador
type Server struct {
	Log *zap.Logger
	// FailureRate é a fração de respostas 500 nas rotas de dados
	FailureRate float64
	// Latency atrasa cada resposta (útil para testar timeout)
	Latency time.Duration
	// AdminToken, se definido, é exigido como Bearer nas rotas /api/admin
	AdminToken string

	Requests *prometheus.CounterVec // route, status

	mu    sync.Mutex
	r     *rand.Rand
	calls atomic.Uint64
}

func NewServer(log *zap.Logger, seed int64, failureRate float64) *Server {
	return &Server{
		Log:         log,
		FailureRate: failureRate,
		r:           rand.New(rand.NewSource(seed)),
	}
}

func (s *Server) float() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

// Router retorna o roteador HTTP público
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.observe)

	r.Route("/api/unified", func(r chi.Router) {
		r.Get("/health", s.unifiedHealth)
		r.Group(func(r chi.Router) {
			r.Use(s.chaos)
			r.Get("/enhanced-bets", s.enhancedBets)
			r.Get("/portfolio-optimization", s.portfolioOptimization)
			r.Post("/portfolio/analyze", s.portfolioAnalyze)
			r.Get("/ai-insights", s.aiInsights)
			r.Get("/live-context/{gameID}", s.liveContext)
			r.Get("/multi-platform", s.multiPlatform)
		})
	})

	r.Route("/api/prizepicks", func(r chi.Router) {
		r.Get("/health", s.scraperHealth)
		r.With(s.chaos).Get("/props", s.propsHandler)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(s.requireToken)
		r.Get("/stats", s.adminStats)
		r.Get("/activity", s.adminActivity)
		r.Get("/system/status", s.systemStatus)
		r.Get("/users/stats", s.userStats)
		r.Post("/actions/{action}", s.adminAction)
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusRecorder guarda o status para a métrica
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Latency > 0 {
			select {
			case <-time.After(s.Latency):
			case <-r.Context().Done():
				return
			}
		}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		if s.Requests != nil {
			route := chi.RouteContext(r.Context()).RoutePattern()
			s.Requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		}
	})
}

// chaos devolve 500 numa fração das chamadas
func (s *Server) chaos(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.FailureRate > 0 && s.float() < s.FailureRate {
			s.Log.Debug("injecting failure", zap.String("path", r.URL.Path))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "simulated backend failure"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.AdminToken != "" && r.Header.Get("Authorization") != "Bearer "+s.AdminToken {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "invalid token"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func queryFloat(r *http.Request, key string) float64 {
	v, _ := strconv.ParseFloat(r.URL.Query().Get(key), 64)
	return v
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return v
}

func queryBool(r *http.Request, key string) bool {
	return strings.EqualFold(r.URL.Query().Get(key), "true")
}
