package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/radieske/sports-insights-poc/internal/insights/poller"
	"github.com/radieske/sports-insights-poc/internal/insights/repository"
	"github.com/radieske/sports-insights-poc/internal/shared/auth"
	"github.com/radieske/sports-insights-poc/pkg/contracts/predictions"
)

type BackendHealth interface {
	GetHealth(ctx context.Context) (predictions.ServiceHealth, error)
}

type AdminSource interface {
	GetAdminStats(ctx context.Context) (predictions.AdminStats, error)
	GetRecentActivity(ctx context.Context, limit int) ([]predictions.AdminActivity, error)
	GetSystemStatus(ctx context.Context) (predictions.SystemStatus, error)
	GetUserManagementData(ctx context.Context) (predictions.UserManagementData, error)
	ExecuteAdminAction(ctx context.Context, action string, params any) (map[string]any, error)
}

type HistorySource interface {
	ListBatches(ctx context.Context, page string, limit int) ([]repository.BatchRow, error)
}

// API expõe o estado das páginas, o health do backend, a alocação de portfólio
// e o painel admin. Backend, Admin, History, Tokens e WS são opcionais.
type API struct {
	Pages   *poller.Group
	Backend BackendHealth
	Admin   AdminSource
	History HistorySource
	Tokens  auth.Store
	WS      http.HandlerFunc
	Log     *zap.Logger

	AllowedOrigins []string

	// AllowAdminSession aceita PUT /v1/session com role admin (só para dev)
	AllowAdminSession bool
}

// Router retorna o roteador HTTP
func (a *API) Router() http.Handler {
	if a.Log == nil {
		a.Log = zap.NewNop()
	}
	origins := a.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/v1/pages", a.listPages)
	r.Get("/v1/pages/{page}", a.getPage)
	r.Get("/v1/pages/{page}/stacking", a.getStacking)
	r.Get("/v1/pages/{page}/history", a.getHistory)
	r.Put("/v1/pages/{page}/filters", a.putFilters)
	r.Post("/v1/pages/{page}/refresh", a.refresh)
	r.Get("/v1/backend/health", a.backendHealth)
	r.Post("/v1/portfolio/allocate", a.allocate)

	r.Put("/v1/session", a.putSession)
	r.Delete("/v1/session", a.deleteSession)

	r.Group(func(r chi.Router) {
		r.Use(a.requireAdmin)
		r.Get("/v1/admin/overview", a.adminOverview)
		r.Post("/v1/admin/actions/{action}", a.adminAction)
	})

	if a.WS != nil {
		r.Get("/ws", a.WS)
	}
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
// writeJSON serializa antes do header, para que falha de encode vire 500 e não 200 vazio
func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"encode response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(b, '\n'))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (a *API) page(w http.ResponseWriter, r *http.Request) (*poller.Page, bool) {
	p, ok := a.Pages.Get(chi.URLParam(r, "page"))
	if !ok {
		writeError(w, http.StatusNotFound, "page not found")
	}
	return p, ok
}

type pageSummary struct {
	Page        string              `json:"page"`
	State       string              `json:"state"`
	Version     int64               `json:"version"`
	Source      predictions.Source  `json:"source,omitempty"`
	Records     int                 `json:"records"`
	Filters     predictions.Filters `json:"filters"`
	Busy        bool                `json:"busy"`
	LastRefresh *time.Time          `json:"last_refresh,omitempty"`
	LastError   string              `json:"last_error,omitempty"`
}

func (a *API) listPages(w http.ResponseWriter, r *http.Request) {
	out := make([]pageSummary, 0, len(a.Pages.Pages()))
	for _, p := range a.Pages.Pages() {
		s := p.Snapshot()
		sum := pageSummary{
			Page:      s.Page,
			State:     s.State,
			Version:   s.Version,
			Filters:   s.Filters,
			Busy:      p.Busy(),
			LastError: s.LastError,
		}
		if s.Result != nil {
			sum.Source = s.Result.Source
			sum.Records = len(s.Result.Records)
			lr := s.LastRefresh
			sum.LastRefresh = &lr
		}
		out = append(out, sum)
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) getPage(w http.ResponseWriter, r *http.Request) {
	p, ok := a.page(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p.Snapshot())
}

func (a *API) getStacking(w http.ResponseWriter, r *http.Request) {
	p, ok := a.page(w, r)
	if !ok {
		return
	}
	s := p.Snapshot()
	if s.Stacking == nil {
		writeError(w, http.StatusNotFound, "no batch yet")
		return
	}
	writeJSON(w, http.StatusOK, s.Stacking)
}

func (a *API) getHistory(w http.ResponseWriter, r *http.Request) {
	p, ok := a.page(w, r)
	if !ok {
		return
	}
	if a.History == nil {
		writeError(w, http.StatusNotImplemented, "history disabled")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := a.History.ListBatches(r.Context(), p.Name, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (a *API) putFilters(w http.ResponseWriter, r *http.Request) {
	p, ok := a.page(w, r)
	if !ok {
		return
	}
	var f predictions.Filters
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := p.SetFilters(f); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, p.Filters())
}

// refresh: 202 quando aceito, 409 se já há fetch em andamento
func (a *API) refresh(w http.ResponseWriter, r *http.Request) {
	p, ok := a.page(w, r)
	if !ok {
		return
	}
	if p.Busy() {
		writeError(w, http.StatusConflict, "refresh in progress")
		return
	}
	p.Kick()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

type healthResponse struct {
	Scraper *predictions.ScraperHealth `json:"scraper,omitempty"`
	Backend *predictions.ServiceHealth `json:"backend,omitempty"`
	Error   string                     `json:"error,omitempty"`
}

func (a *API) backendHealth(w http.ResponseWriter, r *http.Request) {
	var out healthResponse
	if a.Pages.Health != nil {
		st := a.Pages.Health.Status()
		out.Scraper = &st
	}
	if a.Backend != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		h, err := a.Backend.GetHealth(ctx)
		if err != nil {
			out.Error = err.Error()
		} else {
			out.Backend = &h
		}
	}
	writeJSON(w, http.StatusOK, out)
}
