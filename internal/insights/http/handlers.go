package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/radieske/sports-insights-poc/internal/insights/portfolio"
	"github.com/radieske/sports-insights-poc/internal/shared/auth"
	"github.com/radieske/sports-insights-poc/internal/shared/transport"
	"github.com/radieske/sports-insights-poc/pkg/contracts/predictions"
)

type allocateRequest struct {
	Page       string   `json:"page"`
	BetIDs     []string `json:"bet_ids"`
	Investment float64  `json:"investment"`
}

// allocate distribui o investimento entre registros do lote atual da página
func (a *API) allocate(w http.ResponseWriter, r *http.Request) {
	var req allocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	p, ok := a.Pages.Get(req.Page)
	if !ok {
		writeError(w, http.StatusNotFound, "page not found")
		return
	}
	s := p.Snapshot()
	var recs []predictions.PredictionRecord
	if s.Result != nil {
		recs = s.Result.Records
	}

	plan, err := portfolio.Allocate(recs, req.BetIDs, req.Investment)
	switch {
	case errors.Is(err, portfolio.ErrInvalidInvestment), errors.Is(err, portfolio.ErrNoSelection):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	a.Log.Debug("portfolio allocated", zap.String("page", p.Name), zap.Stringer("plan", plan))
	writeJSON(w, http.StatusOK, plan)
}

type sessionRequest struct {
	Token string     `json:"token"`
	User  *auth.User `json:"user"`
}

// putSession grava o token usado nas chamadas autenticadas ao backend.
// Não há verificação de identidade: o role vem do próprio cliente. Por isso
// sessão admin só é aceita com AllowAdminSession (ambiente de desenvolvimento);
// isto não é controle de acesso.
func (a *API) putSession(w http.ResponseWriter, r *http.Request) {
	if a.Tokens == nil {
		writeError(w, http.StatusNotImplemented, "token store disabled")
		return
	}
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}
	if req.User.IsAdmin() && !a.AllowAdminSession {
		a.Log.Warn("admin session rejected", zap.String("user_id", req.User.ID))
		writeError(w, http.StatusForbidden, "admin sessions are disabled")
		return
	}
	if err := a.Tokens.Set(r.Context(), req.Token, req.User); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) deleteSession(w http.ResponseWriter, r *http.Request) {
	if a.Tokens == nil {
		writeError(w, http.StatusNotImplemented, "token store disabled")
		return
	}
	if err := a.Tokens.Clear(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// requireAdmin libera o painel admin só para sessão com role admin
func (a *API) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.Admin == nil {
			writeError(w, http.StatusNotImplemented, "admin disabled")
			return
		}
		if a.Tokens != nil {
			u, err := a.Tokens.User(r.Context())
			if err != nil && !errors.Is(err, auth.ErrNoToken) {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			if !u.IsAdmin() {
				writeError(w, http.StatusForbidden, "admin session required")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

type adminOverview struct {
	Stats    predictions.AdminStats         `json:"stats"`
	Activity []predictions.AdminActivity    `json:"activity"`
	System   predictions.SystemStatus       `json:"system"`
	Users    predictions.UserManagementData `json:"users"`
}

// adminOverview busca os quatro blocos do painel em paralelo
func (a *API) adminOverview(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	var out adminOverview
	eg, ctx := errgroup.WithContext(r.Context())
	eg.Go(func() (err error) { out.Stats, err = a.Admin.GetAdminStats(ctx); return })
	eg.Go(func() (err error) { out.Activity, err = a.Admin.GetRecentActivity(ctx, limit); return })
	eg.Go(func() (err error) { out.System, err = a.Admin.GetSystemStatus(ctx); return })
	eg.Go(func() (err error) { out.Users, err = a.Admin.GetUserManagementData(ctx); return })
	if err := eg.Wait(); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) adminAction(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")
	var params map[string]any
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
	}
	var body any
	if params != nil {
		body = params
	}
	res, err := a.Admin.ExecuteAdminAction(r.Context(), action, body)
	if err != nil {
		a.Log.Warn("admin action failed", zap.String("action", action), zap.Error(err))
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// statusFor traduz erros do backend para o status repassado ao chamador
func statusFor(err error) int {
	switch transport.Kind(err) {
	case "timeout":
		return http.StatusGatewayTimeout
	case "http", "network", "parse":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
