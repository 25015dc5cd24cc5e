package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/sports-insights-poc/internal/insights/fallback"
	"github.com/radieske/sports-insights-poc/internal/shared/auth"
	"github.com/radieske/sports-insights-poc/pkg/contracts/predictions"
)

const DefaultAPITimeout = 30 * time.Second

// API cobre /api/prizepicks/* e /api/admin/*. Erros são propagados ao chamador,
// exceto nas leituras do admin, que caem nos mocks do gerador.
type API struct {
	c        caller
	tokens   auth.Store
	fallback *fallback.Generator
	log      *zap.Logger
	now      func() time.Time
}

// NewAPI recebe a URL base do backend (sem /api). tokens pode ser nil.
func NewAPI(doer Doer, apiBase string, timeout time.Duration, tokens auth.Store, gen *fallback.Generator, log *zap.Logger) *API {
	if timeout <= 0 {
		timeout = DefaultAPITimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &API{
		c:        caller{doer: doer, base: apiBase + "/api", timeout: timeout},
		tokens:   tokens,
		fallback: gen,
		log:      log,
		now:      time.Now,
	}
}

// GetProps busca /prizepicks/props. timeout > 0 sobrescreve o default do cliente.
func (a *API) GetProps(ctx context.Context, q PropsQuery, timeout time.Duration) (predictions.RawBatch, error) {
	v, err := q.Values()
	if err != nil {
		return predictions.RawBatch{}, err
	}
	url := withQuery(a.c.url("/prizepicks/props"), v)
	resp, err := a.c.raw(ctx, "prizepicks.props", http.MethodGet, url, nil, nil, timeout)
	if err != nil {
		return predictions.RawBatch{}, err
	}
	return DecodeBatch(url, resp.Body)
}

func (a *API) GetScraperHealth(ctx context.Context) (predictions.ScraperHealth, error) {
	var out predictions.ScraperHealth
	err := a.c.json(ctx, "prizepicks.health", http.MethodGet, a.c.url("/prizepicks/health"), nil, nil, &out)
	if err != nil {
		return predictions.ScraperHealth{}, err
	}
	out.CheckedAt = a.now().UTC()
	return out, nil
}

// Admin

func (a *API) authHeader(ctx context.Context) (http.Header, error) {
	return auth.BearerHeader(ctx, a.tokens)
}

func (a *API) adminGet(ctx context.Context, endpoint, path string, dst any) error {
	h, err := a.authHeader(ctx)
	if err != nil {
		return err
	}
	return a.c.json(ctx, endpoint, http.MethodGet, a.c.url(path), nil, h, dst)
}

// mockable indica se o erro deve cair no mock (nunca em cancelamento do chamador)
func (a *API) mockable(ctx context.Context, what string, err error) bool {
	if err == nil || a.fallback == nil || ctx.Err() != nil {
		return false
	}
	a.log.Warn("admin API unavailable, using mock data", zap.String("call", what), zap.Error(err))
	return true
}

func (a *API) GetAdminStats(ctx context.Context) (predictions.AdminStats, error) {
	var out predictions.AdminStats
	err := a.adminGet(ctx, "admin.stats", "/admin/stats", &out)
	if a.mockable(ctx, "stats", err) {
		return a.fallback.AdminStats(), nil
	}
	return out, err
}

// GetRecentActivity: limit <= 0 usa 10
func (a *API) GetRecentActivity(ctx context.Context, limit int) ([]predictions.AdminActivity, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []predictions.AdminActivity
	v := url.Values{}
	v.Set("limit", strconv.Itoa(limit))
	err := a.adminGet(ctx, "admin.activity", withQuery("/admin/activity", v), &out)
	if a.mockable(ctx, "activity", err) {
		return a.fallback.RecentActivity(limit), nil
	}
	return out, err
}

func (a *API) GetSystemStatus(ctx context.Context) (predictions.SystemStatus, error) {
	var out predictions.SystemStatus
	err := a.adminGet(ctx, "admin.system_status", "/admin/system/status", &out)
	if a.mockable(ctx, "system_status", err) {
		return a.fallback.SystemStatus(), nil
	}
	return out, err
}

func (a *API) GetUserManagementData(ctx context.Context) (predictions.UserManagementData, error) {
	var out predictions.UserManagementData
	err := a.adminGet(ctx, "admin.users_stats", "/admin/users/stats", &out)
	if a.mockable(ctx, "users_stats", err) {
		return a.fallback.UserManagementData(), nil
	}
	return out, err
}

// ExecuteAdminAction não tem mock: o erro sempre volta ao chamador
func (a *API) ExecuteAdminAction(ctx context.Context, action string, params any) (map[string]any, error) {
	h, err := a.authHeader(ctx)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	err = a.c.json(ctx, "admin.action", http.MethodPost, a.c.url("/admin/actions/"+url.PathEscape(action)), params, h, &out)
	return out, err
}
