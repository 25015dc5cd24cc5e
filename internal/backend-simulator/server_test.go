package simulator

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/radieske/sports-insights-poc/internal/insights/client"
	"github.com/radieske/sports-insights-poc/internal/insights/normalize"
	"github.com/radieske/sports-insights-poc/pkg/contracts/predictions"
)

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestProps_RotatesEnvelopeShapes(t *testing.T) {
	s := NewServer(zap.NewNop(), 1, 0)
	h := s.Router()

	seen := map[predictions.Shape]bool{}
	for i := 0; i < 3; i++ {
		rec := get(t, h, "/api/prizepicks/props?sport=NBA")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		b, _ := io.ReadAll(rec.Body)
		batch, err := client.DecodeBatch("/api/prizepicks/props", b)
		if err != nil {
			t.Fatalf("decode #%d: %v (%s)", i, err, b)
		}
		for _, r := range batch.Records {
			if r.String("sport") != "NBA" {
				t.Fatalf("sport filter not applied: %s", r.String("sport"))
			}
		}
		seen[batch.Shape] = true
	}
	if len(seen) < 2 {
		t.Fatalf("expected more than one envelope shape, got %v", seen)
	}
}

func TestEnhancedBets_NormalizesCleanly(t *testing.T) {
	s := NewServer(zap.NewNop(), 7, 0)
	rec := get(t, s.Router(), "/api/unified/enhanced-bets?min_confidence=80&max_results=3&include_portfolio_optimization=true")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	batch, err := client.DecodeBatch("/api/unified/enhanced-bets", rec.Body.Bytes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if batch.Shape != predictions.ShapeEnhanced {
		t.Fatalf("shape = %s", batch.Shape)
	}
	if len(batch.Records) > 3 {
		t.Fatalf("max_results ignored: %d", len(batch.Records))
	}
	if batch.PortfolioMetrics == nil {
		t.Fatalf("expected portfolio metrics")
	}
	for _, r := range normalize.NormalizeAll(batch.Records) {
		if r.Confidence < 80 {
			t.Fatalf("record below min_confidence: %+v", r)
		}
		if r.RiskAssessment.RiskLevel == "" {
			t.Fatalf("normalizer left risk level empty: %+v", r)
		}
	}
}

func TestChaos_AlwaysFails(t *testing.T) {
	s := NewServer(zap.NewNop(), 1, 1)
	h := s.Router()

	if rec := get(t, h, "/api/unified/enhanced-bets"); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected injected 500, got %d", rec.Code)
	}
	// health nunca falha
	if rec := get(t, h, "/api/unified/health"); rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
}

func TestAdmin_RequiresToken(t *testing.T) {
	s := NewServer(zap.NewNop(), 1, 0)
	s.AdminToken = "secret"
	h := s.Router()

	if rec := get(t, h, "/api/admin/stats"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/activity?limit=4", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var items []predictions.AdminActivity
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("len = %d", len(items))
	}
}

func TestAdminAction(t *testing.T) {
	s := NewServer(zap.NewNop(), 1, 0)
	h := s.Router()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/actions/refresh-cache", strings.NewReader(`{"scope":"all"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	if out["action"] != "refresh-cache" || out["job_id"] == "" {
		t.Fatalf("unexpected body: %v", out)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/actions/format-disk", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown action, got %d", rec.Code)
	}
}

func TestPortfolioAnalyze(t *testing.T) {
	s := NewServer(zap.NewNop(), 1, 0)
	body, _ := json.Marshal([]string{"a", "b"})
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/unified/portfolio/analyze?investment_amount=500", bytes.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var out predictions.PortfolioAnalysis
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.TotalInvestment != 500 || len(out.Allocations) != 2 {
		t.Fatalf("unexpected analysis: %+v", out)
	}
}

func TestLiveContext(t *testing.T) {
	s := NewServer(zap.NewNop(), 1, 0)
	h := s.Router()

	rec := get(t, h, "/api/unified/live-context/NFL_BUF_KC?include_betting_opportunities=true")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var out predictions.LiveGameContext
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.RelevantBets) != 3 || len(out.LiveOpportunities) != 1 {
		t.Fatalf("unexpected context: %d bets, %d opportunities", len(out.RelevantBets), len(out.LiveOpportunities))
	}

	if rec := get(t, h, "/api/unified/live-context/NOPE"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
