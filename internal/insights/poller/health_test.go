package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/radieske/sports-insights-poc/pkg/contracts/predictions"
)

type MockHealth struct {
	GetScraperHealthFunc func(ctx context.Context) (predictions.ScraperHealth, error)
}

func (m *MockHealth) GetScraperHealth(ctx context.Context) (predictions.ScraperHealth, error) {
	return m.GetScraperHealthFunc(ctx)
}

func TestHealthRecordsFailure(t *testing.T) {
	var err error
	src := &MockHealth{GetScraperHealthFunc: func(context.Context) (predictions.ScraperHealth, error) {
		if err != nil {
			return predictions.ScraperHealth{}, err
		}
		return predictions.ScraperHealth{IsHealthy: true, CheckedAt: time.Now()}, nil
	}}
	h := NewHealth(src, time.Minute, nil)
	var changes []bool
	h.OnChange = func(s predictions.ScraperHealth) { changes = append(changes, s.IsHealthy) }

	h.Check(context.Background())
	if !h.Status().IsHealthy {
		t.Fatal("expected healthy")
	}

	err = errors.New("connection refused")
	h.Check(context.Background())
	st := h.Status()
	if st.IsHealthy || st.LastError != "connection refused" || st.CheckedAt.IsZero() {
		t.Fatalf("status = %+v", st)
	}
	h.Check(context.Background())
	if len(changes) != 2 {
		t.Errorf("OnChange calls = %v, want only transitions", changes)
	}
}
