package fanout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/radieske/sports-insights-poc/pkg/contracts/predictions"
)

type MockSink struct {
	name     string
	SaveFunc func(ctx context.Context, s predictions.Snapshot) error

	mu   sync.Mutex
	seen []int64
}

func (m *MockSink) Name() string { return m.name }

func (m *MockSink) Save(ctx context.Context, s predictions.Snapshot) error {
	m.mu.Lock()
	m.seen = append(m.seen, s.Version)
	m.mu.Unlock()
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, s)
	}
	return nil
}

func (m *MockSink) versions() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.seen...)
}

func TestFanoutDeliversInOrderDespiteFailures(t *testing.T) {
	failing := &MockSink{name: "kafka", SaveFunc: func(context.Context, predictions.Snapshot) error {
		return errors.New("broker down")
	}}
	ok := &MockSink{name: "redis_cache"}

	f := New(nil, 8, failing, ok)
	var mu sync.Mutex
	var errs []string
	f.OnError = func(s string) { mu.Lock(); errs = append(errs, s); mu.Unlock() }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = f.Run(ctx) }()

	for v := int64(1); v <= 3; v++ {
		f.Publish(predictions.Snapshot{Page: "best-bets", Version: v})
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(ok.versions()) < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("delivered %v", ok.versions())
		}
		time.Sleep(2 * time.Millisecond)
	}
	got := ok.versions()
	if got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("order = %v", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(errs) != 3 || errs[0] != "kafka" {
		t.Errorf("errors = %v", errs)
	}
}

func TestFanoutDropsWhenFull(t *testing.T) {
	f := New(nil, 1)
	dropped := 0
	f.OnDropped = func() { dropped++ }

	f.Publish(predictions.Snapshot{Version: 1})
	f.Publish(predictions.Snapshot{Version: 2})
	if dropped != 1 {
		t.Fatalf("dropped = %d, want 1", dropped)
	}
}

func TestFanoutSinkTimeout(t *testing.T) {
	slow := &MockSink{name: "postgres", SaveFunc: func(ctx context.Context, _ predictions.Snapshot) error {
		<-ctx.Done()
		return ctx.Err()
	}}
	f := New(nil, 1, slow)
	f.SinkTimeout = 20 * time.Millisecond
	failed := make(chan string, 1)
	f.OnError = func(s string) { failed <- s }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = f.Run(ctx) }()
	f.Publish(predictions.Snapshot{Version: 1})

	select {
	case s := <-failed:
		if s != "postgres" {
			t.Errorf("sink = %s", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("sink timeout not enforced")
	}
}
