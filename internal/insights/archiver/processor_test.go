package archiver

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/sports-insights-poc/internal/insights/publisher"
	"github.com/radieske/sports-insights-poc/pkg/contracts/predictions"
)

type MockStore struct {
	SaveFunc func(ctx context.Context, s predictions.Snapshot) error
	mu       sync.Mutex
	Saved    []predictions.Snapshot
}

func (m *MockStore) Save(ctx context.Context, s predictions.Snapshot) error {
	m.mu.Lock()
	m.Saved = append(m.Saved, s)
	m.mu.Unlock()
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, s)
	}
	return nil
}

type MockWriter struct {
	Msgs  []kafka.Message
	Err   error
	Fails int // falhas antes de aceitar
	Calls int
}

func (m *MockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	m.Calls++
	if m.Err != nil {
		return m.Err
	}
	if m.Calls <= m.Fails {
		return errors.New("leader not available")
	}
	m.Msgs = append(m.Msgs, msgs...)
	return nil
}

// MockReader entrega as mensagens em ordem e depois bloqueia até o cancelamento
type MockReader struct {
	msgs      chan kafka.Message
	mu        sync.Mutex
	Committed []kafka.Message
}

func newReader(msgs ...kafka.Message) *MockReader {
	r := &MockReader{msgs: make(chan kafka.Message, len(msgs))}
	for _, m := range msgs {
		r.msgs <- m
	}
	return r
}

func (r *MockReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-r.msgs:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *MockReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Committed = append(r.Committed, msgs...)
	return nil
}

func (r *MockReader) committed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Committed)
}

func batchMessage(t *testing.T, page string, version int64) kafka.Message {
	t.Helper()
	ev := publisher.BatchEvent{
		Page:        page,
		Version:     version,
		Source:      predictions.SourceLive,
		ReceivedAt:  time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		RecordCount: 1,
		Records:     []predictions.PredictionRecord{{ID: "p1", PlayerName: "LeBron James", Confidence: 80}},
	}
	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return kafka.Message{Topic: "prediction_batches", Key: []byte(page), Value: b}
}

func TestHandle_SavesSnapshot(t *testing.T) {
	store := &MockStore{}
	p := &Processor{Log: zap.NewNop(), Store: store}

	if err := p.Handle(context.Background(), batchMessage(t, "locked-bets", 3)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(store.Saved) != 1 {
		t.Fatalf("saved = %d", len(store.Saved))
	}
	s := store.Saved[0]
	if s.Page != "locked-bets" || s.Version != 3 || s.Result == nil || len(s.Result.Records) != 1 {
		t.Fatalf("unexpected snapshot: %+v", s)
	}
}

func TestHandle_InvalidMessageGoesToDLQ(t *testing.T) {
	dlq := &MockWriter{}
	var stages []string
	p := &Processor{
		Log:     zap.NewNop(),
		Store:   &MockStore{},
		DLQ:     dlq,
		OnError: func(s string) { stages = append(stages, s) },
	}

	if err := p.Handle(context.Background(), kafka.Message{Topic: "prediction_batches", Value: []byte("{oops")}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(dlq.Msgs) != 1 {
		t.Fatalf("dlq = %d", len(dlq.Msgs))
	}
	if h := dlq.Msgs[0].Headers; len(h) != 1 || string(h[0].Value) != "prediction_batches" {
		t.Fatalf("missing origin header: %+v", h)
	}
	if len(stages) != 1 || stages[0] != "decode" {
		t.Fatalf("stages = %v", stages)
	}
}

func TestHandle_RetriesThenDLQ(t *testing.T) {
	store := &MockStore{SaveFunc: func(context.Context, predictions.Snapshot) error {
		return errors.New("connection refused")
	}}
	dlq := &MockWriter{}
	dlqCount := 0
	p := &Processor{
		Log:        zap.NewNop(),
		Store:      store,
		DLQ:        dlq,
		MaxElapsed: 700 * time.Millisecond,
		OnDLQ:      func() { dlqCount++ },
	}

	if err := p.Handle(context.Background(), batchMessage(t, "enhanced-bets", 1)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(store.Saved) < 2 {
		t.Fatalf("expected retries, got %d attempts", len(store.Saved))
	}
	if len(dlq.Msgs) != 1 || dlqCount != 1 {
		t.Fatalf("dlq msgs = %d, count = %d", len(dlq.Msgs), dlqCount)
	}
}

func TestHandle_DLQFailureIsReported(t *testing.T) {
	p := &Processor{
		Log:        zap.NewNop(),
		Store:      &MockStore{},
		DLQ:        &MockWriter{Err: errors.New("broker down")},
		MaxElapsed: 100 * time.Millisecond,
	}
	if err := p.Handle(context.Background(), kafka.Message{Value: []byte(`{}`)}); err == nil {
		t.Fatalf("expected error when dlq rejects")
	}
}

func TestRun_CommitsAfterSave(t *testing.T) {
	reader := newReader(batchMessage(t, "best-bets", 1), batchMessage(t, "best-bets", 2))
	store := &MockStore{}
	p := &Processor{Log: zap.NewNop(), Reader: reader, Store: store}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for reader.committed() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("timeout waiting for commits")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("run = %v", err)
	}
}

func TestHandle_DLQRetriesTransientFailure(t *testing.T) {
	dlq := &MockWriter{Fails: 2}
	p := &Processor{Log: zap.NewNop(), Store: &MockStore{}, DLQ: dlq, MaxElapsed: 3 * time.Second}

	if err := p.Handle(context.Background(), kafka.Message{Value: []byte("{oops")}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if dlq.Calls != 3 || len(dlq.Msgs) != 1 {
		t.Fatalf("calls = %d, msgs = %d", dlq.Calls, len(dlq.Msgs))
	}
}

func TestRun_StopsWhenBatchCannotBeArchived(t *testing.T) {
	bad := batchMessage(t, "best-bets", 1)
	bad.Offset = 10
	good := batchMessage(t, "best-bets", 2)
	good.Offset = 11
	reader := newReader(bad, good)

	store := &MockStore{SaveFunc: func(_ context.Context, s predictions.Snapshot) error {
		if s.Version == 1 {
			return errors.New("connection refused")
		}
		return nil
	}}
	p := &Processor{
		Log:        zap.NewNop(),
		Reader:     reader,
		Store:      store,
		DLQ:        &MockWriter{Err: errors.New("broker down")},
		MaxElapsed: 100 * time.Millisecond,
	}

	done := make(chan error, 1)
	go func() { done <- p.Run(context.Background()) }()

	select {
	case err := <-done:
		if err == nil || errors.Is(err, context.Canceled) {
			t.Fatalf("expected archive error, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop on unarchivable batch")
	}
	if n := reader.committed(); n != 0 {
		t.Fatalf("committed %d messages past the failed offset", n)
	}
	for _, s := range store.Saved {
		if s.Version == 2 {
			t.Fatal("message after the failed offset was processed")
		}
	}
}
