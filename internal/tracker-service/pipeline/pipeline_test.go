package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/radieske/high-roller-tracker-poc/internal/tracker-service/model"
	"github.com/radieske/high-roller-tracker-poc/pkg/contracts/events"
)

type fakeFetcher struct {
	bets []model.Bet
	err  error
}

func (f *fakeFetcher) RecentBets(ctx context.Context, limit int) ([]model.Bet, error) {
	return f.bets, f.err
}

type fakeStore struct {
	mu        sync.Mutex
	stored    []model.Bet
	upserted  []string
	seen      map[string]bool
	listErr   error
	upsertErr error
}

func (s *fakeStore) Upsert(ctx context.Context, b model.Bet, amountUSD float64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return false, s.upsertErr
	}
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	s.upserted = append(s.upserted, b.ID)
	inserted := !s.seen[b.ID]
	s.seen[b.ID] = true
	return inserted, nil
}

func (s *fakeStore) ListAll(ctx context.Context) ([]model.Bet, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.stored, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.HighRollerDetected
}

func (p *fakePublisher) PublishHighRollerDetected(ctx context.Context, e events.HighRollerDetected) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func newAggregator(f *fakeFetcher, s *fakeStore, p Publisher) *Aggregator {
	return &Aggregator{
		Log:          zap.NewNop(),
		Fetcher:      f,
		Store:        s,
		Publisher:    p,
		MinUSDAmount: 5000,
		FetchLimit:   100,
	}
}

func bet(id, currency string, amount float64, status string) model.Bet {
	return model.Bet{ID: id, Active: true, Amount: amount, Currency: currency, Status: status}
}

func TestRunCycle_FilterThresholdAndStatus(t *testing.T) {
	fetcher := &fakeFetcher{bets: []model.Bet{
		bet("A", "usd", 5000, "Confirmed"),    // limiar inclusivo, status case-insensitive
		bet("B", "usd", 4999.99, "confirmed"), // abaixo do limiar
		bet("C", "usd", 8000, "pending"),      // status fora do conjunto
		bet("D", "xyz", 999999, "confirmed"),  // moeda desconhecida -> USD 0
		bet("E", "usd", 6000, "confirmedpending"),
	}}
	agg := newAggregator(fetcher, &fakeStore{}, nil)

	shown, err := agg.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ids := idsOf(shown)
	want := []string{"A", "E"}
	if len(ids) != len(want) {
		t.Fatalf("shown = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("shown = %v, want %v", ids, want)
		}
	}
}

func TestRunCycle_StoredVersionWinsDedupe(t *testing.T) {
	// armazenadas entram depois das novas; o dedupe mantém a última
	// ocorrência, logo a versão do banco vence
	fetcher := &fakeFetcher{bets: []model.Bet{bet("A", "usd", 9000, "confirmed")}}
	store := &fakeStore{stored: []model.Bet{bet("A", "usd", 9000, "pending")}}
	agg := newAggregator(fetcher, store, nil)

	shown, err := agg.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// a versão armazenada tem status pending e fica fora da lista exibível
	if len(shown) != 0 {
		t.Errorf("shown = %v, want empty (stored pending version must win)", idsOf(shown))
	}
}

func TestDedupeKeepLast(t *testing.T) {
	in := []model.Bet{
		bet("A", "usd", 1, "confirmed"),
		bet("B", "usd", 2, "confirmed"),
		bet("A", "usd", 3, "pending"),
	}
	out := dedupeKeepLast(in)

	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	// posição da primeira ocorrência, valor da última
	if out[0].ID != "A" || out[0].Status != "pending" || out[0].Amount != 3 {
		t.Errorf("out[0] = %+v, want last occurrence of A in first position", out[0])
	}
	if out[1].ID != "B" {
		t.Errorf("out[1].ID = %s, want B", out[1].ID)
	}
}

func TestRunCycle_PersistsRegardlessOfStatus(t *testing.T) {
	// persistência considera só o valor; o filtro de exibição também exige
	// status confirmado. Assimetria intencional.
	fetcher := &fakeFetcher{bets: []model.Bet{
		bet("A", "usd", 6000, "cancelled"),
		bet("B", "usd", 100, "confirmed"),
	}}
	store := &fakeStore{}
	pub := &fakePublisher{}
	agg := newAggregator(fetcher, store, pub)

	shown, err := agg.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.upserted) != 1 || store.upserted[0] != "A" {
		t.Errorf("upserted = %v, want [A]", store.upserted)
	}
	if len(shown) != 0 {
		t.Errorf("shown = %v, want empty", idsOf(shown))
	}
	if len(pub.events) != 1 || pub.events[0].BetID != "A" {
		t.Errorf("events = %+v, want one for A", pub.events)
	}
}

func TestRunCycle_EventOnlyOnFirstInsert(t *testing.T) {
	fetcher := &fakeFetcher{bets: []model.Bet{bet("A", "usd", 6000, "confirmed")}}
	store := &fakeStore{}
	pub := &fakePublisher{}
	agg := newAggregator(fetcher, store, pub)

	for i := 0; i < 3; i++ {
		if _, err := agg.RunCycle(context.Background()); err != nil {
			t.Fatalf("cycle %d: %v", i, err)
		}
	}

	if len(store.upserted) != 3 {
		t.Errorf("upserts = %d, want 3 (um por ciclo)", len(store.upserted))
	}
	if len(pub.events) != 1 {
		t.Errorf("events = %d, want 1 (só na primeira inserção)", len(pub.events))
	}
}

func TestRunCycle_FetchFailureAbortsBeforePersist(t *testing.T) {
	fetchErr := errors.New("boom")
	fetcher := &fakeFetcher{err: fetchErr}
	store := &fakeStore{stored: []model.Bet{bet("A", "usd", 9000, "confirmed")}}
	agg := newAggregator(fetcher, store, nil)

	var stage string
	agg.OnError = func(s string) { stage = s }

	shown, err := agg.RunCycle(context.Background())
	if !errors.Is(err, fetchErr) {
		t.Fatalf("error = %v, want %v", err, fetchErr)
	}
	if shown != nil {
		t.Errorf("shown = %v, want nil (sem resultado parcial)", idsOf(shown))
	}
	if len(store.upserted) != 0 {
		t.Errorf("upserted = %v, want none", store.upserted)
	}
	if stage != "read" {
		t.Errorf("stage = %q, want read", stage)
	}
}

func TestRunCycle_StorageFailureAborts(t *testing.T) {
	listErr := errors.New("db down")
	fetcher := &fakeFetcher{bets: []model.Bet{bet("A", "usd", 9000, "confirmed")}}
	store := &fakeStore{listErr: listErr}
	agg := newAggregator(fetcher, store, nil)

	if _, err := agg.RunCycle(context.Background()); !errors.Is(err, listErr) {
		t.Fatalf("error = %v, want %v", err, listErr)
	}

	upsertErr := errors.New("conflict storm")
	store = &fakeStore{upsertErr: upsertErr}
	agg = newAggregator(fetcher, store, nil)

	if _, err := agg.RunCycle(context.Background()); !errors.Is(err, upsertErr) {
		t.Fatalf("error = %v, want %v", err, upsertErr)
	}
}

func TestRunCycle_Idempotent(t *testing.T) {
	fetcher := &fakeFetcher{bets: []model.Bet{
		bet("A", "usd", 6000, "confirmed"),
		bet("B", "btc", 0.2, "confirmed"), // 13200 USD
	}}
	store := &fakeStore{stored: []model.Bet{bet("C", "usd", 7000, "confirmedpending")}}
	agg := newAggregator(fetcher, store, nil)

	first, err := agg.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := agg.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, b := idsOf(first), idsOf(second)
	if len(a) != len(b) {
		t.Fatalf("first = %v, second = %v", a, b)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("first = %v, second = %v", a, b)
		}
	}
}

func TestRunCycle_MetricCallbacks(t *testing.T) {
	fetcher := &fakeFetcher{bets: []model.Bet{
		bet("A", "usd", 6000, "confirmed"),
		bet("B", "usd", 10, "confirmed"),
	}}
	agg := newAggregator(fetcher, &fakeStore{}, nil)

	var fetched, filtered, persisted int
	agg.OnFetched = func(n int) { fetched = n }
	agg.OnFiltered = func(n int) { filtered = n }
	agg.OnPersisted = func() { persisted++ }

	if _, err := agg.RunCycle(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetched != 2 || filtered != 1 || persisted != 1 {
		t.Errorf("fetched=%d filtered=%d persisted=%d, want 2/1/1", fetched, filtered, persisted)
	}
}

func idsOf(bets []model.Bet) []string {
	out := make([]string, len(bets))
	for i, b := range bets {
		out[i] = b.ID
	}
	return out
}
