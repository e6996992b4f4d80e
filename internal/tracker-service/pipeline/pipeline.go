package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/radieske/high-roller-tracker-poc/internal/tracker-service/model"
	"github.com/radieske/high-roller-tracker-poc/internal/tracker-service/rates"
	"github.com/radieske/high-roller-tracker-poc/pkg/contracts/events"
)

// Fetcher busca apostas recentes na API remota
type Fetcher interface {
	RecentBets(ctx context.Context, limit int) ([]model.Bet, error)
}

// Store persiste e lista apostas high roller
type Store interface {
	Upsert(ctx context.Context, b model.Bet, amountUSD float64) (inserted bool, err error)
	ListAll(ctx context.Context) ([]model.Bet, error)
}

// Publisher publica eventos de detecção (opcional, best-effort)
type Publisher interface {
	PublishHighRollerDetected(ctx context.Context, e events.HighRollerDetected) error
}

// Aggregator executa um ciclo de agregação: busca concorrente (API + banco),
// persistência das apostas acima do limiar, dedupe e filtro de exibição.
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa.
type Aggregator struct {
	Log       *zap.Logger
	Fetcher   Fetcher
	Store     Store
	Publisher Publisher // pode ser nil

	MinUSDAmount float64
	FetchLimit   int

	OnFetched   func(int)    // métricas: apostas buscadas da API
	OnPersisted func()       // métricas: upsert concluído
	OnFiltered  func(int)    // métricas: tamanho da lista exibível
	OnError     func(string) // métricas por fase
}

// RunCycle executa um ciclo completo e retorna a lista exibível.
// Qualquer falha de busca ou persistência aborta o ciclo inteiro:
// nada parcial é retornado e o chamador mantém a lista anterior.
func (a *Aggregator) RunCycle(ctx context.Context) ([]model.Bet, error) {
	var fetched, stored []model.Bet

	// API remota e banco em paralelo; o ciclo espera os dois
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		fetched, err = a.Fetcher.RecentBets(gctx, a.FetchLimit)
		return err
	})
	g.Go(func() error {
		var err error
		stored, err = a.Store.ListAll(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		a.fail("read", err)
		return nil, err
	}

	if a.OnFetched != nil {
		a.OnFetched(len(fetched))
	}

	// Persiste toda aposta acima do limiar, independente do status.
	// O banco acumula tudo que já foi visto com valor alto; o filtro de
	// exibição abaixo ainda exige status confirmado. Assimetria intencional.
	for _, b := range fetched {
		usd := rates.ConvertToUSD(b.Amount, b.Currency)
		if usd < a.MinUSDAmount {
			continue
		}
		inserted, err := a.Store.Upsert(ctx, b, usd)
		if err != nil {
			a.fail("persist", err)
			return nil, err
		}
		if a.OnPersisted != nil {
			a.OnPersisted()
		}
		if inserted {
			a.publishDetected(ctx, b, usd)
		}
	}

	// Concatena novas + armazenadas e deduplica por id mantendo a ÚLTIMA
	// ocorrência. Como as armazenadas vêm depois, o registro do banco vence
	// sobre a versão recém-buscada de mesmo id. A ordem importa.
	all := append(append([]model.Bet{}, fetched...), stored...)
	unique := dedupeKeepLast(all)

	shown := make([]model.Bet, 0, len(unique))
	for _, b := range unique {
		if b.Confirmed() && rates.ConvertToUSD(b.Amount, b.Currency) >= a.MinUSDAmount {
			shown = append(shown, b)
		}
	}

	if a.OnFiltered != nil {
		a.OnFiltered(len(shown))
	}
	a.Log.Debug("aggregation cycle done",
		zap.Int("fetched", len(fetched)),
		zap.Int("stored", len(stored)),
		zap.Int("shown", len(shown)),
	)
	return shown, nil
}

// dedupeKeepLast remove ids duplicados mantendo a posição da primeira
// ocorrência e o valor da última
func dedupeKeepLast(bets []model.Bet) []model.Bet {
	seen := make(map[string]int, len(bets))
	out := make([]model.Bet, 0, len(bets))
	for _, b := range bets {
		if i, ok := seen[b.ID]; ok {
			out[i] = b
			continue
		}
		seen[b.ID] = len(out)
		out = append(out, b)
	}
	return out
}

// publishDetected emite o evento Kafka de detecção; falha só gera log,
// nunca aborta o ciclo
func (a *Aggregator) publishDetected(ctx context.Context, b model.Bet, usd float64) {
	if a.Publisher == nil {
		return
	}
	err := a.Publisher.PublishHighRollerDetected(ctx, events.HighRollerDetected{
		BetID:     b.ID,
		AmountUSD: usd,
		Currency:  b.Currency,
		Status:    b.Status,
		Multibet:  b.Multibet(),
		TsUnixMs:  time.Now().UnixMilli(),
	})
	if err != nil {
		a.Log.Warn("publish high_roller_detected failed",
			zap.String("bet_id", b.ID), zap.Error(err))
		if a.OnError != nil {
			a.OnError("publish")
		}
	}
}

func (a *Aggregator) fail(stage string, err error) {
	a.Log.Warn("aggregation cycle aborted", zap.String("stage", stage), zap.Error(err))
	if a.OnError != nil {
		a.OnError(stage)
	}
}
