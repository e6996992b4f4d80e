package pubsub

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/high-roller-tracker-poc/internal/tracker-service/model"
)

// Broadcaster publica avisos de atualização no canal Pub/Sub e mantém o
// último snapshot da lista exibível em cache para warm start do serviço.
type Broadcaster struct {
	R           *redis.Client
	Channel     string
	SnapshotKey string
	TTL         time.Duration
}

func New(r *redis.Client, channel, snapshotKey string, ttl time.Duration) *Broadcaster {
	return &Broadcaster{R: r, Channel: channel, SnapshotKey: snapshotKey, TTL: ttl}
}

// Publish envia o payload para o canal de broadcast
func (b *Broadcaster) Publish(ctx context.Context, payload []byte) error {
	return b.R.Publish(ctx, b.Channel, payload).Err()
}

// CacheSnapshot guarda a lista exibível com TTL
func (b *Broadcaster) CacheSnapshot(ctx context.Context, bets []model.Bet) error {
	raw, err := json.Marshal(bets)
	if err != nil {
		return err
	}
	return b.R.Set(ctx, b.SnapshotKey, raw, b.TTL).Err()
}

// LoadSnapshot recupera o último snapshot, se ainda existir
func (b *Broadcaster) LoadSnapshot(ctx context.Context) ([]model.Bet, bool, error) {
	raw, err := b.R.Get(ctx, b.SnapshotKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var bets []model.Bet
	if err := json.Unmarshal(raw, &bets); err != nil {
		return nil, false, err
	}
	return bets, true, nil
}
