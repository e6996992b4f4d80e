package repo

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/radieske/high-roller-tracker-poc/internal/tracker-service/model"
)

// Postgres implementa a persistência de apostas high roller
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// Upsert insere ou sobrescreve o registro da aposta chaveado por bet_id.
// Utiliza ON CONFLICT para garantir atomicidade por bet_id; repetir o upsert
// com os mesmos dados produz o mesmo estado (idempotente).
// Retorna inserted=true somente quando a linha foi criada agora
// (xmax = 0 indica tupla nunca atualizada).
func (p *Postgres) Upsert(ctx context.Context, b model.Bet, amountUSD float64) (bool, error) {
	betData, err := json.Marshal(b)
	if err != nil {
		return false, &StorageError{Op: "upsert", Err: err}
	}

	var status any
	if b.Status != "" {
		status = b.Status
	}

	const q = `
		INSERT INTO high_roller_bets
		  (id, bet_id, amount, currency, status, bet_data)
		VALUES
		  ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (bet_id) DO UPDATE SET
		  amount   = EXCLUDED.amount,
		  currency = EXCLUDED.currency,
		  status   = EXCLUDED.status,
		  bet_data = EXCLUDED.bet_data
		RETURNING (xmax = 0)
	`
	var inserted bool
	err = p.db.QueryRowContext(ctx, q,
		uuid.NewString(), b.ID, amountUSD, b.Currency, status, betData,
	).Scan(&inserted)
	if err != nil {
		return false, &StorageError{Op: "upsert", Err: err}
	}
	return inserted, nil
}

// ListAll retorna as apostas embutidas em todos os registros,
// ordenadas da criação mais recente para a mais antiga
func (p *Postgres) ListAll(ctx context.Context) ([]model.Bet, error) {
	const q = `
		SELECT id, bet_id, amount, currency, status, bet_data, created_at
		FROM high_roller_bets
		ORDER BY created_at DESC
	`
	rows, err := p.db.QueryContext(ctx, q)
	if err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}
	defer rows.Close()

	var out []model.Bet
	for rows.Next() {
		var r HighRollerBet
		if err := rows.Scan(&r.ID, &r.BetID, &r.AmountUSD, &r.Currency, &r.Status, &r.BetData, &r.CreatedAt); err != nil {
			return nil, &StorageError{Op: "list", Err: err}
		}
		var b model.Bet
		if err := json.Unmarshal(r.BetData, &b); err != nil {
			return nil, &StorageError{Op: "list", Err: err}
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}
	return out, nil
}
