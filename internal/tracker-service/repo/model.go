package repo

import (
	"database/sql"
	"time"
)

// HighRollerBet é a linha persistida na tabela high_roller_bets.
// bet_id é único; o registro é criado na primeira observação e
// sobrescrito via upsert nas seguintes. Nunca é removido por este serviço.
type HighRollerBet struct {
	ID        string
	BetID     string
	AmountUSD float64
	Currency  string
	Status    sql.NullString
	BetData   []byte // Bet completo serializado em JSON
	CreatedAt time.Time
}
