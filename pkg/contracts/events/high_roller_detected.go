package events

// HighRollerDetected é publicado na primeira persistência de uma aposta
// cujo valor convertido em USD atinge o limiar configurado.
type HighRollerDetected struct {
	BetID     string  `json:"bet_id"`
	AmountUSD float64 `json:"amount_usd"`
	Currency  string  `json:"currency"`
	Status    string  `json:"status"`
	Multibet  bool    `json:"multibet"`
	TsUnixMs  int64   `json:"ts_unix_ms"`
}
