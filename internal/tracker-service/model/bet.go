package model

import "strings"

// Outcome descreve uma perna de uma aposta (partida, torneio e odd)
type Outcome struct {
	Odds           float64 `json:"odds"`
	FixtureName    string  `json:"fixtureName"`
	TournamentName string  `json:"tournamentName"`
}

// Bet é o modelo interno de aposta vindo da API remota ou reconstruído do banco.
// Imutável após construção: nunca alterado, apenas substituído.
type Bet struct {
	ID       string    `json:"iid"`
	Active   bool      `json:"active"`
	Amount   float64   `json:"amount"`
	Currency string    `json:"currency"` // código minúsculo, ex: "btc"
	Status   string    `json:"status"`
	Outcomes []Outcome `json:"outcomes"`
}

// Multibet indica se a aposta tem mais de uma perna
func (b Bet) Multibet() bool { return len(b.Outcomes) > 1 }

// Confirmed indica se o status (case-insensitive) pertence ao conjunto
// de status exibíveis: confirmed ou confirmedpending
func (b Bet) Confirmed() bool {
	switch strings.ToLower(b.Status) {
	case "confirmed", "confirmedpending":
		return true
	}
	return false
}
