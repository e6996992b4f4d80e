package dto

import (
	"time"

	"github.com/radieske/high-roller-tracker-poc/internal/tracker-service/model"
)

// BetView é uma aposta pronta para exibição na API JSON
type BetView struct {
	BetID     string          `json:"betId"`
	Amount    float64         `json:"amount"`
	Currency  string          `json:"currency"`
	AmountUSD float64         `json:"amountUsd"`
	Status    string          `json:"status"`
	Active    bool            `json:"active"`
	Multibet  bool            `json:"multibet"`
	Outcomes  []model.Outcome `json:"outcomes"`
}

// ListBetsResponse é a página corrente da lista filtrada
type ListBetsResponse struct {
	Bets       []BetView `json:"bets"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	Total      int       `json:"total"`
	TotalPages int       `json:"totalPages"`
	State      string    `json:"state"`
	UpdatedAt  time.Time `json:"updatedAt"`
	Error      string    `json:"error,omitempty"`
}
