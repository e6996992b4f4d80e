package stake

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/radieske/high-roller-tracker-poc/internal/tracker-service/model"
)

// Query GraphQL de apostas recentes. O endpoint não popula outcomes;
// lista vazia é resultado legítimo.
const recentBetsQuery = `
	query RecentBets($limit: Int!) {
		bets(limit: $limit, offset: 0) {
			id
			amount
			currency
			status
			createdAt
		}
	}
`

// Client consulta a API GraphQL da casa de apostas.
type Client struct {
	BaseURL     string
	AccessToken string
	HTTP        *http.Client
}

func New(baseURL, accessToken string) *Client {
	return &Client{
		BaseURL:     baseURL,
		AccessToken: accessToken,
		HTTP:        &http.Client{Timeout: 4 * time.Second},
	}
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type gqlError struct {
	Message string `json:"message"`
}

// rawBet é o formato do payload externo; amount chega como texto
type rawBet struct {
	ID        string `json:"id"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

type gqlResponse struct {
	Data *struct {
		Bets []rawBet `json:"bets"`
	} `json:"data"`
	Errors []gqlError `json:"errors"`
}

// RecentBets faz uma única requisição e devolve as apostas normalizadas.
// Sem retry: a cadência de polling do chamador é quem reexecuta.
func (c *Client) RecentBets(ctx context.Context, limit int) ([]model.Bet, error) {
	body, _ := json.Marshal(gqlRequest{
		Query:     recentBetsQuery,
		Variables: map[string]any{"limit": limit},
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, &IntegrationError{Message: "build request: " + err.Error(), Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-access-token", c.AccessToken)

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &IntegrationError{Message: "request failed: " + err.Error(), Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, &IntegrationError{
			StatusCode: res.StatusCode,
			Message:    strings.TrimSpace(string(detail)),
		}
	}

	var out gqlResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, &IntegrationError{StatusCode: res.StatusCode, Message: "decode response: " + err.Error(), Err: err}
	}

	if len(out.Errors) > 0 {
		return nil, &IntegrationError{StatusCode: res.StatusCode, Message: "graphql: " + out.Errors[0].Message}
	}
	if out.Data == nil {
		return nil, &IntegrationError{StatusCode: res.StatusCode, Message: "response has no data"}
	}

	bets := make([]model.Bet, 0, len(out.Data.Bets))
	for _, rb := range out.Data.Bets {
		b, err := normalize(rb)
		if err != nil {
			return nil, err
		}
		bets = append(bets, b)
	}
	return bets, nil
}

// normalize valida o payload externo na fronteira e monta o Bet interno.
// Campo ausente ou valor não numérico é erro de integração, não segue adiante.
func normalize(rb rawBet) (model.Bet, error) {
	if rb.ID == "" {
		return model.Bet{}, &IntegrationError{Message: "bet without id in payload"}
	}
	amount, err := strconv.ParseFloat(rb.Amount, 64)
	if err != nil {
		return model.Bet{}, &IntegrationError{
			Message: fmt.Sprintf("bet %s: invalid amount %q", rb.ID, rb.Amount),
			Err:     err,
		}
	}
	return model.Bet{
		ID:       rb.ID,
		Active:   true,
		Amount:   amount,
		Currency: strings.ToLower(rb.Currency),
		Status:   strings.ToLower(rb.Status),
		Outcomes: []model.Outcome{},
	}, nil
}
