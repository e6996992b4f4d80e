package main

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/high-roller-tracker-poc/internal/shared/config"
	"github.com/radieske/high-roller-tracker-poc/internal/shared/logger"
	"github.com/radieske/high-roller-tracker-poc/internal/shared/metrics"
)

// Catálogo de moedas simuladas com faixas de valor plausíveis
var currencyCatalog = []struct {
	code     string
	min, max float64
}{
	{"btc", 0.001, 0.5},
	{"eth", 0.05, 8},
	{"usdt", 50, 25000},
	{"ltc", 1, 300},
	{"doge", 1000, 80000},
	{"sol", 5, 120},
	{"zzz", 10, 100}, // moeda desconhecida de propósito: converte para 0 no tracker
}

var statusCatalog = []string{"Confirmed", "confirmedPending", "pending", "cancelled", "Confirmed"}

// Métricas Prometheus do simulador
var (
	gqlRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "simulator_graphql_requests_total",
		Help: "Requisições GraphQL recebidas",
	})
	gqlRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "simulator_graphql_rejected_total",
		Help: "Requisições recusadas por token inválido",
	})
	gqlErrorsInjected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "simulator_graphql_errors_injected_total",
		Help: "Respostas de erro injetadas para teste de falha",
	})
)

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type simBet struct {
	ID        string `json:"id"`
	Amount    string `json:"amount"` // a API real entrega valor como texto
	Currency  string `json:"currency"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

// gera número aleatório entre min e max
func rnd(min, max float64) float64 {
	return (rand.Float64() * (max - min)) + min
}

func randomBets(n int) []simBet {
	bets := make([]simBet, n)
	for i := range bets {
		c := currencyCatalog[rand.Intn(len(currencyCatalog))]
		bets[i] = simBet{
			ID:        "house:" + uuid.NewString(),
			Amount:    strconv.FormatFloat(rnd(c.min, c.max), 'f', 6, 64),
			Currency:  c.code,
			Status:    statusCatalog[rand.Intn(len(statusCatalog))],
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		}
	}
	return bets
}

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	prometheus.MustRegister(gqlRequests, gqlRejected, gqlErrorsInjected)

	mux := http.NewServeMux()
	mux.HandleFunc("/graphql", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		gqlRequests.Inc()

		// token estático; com STAKE_ACCESS_TOKEN vazio aceita qualquer cliente
		if cfg.StakeAccessToken != "" && r.Header.Get("x-access-token") != cfg.StakeAccessToken {
			gqlRejected.Inc()
			http.Error(w, `{"errors":[{"message":"invalid access token"}]}`, http.StatusUnauthorized)
			return
		}

		var req gqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		limit := 100
		if v, ok := req.Variables["limit"].(float64); ok && int(v) > 0 {
			limit = int(v)
		}
		if limit > 25 {
			limit = 25
		}

		w.Header().Set("Content-Type", "application/json")

		// 5% das respostas simulam falha da aplicação remota
		if rand.Intn(100) < 5 {
			gqlErrorsInjected.Inc()
			_ = json.NewEncoder(w).Encode(map[string]any{
				"errors": []map[string]string{{"message": "internal error (mock)"}},
			})
			return
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"bets": randomBets(limit)},
		})
	})

	metrics.StartMetricsServer(cfg.MetricsPort, func(context.Context) error { return nil })
	log.Info("metrics/health server starting", zap.String("port", cfg.MetricsPort))

	addr := ":" + cfg.HTTPPort
	log.Info("stake simulator running", zap.String("addr", addr), zap.String("paths", "/graphql"))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal("public server error", zap.Error(err))
	}
}
