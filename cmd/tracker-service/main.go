package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/high-roller-tracker-poc/internal/shared/cache"
	"github.com/radieske/high-roller-tracker-poc/internal/shared/config"
	"github.com/radieske/high-roller-tracker-poc/internal/shared/db"
	"github.com/radieske/high-roller-tracker-poc/internal/shared/kafka"
	"github.com/radieske/high-roller-tracker-poc/internal/shared/logger"
	"github.com/radieske/high-roller-tracker-poc/internal/shared/metrics"
	httpapi "github.com/radieske/high-roller-tracker-poc/internal/tracker-service/http"
	"github.com/radieske/high-roller-tracker-poc/internal/tracker-service/pipeline"
	"github.com/radieske/high-roller-tracker-poc/internal/tracker-service/poller"
	"github.com/radieske/high-roller-tracker-poc/internal/tracker-service/producer"
	"github.com/radieske/high-roller-tracker-poc/internal/tracker-service/pubsub"
	"github.com/radieske/high-roller-tracker-poc/internal/tracker-service/repo"
	"github.com/radieske/high-roller-tracker-poc/internal/tracker-service/stake"
	"github.com/radieske/high-roller-tracker-poc/internal/tracker-service/ws"
)

// Métricas Prometheus do ciclo de agregação
var (
	betsFetched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tracker_bets_fetched_total",
		Help: "Apostas buscadas da API remota",
	})
	betsPersisted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tracker_bets_persisted_total",
		Help: "Upserts de apostas high roller",
	})
	betsDisplayed = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tracker_bets_displayed",
		Help: "Tamanho da lista exibível após o filtro",
	})
	cyclesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tracker_cycles_total",
		Help: "Ciclos de agregação concluídos com sucesso",
	})
	cycleErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_cycle_errors_total",
		Help: "Falhas de ciclo por fase",
	}, []string{"stage"})
	wsClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tracker_ws_connections",
		Help: "Clientes WebSocket conectados",
	})
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service",
		zap.String("service", cfg.ServiceName),
		zap.String("env", cfg.Env),
		zap.Float64("min_usd_amount", cfg.MinUSDAmount),
		zap.Duration("poll_interval", cfg.PollInterval),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// conecta com db Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	log.Info("postgres connected")

	// conecta com cache Redis
	redisClient, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("redis connected")

	// writer Kafka para eventos high_roller_detected
	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicHighRollerDetected)
	defer writer.Close()
	log.Info("kafka writer ready", zap.String("topic", cfg.TopicHighRollerDetected))

	prometheus.MustRegister(betsFetched, betsPersisted, betsDisplayed, cyclesTotal, cycleErrors, wsClients)

	agg := &pipeline.Aggregator{
		Log:          log,
		Fetcher:      stake.New(cfg.StakeAPIURL, cfg.StakeAccessToken),
		Store:        repo.NewPostgres(pg),
		Publisher:    producer.NewKafkaPublisher(writer),
		MinUSDAmount: cfg.MinUSDAmount,
		FetchLimit:   cfg.FetchLimit,

		OnFetched:   func(n int) { betsFetched.Add(float64(n)) },
		OnPersisted: func() { betsPersisted.Inc() },
		OnFiltered:  func(n int) { betsDisplayed.Set(float64(n)) },
		OnError:     func(stage string) { cycleErrors.WithLabelValues(stage).Inc() },
	}

	p := poller.New(log, agg, cfg.PollInterval)

	bc := pubsub.New(redisClient, cfg.RedisPubSubChannel, cfg.RedisSnapshotKey, 10*time.Minute)

	// warm start: reaproveita o último snapshot cacheado enquanto
	// o primeiro ciclo real não termina
	if bets, ok, err := bc.LoadSnapshot(ctx); err != nil {
		log.Warn("snapshot warm start failed", zap.Error(err))
	} else if ok {
		p.Seed(bets)
		log.Info("snapshot warm start", zap.Int("bets", len(bets)))
	}

	hub := ws.NewHub(func(r *http.Request) bool { return true })
	ws.StartRedisSubscriber(ctx, log, redisClient, cfg.RedisPubSubChannel, hub)

	// cada ciclo bem-sucedido atualiza cache e avisa os clientes WS via Redis
	p.OnUpdate = func(s poller.Snapshot) {
		cyclesTotal.Inc()
		wsClients.Set(float64(hub.Count()))

		octx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := bc.CacheSnapshot(octx, s.Bets); err != nil {
			log.Warn("cache snapshot failed", zap.Error(err))
		}
		payload, _ := json.Marshal(ws.SnapshotUpdate{Total: len(s.Bets), UpdatedAt: s.UpdatedAt})
		if err := bc.Publish(octx, payload); err != nil {
			log.Warn("publish snapshot update failed", zap.Error(err))
		}
	}

	p.Start(ctx)

	// servidor de métricas e health
	metrics.StartMetricsServer(cfg.MetricsPort, func(hctx context.Context) error {
		if err := pg.PingContext(hctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		if err := redisClient.Ping(hctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})
	log.Info("metrics/health server starting", zap.String("port", cfg.MetricsPort))

	api := &httpapi.Server{
		Log:          log,
		Poller:       p,
		Hub:          hub,
		PageSize:     cfg.PageSize,
		MinUSDAmount: cfg.MinUSDAmount,
	}
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: api.Router(),
	}

	go func() {
		log.Info("public server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("public server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(sctx)
	if err := p.Stop(sctx); err != nil {
		log.Warn("poller stop timed out", zap.Error(err))
	}
}
