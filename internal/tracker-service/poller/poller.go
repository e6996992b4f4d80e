package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/high-roller-tracker-poc/internal/tracker-service/model"
	"github.com/radieske/high-roller-tracker-poc/internal/tracker-service/pipeline"
)

// State é o estado da visualização
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
)

// Snapshot é o resultado do último ciclo bem-sucedido mais o erro
// transitório do último ciclo, se houver
type Snapshot struct {
	Bets      []model.Bet
	State     State
	LastErr   error
	UpdatedAt time.Time
}

// Poller dispara o ciclo de agregação imediatamente no Start e depois em
// intervalo fixo. Falha de ciclo preserva a lista anterior; o próximo tick
// tenta de novo. Nenhum erro derruba o processo.
type Poller struct {
	log      *zap.Logger
	agg      *pipeline.Aggregator
	interval time.Duration

	// OnUpdate recebe cada snapshot bem-sucedido (broadcast/cache); opcional
	OnUpdate func(Snapshot)

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running atomic.Bool // guarda de reentrância entre ticks

	mu   sync.RWMutex
	snap Snapshot
}

func New(log *zap.Logger, agg *pipeline.Aggregator, interval time.Duration) *Poller {
	return &Poller{
		log:      log,
		agg:      agg,
		interval: interval,
		snap:     Snapshot{State: StateLoading},
	}
}

// Seed pré-carrega a lista exibível (ex: snapshot do cache) sem sair do
// estado Loading; o primeiro ciclo real é quem promove para Ready
func (p *Poller) Seed(bets []model.Bet) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.snap.State == StateLoading && len(p.snap.Bets) == 0 {
		p.snap.Bets = bets
	}
}

// Start roda um ciclo imediato e agenda a repetição
func (p *Poller) Start(ctx context.Context) {
	// o cancel do Stop derruba só o loop do timer; os ciclos recebem o
	// contexto original para que um ciclo em andamento termine
	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.run(loopCtx, ctx)

	p.log.Info("poller started", zap.Duration("interval", p.interval))
}

// Stop cancela o timer e espera o loop encerrar. Um ciclo em andamento
// termina e aplica seu resultado; a escrita é substituição idempotente.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.log.Info("poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Poller) run(loopCtx, cycleCtx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.runOnce(cycleCtx)

	for {
		select {
		case <-loopCtx.Done():
			return
		case <-ticker.C:
			p.runOnce(cycleCtx)
		}
	}
}

// runOnce executa um ciclo, pulando o tick se o anterior ainda roda
// (evita upserts concorrentes no mesmo bet_id com rede lenta)
func (p *Poller) runOnce(ctx context.Context) {
	if !p.running.CompareAndSwap(false, true) {
		p.log.Warn("previous cycle still running, skipping tick")
		return
	}
	defer p.running.Store(false)

	bets, err := p.agg.RunCycle(ctx)

	p.mu.Lock()
	if err != nil {
		// mantém a lista anterior; o erro vira notificação transitória.
		// A primeira carga conta como concluída mesmo falhando: a página
		// sai do loader e mostra a notificação sobre a tabela (vazia)
		p.snap.LastErr = err
		if p.snap.State == StateLoading {
			p.snap.State = StateReady
		}
		p.mu.Unlock()
		return
	}
	p.snap = Snapshot{
		Bets:      bets,
		State:     StateReady,
		UpdatedAt: time.Now().UTC(),
	}
	snap := p.snap
	p.mu.Unlock()

	if p.OnUpdate != nil {
		p.OnUpdate(snap)
	}
}

// Snapshot retorna o estado atual da visualização
func (p *Poller) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snap
}
