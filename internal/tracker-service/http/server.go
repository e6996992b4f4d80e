package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/high-roller-tracker-poc/internal/tracker-service/dto"
	"github.com/radieske/high-roller-tracker-poc/internal/tracker-service/poller"
	"github.com/radieske/high-roller-tracker-poc/internal/tracker-service/rates"
	"github.com/radieske/high-roller-tracker-poc/internal/tracker-service/view"
	"github.com/radieske/high-roller-tracker-poc/internal/tracker-service/ws"
)

type Server struct {
	Log          *zap.Logger
	Poller       *poller.Poller
	Hub          *ws.Hub
	PageSize     int
	MinUSDAmount float64
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/", s.indexPage)
	r.Get("/v1/bets", s.listBets)
	r.Get("/ws", s.Hub.HandleWS)
	return r
}

// pageParam lê ?page=N; valores ausentes ou inválidos caem na página 1
func pageParam(r *http.Request) int {
	p, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || p < 1 {
		return 1
	}
	return p
}

const loadingHTML = `<!doctype html><html><head><meta http-equiv="refresh" content="2"></head>` +
	`<body><p style="font-family:sans-serif;text-align:center;margin-top:4rem">Loading…</p></body></html>`

func (s *Server) indexPage(w http.ResponseWriter, r *http.Request) {
	snap := s.Poller.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	// antes do primeiro ciclo concluído, só o loader
	if snap.State == poller.StateLoading && len(snap.Bets) == 0 {
		_, _ = w.Write([]byte(loadingHTML))
		return
	}

	errMsg := ""
	if snap.LastErr != nil {
		errMsg = snap.LastErr.Error()
	}
	tp := view.BuildTablePage(snap.Bets, pageParam(r), s.PageSize, s.MinUSDAmount, errMsg)
	if err := view.Render(w, tp); err != nil {
		s.Log.Warn("render failed", zap.Error(err))
	}
}

func (s *Server) listBets(w http.ResponseWriter, r *http.Request) {
	snap := s.Poller.Snapshot()

	pg := view.Paginate(len(snap.Bets), pageParam(r), s.PageSize)
	visible := view.PageSlice(snap.Bets, pg)

	bets := make([]dto.BetView, 0, len(visible))
	for _, b := range visible {
		bets = append(bets, dto.BetView{
			BetID:     b.ID,
			Amount:    b.Amount,
			Currency:  b.Currency,
			AmountUSD: rates.ConvertToUSD(b.Amount, b.Currency),
			Status:    b.Status,
			Active:    b.Active,
			Multibet:  b.Multibet(),
			Outcomes:  b.Outcomes,
		})
	}

	resp := dto.ListBetsResponse{
		Bets:       bets,
		Page:       pg.Page,
		PageSize:   pg.PageSize,
		Total:      pg.TotalBets,
		TotalPages: pg.TotalPages,
		State:      string(snap.State),
		UpdatedAt:  snap.UpdatedAt,
	}
	if snap.LastErr != nil {
		resp.Error = snap.LastErr.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
