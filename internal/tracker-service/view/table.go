package view

import (
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/radieske/high-roller-tracker-poc/internal/tracker-service/model"
	"github.com/radieske/high-roller-tracker-poc/internal/tracker-service/rates"
)

// Pagination descreve a página corrente da lista já filtrada.
// Mudar de página nunca dispara novo ciclo; apenas fatia a lista carregada.
type Pagination struct {
	Page       int // 1-indexado
	PageSize   int
	TotalBets  int
	TotalPages int
	PrevPage   int
	NextPage   int
	HasPrev    bool
	HasNext    bool
}

// Paginate calcula a paginação com a página pedida grampeada em [1, TotalPages]
func Paginate(totalBets, page, pageSize int) Pagination {
	totalPages := (totalBets + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalBets:  totalBets,
		TotalPages: totalPages,
		PrevPage:   page - 1,
		NextPage:   page + 1,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
}

// PageSlice devolve a fatia visível da lista
func PageSlice(bets []model.Bet, pg Pagination) []model.Bet {
	start := (pg.Page - 1) * pg.PageSize
	if start >= len(bets) {
		return nil
	}
	end := start + pg.PageSize
	if end > len(bets) {
		end = len(bets)
	}
	return bets[start:end]
}

// Row é uma linha pronta para renderização
type Row struct {
	BetID          string
	OriginalAmount string // valor + código da moeda em maiúsculas
	AmountUSD      string
	Status         string
	Active         bool
	Kind           string // "Single" ou "Multibet"
	Outcomes       []model.Outcome
}

// TablePage é o conteúdo completo do painel
type TablePage struct {
	Title      string
	Rows       []Row
	Pagination Pagination
	ErrorMsg   string // notificação transitória do último ciclo com falha
	Empty      bool
}

// BuildTablePage monta o painel a partir da lista filtrada completa
func BuildTablePage(bets []model.Bet, page, pageSize int, minUSD float64, errMsg string) TablePage {
	pg := Paginate(len(bets), page, pageSize)

	visible := PageSlice(bets, pg)
	rows := make([]Row, 0, len(visible))
	for _, b := range visible {
		status := b.Status
		if status == "" {
			status = "Unknown"
		}
		kind := "Single"
		if b.Multibet() {
			kind = "Multibet"
		}
		rows = append(rows, Row{
			BetID:          b.ID,
			OriginalAmount: strconv.FormatFloat(b.Amount, 'f', -1, 64) + " " + strings.ToUpper(b.Currency),
			AmountUSD:      rates.FormatUSD(rates.ConvertToUSD(b.Amount, b.Currency)),
			Status:         status,
			Active:         b.Active,
			Kind:           kind,
			Outcomes:       b.Outcomes,
		})
	}

	return TablePage{
		Title:      fmt.Sprintf("High Roller Confirmed Bets ($%.0f+ USD)", minUSD),
		Rows:       rows,
		Pagination: pg,
		ErrorMsg:   errMsg,
		Empty:      len(bets) == 0,
	}
}

var tableTmpl = template.Must(template.New("bets").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body{font-family:sans-serif;background:#0f1115;color:#e6e6e6;margin:2rem}
.panel{border:1px solid #2a2d35;border-radius:8px;padding:1.5rem;max-width:72rem;margin:auto}
table{width:100%;border-collapse:collapse}
th,td{text-align:left;padding:.5rem;border-bottom:1px solid #2a2d35}
.badge{padding:.1rem .5rem;border-radius:4px;background:#2a5b38}
.badge.inactive{background:#444}
.toast{background:#5b2a2a;padding:.5rem 1rem;border-radius:4px;margin-bottom:1rem}
.empty{text-align:center;color:#888;padding:1rem 0}
nav{display:flex;justify-content:center;gap:.5rem;margin-top:1rem}
nav a,nav span.btn{padding:.2rem .6rem;border:1px solid #2a2d35;border-radius:4px;color:inherit;text-decoration:none}
nav span.btn.disabled{opacity:.5}
.outcome small{color:#888}
</style>
</head>
<body>
<div class="panel">
<h1>{{.Title}}</h1>
{{if .ErrorMsg}}<div class="toast">Failed to fetch bets: {{.ErrorMsg}}</div>{{end}}
{{if .Empty}}
<p class="empty">No bets available</p>
{{else}}
<table>
<thead>
<tr><th>Bet ID</th><th>Amount (Original)</th><th>Amount (USD)</th><th>Status</th><th>Type</th><th>Details</th></tr>
</thead>
<tbody>
{{range .Rows}}
<tr>
<td><code>{{.BetID}}</code></td>
<td>{{.OriginalAmount}}</td>
<td>{{.AmountUSD}}</td>
<td><span class="badge{{if not .Active}} inactive{{end}}">{{.Status}}</span></td>
<td>{{.Kind}}</td>
<td>
{{range .Outcomes}}<div class="outcome"><b>{{.FixtureName}}</b> <small>({{.TournamentName}})</small> @{{.Odds}}</div>{{end}}
</td>
</tr>
{{end}}
</tbody>
</table>
<nav>
{{if .Pagination.HasPrev}}<a href="?page={{.Pagination.PrevPage}}">Previous</a>{{else}}<span class="btn disabled">Previous</span>{{end}}
<span>Page {{.Pagination.Page}} of {{.Pagination.TotalPages}}</span>
{{if .Pagination.HasNext}}<a href="?page={{.Pagination.NextPage}}">Next</a>{{else}}<span class="btn disabled">Next</span>{{end}}
</nav>
{{end}}
</div>
</body>
</html>
`))

// Render escreve o painel em HTML
func Render(w io.Writer, tp TablePage) error {
	return tableTmpl.Execute(w, tp)
}
