package ws

import "time"

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: ping (o hub envia atualizações para todos os conectados)
type ClientMsg struct {
	Type string `json:"type"`
}

// SnapshotUpdate avisa os clientes que a lista exibível mudou;
// o cliente rebusca a página via HTTP
type SnapshotUpdate struct {
	Total     int       `json:"total"`
	UpdatedAt time.Time `json:"updatedAt"`
}
