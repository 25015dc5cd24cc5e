package ws

// ClientMsg é a mensagem recebida do cliente WebSocket
type ClientMsg struct {
	Type string `json:"type"` // subscribe | unsubscribe | ping
	Page string `json:"page"` // requerido em subscribe/unsubscribe
}
