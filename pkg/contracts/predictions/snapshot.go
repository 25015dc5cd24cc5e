package predictions

import (
	"strings"
	"time"
)

// SportAll é o valor da UI para "todos os esportes"; nunca vai para a query
const SportAll = "ALL"

// Filters são os filtros de uma página
type Filters struct {
	Sport         string  `json:"sport" yaml:"sport" validate:"omitempty,max=32"`
	MinConfidence float64 `json:"min_confidence" yaml:"min_confidence" validate:"gte=0,lte=100"`
}

// SportParam converte o filtro de esporte para o parâmetro de query ("" = todos)
func (f Filters) SportParam() string {
	if strings.EqualFold(f.Sport, SportAll) {
		return ""
	}
	return f.Sport
}

// Match aplica o filtro no lado do cliente
func (f Filters) Match(r PredictionRecord) bool {
	if s := f.SportParam(); s != "" && !strings.EqualFold(r.Sport, s) {
		return false
	}
	return r.Confidence >= f.MinConfidence
}

// Snapshot é o estado publicado de uma página após cada refresh.
// Version cresce a cada lote aplicado.
type Snapshot struct {
	Page        string       `json:"page"`
	State       string       `json:"state"`
	Version     int64        `json:"version"`
	Filters     Filters      `json:"filters"`
	Result      *FetchResult `json:"result,omitempty"`
	Stacking    *Stacking    `json:"stacking,omitempty"`
	LastRefresh time.Time    `json:"last_refresh"`
	LastError   string       `json:"last_error,omitempty"`
}
