package predictions

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// RawRecord guarda o objeto heterogêneo recebido do backend (ou sintetizado
// pelo fallback). Campo ausente e campo null são indistinguíveis para o normalizador.
type RawRecord map[string]json.RawMessage

// RawFrom monta um RawRecord a partir de valores Go (usado pelo fallback e nos testes)
func RawFrom(fields map[string]any) RawRecord {
	r := make(RawRecord, len(fields))
	for k, v := range fields {
		b, err := json.Marshal(v)
		if err != nil {
			continue
		}
		r[k] = b
	}
	return r
}

func isNull(b json.RawMessage) bool {
	return len(b) == 0 || bytes.Equal(bytes.TrimSpace(b), []byte("null"))
}

// Has indica se o campo existe e não é null
func (r RawRecord) Has(key string) bool {
	b, ok := r[key]
	return ok && !isNull(b)
}

// Float aceita número JSON nativo ou string numérica ("28.5")
func (r RawRecord) Float(key string) (float64, bool) {
	b, ok := r[key]
	if !ok || isNull(b) {
		return 0, false
	}
	return parseNumber(b)
}

func (r RawRecord) String(key string) string {
	b, ok := r[key]
	if !ok || isNull(b) {
		return ""
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return s
	}
	// números como id (ex: 123) viram texto
	return strings.TrimSpace(string(b))
}

// Object retorna um sub-objeto, se presente
func (r RawRecord) Object(key string) (RawRecord, bool) {
	b, ok := r[key]
	if !ok || isNull(b) {
		return nil, false
	}
	var sub RawRecord
	if err := json.Unmarshal(b, &sub); err != nil {
		return nil, false
	}
	return sub, true
}

// Decode decodifica um campo em dst; retorna false se ausente ou inválido
func (r RawRecord) Decode(key string, dst any) bool {
	b, ok := r[key]
	if !ok || isNull(b) {
		return false
	}
	return json.Unmarshal(b, dst) == nil
}

// parseNumber aceita só valores finitos; "NaN" e "Inf" em string contam como ausentes
func parseNumber(b json.RawMessage) (float64, bool) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return 0, false
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil || strings.TrimSpace(s) == "" {
			return 0, false
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	}
	var n float64
	if err := json.Unmarshal(b, &n); err != nil {
		return 0, false
	}
	return n, true
}
