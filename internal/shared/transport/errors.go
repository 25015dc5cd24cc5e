package transport

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout é o sentinela para qualquer expiração de prazo do transporte
var ErrTimeout = errors.New("request timed out")

// TimeoutError: o prazo do request expirou antes da resposta completa
type TimeoutError struct {
	Method  string
	URL     string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s %s: timed out after %s", e.Method, e.URL, e.Timeout)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// NetworkError: a chamada falhou antes de existir resposta HTTP
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: network error: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError: resposta fora da faixa 2xx
type HTTPError struct {
	Status     int
	StatusText string
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.StatusText)
}

// ParseError: corpo não é JSON válido para o destino esperado
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse response from %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Kind classifica o erro para labels de métricas e logs
func Kind(err error) string {
	if err == nil {
		return "ok"
	}
	var (
		httpErr  *HTTPError
		netErr   *NetworkError
		parseErr *ParseError
	)
	switch {
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &httpErr):
		return "http"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &netErr):
		return "network"
	default:
		return "unknown"
	}
}

// IsUnreachable indica falha de rede ou timeout (backend fora do ar)
func IsUnreachable(err error) bool {
	var netErr *NetworkError
	return errors.Is(err, ErrTimeout) || errors.As(err, &netErr)
}
