// Package client fala com o backend de predições: endpoints unificados
// (/api/unified, timeout 10s) e API genérica (/api, timeout 30s).
package client

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/radieske/sports-insights-poc/internal/shared/transport"
)

// Doer é o contrato do transporte usado pelos clientes
type Doer interface {
	Do(ctx context.Context, req transport.Request) (*transport.Response, error)
}

type caller struct {
	doer    Doer
	base    string
	timeout time.Duration
}

func (c caller) url(path string) string {
	return strings.TrimRight(c.base, "/") + path
}

// raw executa e converte status não-2xx em *transport.HTTPError
func (c caller) raw(ctx context.Context, endpoint, method, url string, body any, header http.Header, timeout time.Duration) (*transport.Response, error) {
	if timeout <= 0 {
		timeout = c.timeout
	}
	resp, err := c.doer.Do(ctx, transport.Request{
		Method:   method,
		URL:      url,
		Body:     body,
		Header:   header,
		Timeout:  timeout,
		Endpoint: endpoint,
	})
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp, nil
}

// json executa e decodifica o corpo em dst
func (c caller) json(ctx context.Context, endpoint, method, url string, body any, header http.Header, dst any) error {
	resp, err := c.raw(ctx, endpoint, method, url, body, header, 0)
	if err != nil {
		return err
	}
	return resp.Decode(url, dst)
}
