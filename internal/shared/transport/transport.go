package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const DefaultTimeout = 10 * time.Second

// Request descreve uma chamada ao backend. Body é serializado em JSON quando não nil.
type Request struct {
	Method   string
	URL      string
	Body     any
	Header   http.Header
	Timeout  time.Duration
	Endpoint string // label curto para métricas (ex: "unified.enhanced_bets")
}

// Response é a resposta já lida por completo dentro do prazo
type Response struct {
	Status     int
	StatusText string
	Header     http.Header
	Body       []byte
}

// OK indica status 2xx
func (r *Response) OK() bool { return r.Status >= 200 && r.Status < 300 }

// Err devolve *HTTPError para respostas fora de 2xx
func (r *Response) Err() error {
	if r.OK() {
		return nil
	}
	return &HTTPError{Status: r.Status, StatusText: r.StatusText, Body: r.Body}
}

// Decode interpreta o corpo como JSON
func (r *Response) Decode(url string, dst any) error {
	if err := json.Unmarshal(r.Body, dst); err != nil {
		return &ParseError{URL: url, Err: err}
	}
	return nil
}

// Transport aplica timeout por request, rate limit opcional e classificação de erros.
// Não faz retry: o poller é o mecanismo de nova tentativa.
type Transport struct {
	HTTP           *http.Client
	Limiter        *rate.Limiter
	DefaultTimeout time.Duration

	OnDone func(endpoint, outcome string, elapsed time.Duration) // métricas
}

// New cria um Transport com limite de rps (0 desativa o limiter)
func New(defaultTimeout time.Duration, requestsPerSec float64, burst int) *Transport {
	t := &Transport{
		HTTP:           &http.Client{},
		DefaultTimeout: defaultTimeout,
	}
	if requestsPerSec > 0 {
		if burst <= 0 {
			burst = 1
		}
		t.Limiter = rate.NewLimiter(rate.Limit(requestsPerSec), burst)
	}
	return t
}

// Do executa o request. Status não-2xx NÃO é erro aqui; quem chama decide via Response.Err.
func (t *Transport) Do(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := t.do(ctx, req)
	if t.OnDone != nil {
		outcome := Kind(err)
		if err == nil && !resp.OK() {
			outcome = "http"
		}
		t.OnDone(req.Endpoint, outcome, time.Since(start))
	}
	return resp, err
}

func (t *Transport) do(ctx context.Context, req Request) (*Response, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = t.DefaultTimeout
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// classifica o erro: prazo próprio vira TimeoutError, cancelamento do chamador passa adiante
	classify := func(err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(cctx.Err(), context.DeadlineExceeded) {
			return &TimeoutError{Method: method, URL: req.URL, Timeout: timeout}
		}
		return &NetworkError{Method: method, URL: req.URL, Err: err}
	}

	if t.Limiter != nil {
		if err := t.Limiter.Wait(cctx); err != nil {
			return nil, classify(err)
		}
	}

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	hreq, err := http.NewRequestWithContext(cctx, method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			hreq.Header.Add(k, v)
		}
	}
	if hreq.Header.Get("Content-Type") == "" {
		hreq.Header.Set("Content-Type", "application/json")
	}
	hreq.Header.Set("Accept", "application/json")
	if hreq.Header.Get("X-Request-ID") == "" {
		hreq.Header.Set("X-Request-ID", uuid.NewString())
	}

	client := t.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	hresp, err := client.Do(hreq)
	if err != nil {
		return nil, classify(err)
	}
	defer hresp.Body.Close()

	// o corpo também é lido dentro do prazo
	data, err := io.ReadAll(hresp.Body)
	if err != nil {
		return nil, classify(err)
	}

	return &Response{
		Status:     hresp.StatusCode,
		StatusText: statusText(hresp),
		Header:     hresp.Header,
		Body:       data,
	}, nil
}

func statusText(r *http.Response) string {
	// "500 Internal Server Error" -> "Internal Server Error"
	if _, rest, ok := strings.Cut(r.Status, " "); ok && rest != "" {
		return rest
	}
	return http.StatusText(r.StatusCode)
}
