package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collectors agrupa as métricas do pipeline de predições
type Collectors struct {
	Requests        *prometheus.CounterVec   // endpoint, outcome
	RequestDuration *prometheus.HistogramVec // endpoint
	Refreshes       *prometheus.CounterVec   // page, result (live | fallback | error)
	Fallbacks       *prometheus.CounterVec   // page
	DroppedTicks    *prometheus.CounterVec   // page
	BatchSize       *prometheus.GaugeVec     // page
	SinkErrors      *prometheus.CounterVec   // sink
	WSConnections   prometheus.Gauge
}

// NewCollectors cria e registra as métricas no registerer informado
func NewCollectors(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "insights_backend_requests_total",
			Help: "Requests ao backend de predições por endpoint e resultado",
		}, []string{"endpoint", "outcome"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "insights_backend_request_duration_seconds",
			Help:    "Latência dos requests ao backend",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"endpoint"}),
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "insights_page_refreshes_total",
			Help: "Ciclos de refresh por página e resultado",
		}, []string{"page", "result"}),
		Fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "insights_fallback_batches_total",
			Help: "Lotes sintetizados pelo fallback",
		}, []string{"page"}),
		DroppedTicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "insights_poll_dropped_ticks_total",
			Help: "Ticks descartados porque a página ainda estava buscando",
		}, []string{"page"}),
		BatchSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "insights_page_batch_size",
			Help: "Quantidade de registros no lote corrente",
		}, []string{"page"}),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "insights_sink_errors_total",
			Help: "Falhas ao publicar snapshots (redis, kafka, postgres)",
		}, []string{"sink"}),
		WSConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "insights_ws_connections",
			Help: "Clientes WebSocket conectados",
		}),
	}
	reg.MustRegister(
		c.Requests, c.RequestDuration, c.Refreshes, c.Fallbacks,
		c.DroppedTicks, c.BatchSize, c.SinkErrors, c.WSConnections,
	)
	return c
}

// ObserveRequest tem a assinatura do callback OnDone do transport
func (c *Collectors) ObserveRequest(endpoint, outcome string, elapsed time.Duration) {
	c.Requests.WithLabelValues(endpoint, outcome).Inc()
	c.RequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}
