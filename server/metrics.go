package server

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	sent "github.com/revelaction/tageval/sentence"
	"github.com/revelaction/tageval/tagger"
)

// Metrics holds the Prometheus collectors of the REST server.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	TaggerCalls      *prometheus.CounterVec
	TaggerLatency    prometheus.Histogram
	SkippedSentences prometheus.Counter
}

// NewMetrics registers the server collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tageval_http_requests_total",
			Help: "Total number of HTTP requests by route and status code",
		}, []string{"route", "code"}),
		TaggerCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tageval_tagger_calls_total",
			Help: "Total number of tagger calls by outcome",
		}, []string{"status"}),
		TaggerLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tageval_tagger_duration_seconds",
			Help:    "Tagger call latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		SkippedSentences: factory.NewCounter(prometheus.CounterOpts{
			Name: "tageval_skipped_sentences_total",
			Help: "Total number of sentences left out because the tagger failed",
		}),
	}
}

// RecordRequest counts a served request.
func (m *Metrics) RecordRequest(route string, code int) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// RecordSkipped counts n skipped sentences.
func (m *Metrics) RecordSkipped(n int) {
	if m == nil || n == 0 {
		return
	}
	m.SkippedSentences.Add(float64(n))
}

// Instrument wraps tg so that every call is counted and timed.
func (m *Metrics) Instrument(tg tagger.Tagger) tagger.Tagger {
	if m == nil {
		return tg
	}
	return tagger.Func(func(ctx context.Context, text string) ([]sent.Token, error) {
		start := time.Now()
		tokens, err := tg.Tag(ctx, text)
		m.TaggerLatency.Observe(time.Since(start).Seconds())

		status := "success"
		if err != nil {
			status = "error"
		}
		m.TaggerCalls.WithLabelValues(status).Inc()
		return tokens, err
	})
}
