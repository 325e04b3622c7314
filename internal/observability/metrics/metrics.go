// Package metrics exposes Prometheus counters for the API and its
// indexing consumer.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ekip"

type Set struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	searchChunksFound prometheus.Histogram
	searchFallbacks   prometheus.Counter

	documentsIndexed prometheus.Counter
	documentsFailed  prometheus.Counter
}

func New() *Set {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Set{
		registry: registry,
		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		searchChunksFound: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_chunks_found",
			Help:      "Fused candidate count per search.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 40},
		}),
		searchFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_fallback_answers_total",
			Help:      "Searches answered without the language model.",
		}),
		documentsIndexed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "indexer_documents_processed_total",
			Help:      "Ingestion events processed to completion (indexed or skipped).",
		}),
		documentsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "indexer_documents_failed_total",
			Help:      "Ingestion events that ended in an error.",
		}),
	}
}

func (s *Set) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

func (s *Set) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	s.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	s.httpRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (s *Set) ObserveSearch(chunksFound int, fallback bool) {
	s.searchChunksFound.Observe(float64(chunksFound))
	if fallback {
		s.searchFallbacks.Inc()
	}
}

func (s *Set) DocumentProcessed() { s.documentsIndexed.Inc() }
func (s *Set) DocumentFailed()    { s.documentsFailed.Inc() }
