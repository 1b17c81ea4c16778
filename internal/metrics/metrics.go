// Package metrics exports extraction counters and latencies to Prometheus.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joseph-ayodele/crewsheet/constants"
	"github.com/joseph-ayodele/crewsheet/internal/entity"
)

const namespace = "crewsheet"

// Metrics owns a private registry so tests and multiple instances don't collide.
type Metrics struct {
	registry *prometheus.Registry

	extractions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	contacts    prometheus.Histogram
	aiCalls     *prometheus.CounterVec
	cache       *prometheus.CounterVec
	jobs        *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Finished extractions by strategy and run status.",
		}, []string{"strategy", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Wall time of one extraction.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"strategy"}),
		contacts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "contacts_per_extraction",
			Help:      "Contacts returned per extraction.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 11),
		}),
		aiCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ai_calls_total",
			Help:      "Extractions that consulted the AI enhancer, by outcome.",
		}, []string{"outcome"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Result cache lookups.",
		}, []string{"result"}),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queue_jobs_total",
			Help:      "Queued documents processed, by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(
		m.extractions, m.duration, m.contacts, m.aiCalls, m.cache, m.jobs,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: namespace}),
	)
	return m
}

func (m *Metrics) ObserveExtraction(res *entity.ExtractionResult) {
	if res == nil {
		return
	}
	strategy := string(res.Metadata.Strategy)
	if strategy == "" {
		strategy = "none"
	}
	status := constants.RunStatusSucceeded
	switch {
	case !res.Success:
		status = constants.RunStatusFailed
	case res.Partial():
		status = constants.RunStatusPartial
	}
	m.extractions.WithLabelValues(strategy, string(status)).Inc()
	m.duration.WithLabelValues(strategy).Observe(res.Metadata.ProcessingTime.Seconds())
	m.contacts.Observe(float64(len(res.Contacts)))

	switch {
	case res.Metadata.AIError != "":
		m.aiCalls.WithLabelValues("error").Inc()
	case res.Metadata.AIUsed:
		m.aiCalls.WithLabelValues("ok").Inc()
	}
}

func (m *Metrics) ObserveCache(hit bool) {
	if hit {
		m.cache.WithLabelValues("hit").Inc()
		return
	}
	m.cache.WithLabelValues("miss").Inc()
}

// ObserveJob counts one queue job; err is the processing error, if any.
func (m *Metrics) ObserveJob(err error) {
	if err != nil {
		m.jobs.WithLabelValues("error").Inc()
		return
	}
	m.jobs.WithLabelValues("ok").Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics.listen", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
