package metrics

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/jxo-me/curl-dyndns/consts"
	"github.com/jxo-me/curl-dyndns/core/ddns"
	"github.com/jxo-me/curl-dyndns/core/logger"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "curl_dyndns"

	shutdownTimeout = 5 * time.Second
)

// Collector records the outcome of every update cycle.
type Collector struct {
	registry    *prometheus.Registry
	cycles      *prometheus.CounterVec
	failures    prometheus.Gauge
	lastSuccess prometheus.Gauge
	duration    prometheus.Histogram
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Update cycles by result.",
		}, []string{"status"}),
		failures: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "consecutive_failures",
			Help:      "Failed update cycles since the last successful update.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful update.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Duration of update cycles.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}),
	}
	c.registry.MustRegister(
		c.cycles, c.failures, c.lastSuccess, c.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	// 预先创建所有 label, 保证从 0 开始
	for _, st := range []consts.UpdateStatusType{consts.UpdatedSuccess, consts.UpdatedNothing, consts.UpdatedFailed} {
		c.cycles.WithLabelValues(string(st))
	}
	return c
}

func (c *Collector) ObserveOutcome(outcome ddns.Outcome, elapsed time.Duration) {
	c.cycles.WithLabelValues(string(outcome.Status)).Inc()
	c.duration.Observe(elapsed.Seconds())
	switch outcome.Status {
	case consts.UpdatedSuccess:
		c.failures.Set(0)
		c.lastSuccess.SetToCurrentTime()
	case consts.UpdatedFailed:
		// 与地址缓存的计数保持一致, 更换更新地址后从头计数
		c.failures.Set(float64(outcome.FailedTimes))
	}
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Serve exposes /metrics on addr until ctx is done.
func (c *Collector) Serve(ctx context.Context, addr string, log logger.ILogger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen metrics on %s", addr)
	}
	log.Infof("Serving metrics on http://%s/metrics", ln.Addr())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err = <-errCh:
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err = srv.Shutdown(shutdownCtx)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
