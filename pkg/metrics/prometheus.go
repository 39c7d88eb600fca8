package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"voxrelay/pkg/logging"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Message outcomes.
const (
	OutcomeTranscribed  = "transcribed"
	OutcomeDenied       = "denied"
	OutcomeStart        = "start"
	OutcomeInvalidInput = "invalid_format"
	OutcomeFailed       = "failed"
)

// Metrics contains the Prometheus metrics for the relay
type Metrics struct {
	Messages              *prometheus.CounterVec
	Transcriptions        *prometheus.CounterVec
	TranscriptionDuration prometheus.Histogram
	DownloadedBytes       prometheus.Counter
	RepliesSent           prometheus.Counter
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Messages: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voxrelay_messages_total",
			Help: "Inbound messages by outcome",
		}, []string{"outcome"}),
		Transcriptions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voxrelay_transcriptions_total",
			Help: "Transcription attempts by provider and result",
		}, []string{"provider", "result"}),
		TranscriptionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "voxrelay_transcription_duration_seconds",
			Help:    "Time spent waiting for the transcription service",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
		DownloadedBytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "voxrelay_downloaded_bytes_total",
			Help: "Audio bytes fetched from Telegram",
		}),
		RepliesSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "voxrelay_replies_total",
			Help: "Reply messages queued for delivery",
		}),
	}
}

// Serve exposes gatherer on addr at /metrics until ctx is cancelled.
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logging.Info("📈 Metrics listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
