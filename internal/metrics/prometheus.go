package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the transcription worker.
type Metrics struct {
	// Run metrics
	RunsStarted   prometheus.Counter
	RunsSucceeded prometheus.Counter
	RunsFailed    *prometheus.CounterVec
	ActiveRuns    prometheus.Gauge
	RunDuration   prometheus.Histogram

	// Preprocessing metrics
	Compressions     prometheus.Counter
	SegmentsProduced prometheus.Counter

	// Transcription metrics
	ChunksTranscribed prometheus.Counter

	// Delivery metrics
	ObjectsProcessed prometheus.Counter
	OutputsWritten   prometheus.Counter
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		RunsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "audiopipe_runs_started_total",
			Help: "Total number of transcription runs started",
		}),
		RunsSucceeded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "audiopipe_runs_succeeded_total",
			Help: "Total number of transcription runs completed successfully",
		}),
		RunsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "audiopipe_runs_failed_total",
			Help: "Total number of transcription runs failed, by pipeline stage",
		}, []string{"stage"}),
		ActiveRuns: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "audiopipe_active_runs",
			Help: "Current number of in-flight transcription runs",
		}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "audiopipe_run_duration_seconds",
			Help:    "Wall-clock duration of transcription runs",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		Compressions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "audiopipe_compressions_total",
			Help: "Total number of source artifacts re-encoded to the speech profile",
		}),
		SegmentsProduced: promauto.NewCounter(prometheus.CounterOpts{
			Name: "audiopipe_segments_produced_total",
			Help: "Total number of fixed-duration segments produced by the splitter",
		}),
		ChunksTranscribed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "audiopipe_chunks_transcribed_total",
			Help: "Total number of chunks successfully transcribed",
		}),
		ObjectsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "audiopipe_objects_processed_total",
			Help: "Total number of watched objects picked up for processing",
		}),
		OutputsWritten: promauto.NewCounter(prometheus.CounterOpts{
			Name: "audiopipe_outputs_written_total",
			Help: "Total number of formatted transcripts written to storage",
		}),
	}
}
