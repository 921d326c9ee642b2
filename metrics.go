package spectra

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "spectra"

// Metrics holds the Prometheus collectors of one sink.
type Metrics struct {
	SamplesAccepted  prometheus.Counter
	SamplesDropped   prometheus.Counter
	BatchesProcessed prometheus.Counter
	BatchesSkipped   prometheus.Counter // discarded while frozen
	FramesDrawn      prometheus.Counter
	IdleSleeps       prometheus.Counter
	InitFailures     prometheus.Counter
	FifoFill         prometheus.Gauge // used/capacity
}

// NewMetrics creates the collectors labeled with the sink instance and
// registers them on reg. A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer, instance string) *Metrics {
	f := promauto.With(reg)
	labels := prometheus.Labels{"instance": instance}
	counter := func(name, help string) prometheus.Counter {
		return f.NewCounter(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
	}
	return &Metrics{
		SamplesAccepted:  counter("samples_accepted_total", "Samples written to the FIFO"),
		SamplesDropped:   counter("samples_dropped_total", "Samples rejected because the FIFO was full"),
		BatchesProcessed: counter("batches_processed_total", "Sample batches handed to the engine"),
		BatchesSkipped:   counter("batches_skipped_total", "Sample batches discarded while frozen"),
		FramesDrawn:      counter("frames_drawn_total", "Frames presented"),
		IdleSleeps:       counter("idle_sleeps_total", "Render iterations spent sleeping while hidden"),
		InitFailures:     counter("init_failures_total", "Render loop initialization failures"),
		FifoFill: f.NewGauge(prometheus.GaugeOpts{
			Namespace:   metricsNamespace,
			Name:        "fifo_fill_ratio",
			Help:        "FIFO occupancy after the last drain",
			ConstLabels: labels,
		}),
	}
}
