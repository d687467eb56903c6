package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects the interview service's prometheus instruments.
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	sessionsStarted   prometheus.Counter
	sessionsCompleted *prometheus.CounterVec
	answersSubmitted  prometheus.Counter

	recordingUploadBytes *prometheus.CounterVec
	captureQuality       *prometheus.GaugeVec
}

// NewMetrics registers the instruments on reg; nil means the default
// prometheus registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "interview_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "interview_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		sessionsStarted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "interview_sessions_started_total",
				Help: "Interview sessions created",
			},
		),
		sessionsCompleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "interview_sessions_finished_total",
				Help: "Interview sessions reaching a terminal status",
			},
			[]string{"status"},
		),
		answersSubmitted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "interview_answers_submitted_total",
				Help: "Answers persisted across all sessions",
			},
		),
		recordingUploadBytes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "interview_recording_upload_bytes_total",
				Help: "Bytes of recording segments accepted",
			},
			[]string{"type"},
		),
		captureQuality: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "interview_capture_quality_tier",
				Help: "Sampled capture quality tier (0=low 1=medium 2=high)",
			},
			[]string{"kind"},
		),
	}
}

func (m *Metrics) SessionStarted()              { m.sessionsStarted.Inc() }
func (m *Metrics) SessionFinished(status string) { m.sessionsCompleted.WithLabelValues(status).Inc() }
func (m *Metrics) AnswerSubmitted()             { m.answersSubmitted.Inc() }

func (m *Metrics) RecordingUploaded(kind string, bytes int64) {
	m.recordingUploadBytes.WithLabelValues(kind).Add(float64(bytes))
}

// ObserveCaptureQuality publishes the sampled tier for one capture kind.
func (m *Metrics) ObserveCaptureQuality(kind string, tier int) {
	m.captureQuality.WithLabelValues(kind).Set(float64(tier))
}
