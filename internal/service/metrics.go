package service

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"ocrapi/internal/recognition"
)

// Metrics holds the recognition metrics. A nil *Metrics records nothing.
type Metrics struct {
	recognitions *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

// NewMetrics creates and registers the recognition metrics on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		recognitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ocr_recognitions_total",
				Help: "Total number of recognition engine calls by outcome.",
			},
			[]string{"document_type", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ocr_recognition_duration_seconds",
				Help:    "Duration of recognition engine calls.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
			},
			[]string{"document_type"},
		),
	}

	for _, c := range []prometheus.Collector{m.recognitions, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(documentType, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	label := documentTypeLabel(documentType)
	m.recognitions.WithLabelValues(label, outcome).Inc()
	m.duration.WithLabelValues(label).Observe(d.Seconds())
}

// documentTypeLabel keeps the label set bounded: document types are client input.
func documentTypeLabel(documentType string) string {
	if strings.EqualFold(documentType, recognition.DocumentTypeRIB) {
		return recognition.DocumentTypeRIB
	}
	return "other"
}
