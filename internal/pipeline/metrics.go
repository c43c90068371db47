package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts per-document diagnostics. A nil *Metrics records nothing.
type Metrics struct {
	// Section locator outcomes by section and status (found, empty, not_found)
	SectionStatus *prometheus.CounterVec

	// Backend that produced the accepted extraction
	ExtractionBackend *prometheus.CounterVec

	// Entries dropped because no layout variant matched
	UnmatchedEntries prometheus.Counter

	// Valuation source used (provided, estimated)
	ValuationSource *prometheus.CounterVec

	// Assessment outcomes by risk level
	RiskLevel *prometheus.CounterVec

	// Full analysis latency
	AnalyzeLatency prometheus.Histogram
}

// NewMetrics registers the pipeline metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SectionStatus: f.NewCounterVec(prometheus.CounterOpts{
			Name: "jeonse_section_status_total",
			Help: "Section locator outcomes by section and status",
		}, []string{"section", "status"}),

		ExtractionBackend: f.NewCounterVec(prometheus.CounterOpts{
			Name: "jeonse_extraction_backend_total",
			Help: "Accepted extractions by backend",
		}, []string{"backend"}),

		UnmatchedEntries: f.NewCounter(prometheus.CounterOpts{
			Name: "jeonse_unmatched_entries_total",
			Help: "Claim entries dropped because no layout variant matched",
		}),

		ValuationSource: f.NewCounterVec(prometheus.CounterOpts{
			Name: "jeonse_valuation_source_total",
			Help: "Valuations used by source",
		}, []string{"source"}),

		RiskLevel: f.NewCounterVec(prometheus.CounterOpts{
			Name: "jeonse_assessments_total",
			Help: "Completed assessments by risk level",
		}, []string{"level"}),

		AnalyzeLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "jeonse_analyze_duration_seconds",
			Help:    "Duration of a full document analysis including extraction backends",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		}),
	}
}

// ObserveSection records one section locator outcome.
func (m *Metrics) ObserveSection(section, status string) {
	if m != nil {
		m.SectionStatus.WithLabelValues(section, status).Inc()
	}
}

// ObserveExtraction records the accepted backend and its unmatched count.
func (m *Metrics) ObserveExtraction(backend string, unmatched int) {
	if m != nil {
		m.ExtractionBackend.WithLabelValues(backend).Inc()
		if unmatched > 0 {
			m.UnmatchedEntries.Add(float64(unmatched))
		}
	}
}

// ObserveValuation records the valuation source.
func (m *Metrics) ObserveValuation(source string) {
	if m != nil {
		m.ValuationSource.WithLabelValues(source).Inc()
	}
}

// ObserveAssessment records the outcome and total latency.
func (m *Metrics) ObserveAssessment(level string, d time.Duration) {
	if m != nil {
		m.RiskLevel.WithLabelValues(level).Inc()
		m.AnalyzeLatency.Observe(d.Seconds())
	}
}
