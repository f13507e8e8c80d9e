package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsService exposes the domain counters scraped at /metrics.
type MetricsService struct {
	markSubmissions *prometheus.CounterVec
	timetableRuns   *prometheus.CounterVec
	reportExports   prometheus.Counter
	termRecomputes  prometheus.Counter
}

// NewMetricsService registers the domain collectors on reg.
func NewMetricsService(reg prometheus.Registerer) *MetricsService {
	factory := promauto.With(reg)
	return &MetricsService{
		markSubmissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "psms",
			Name:      "mark_submissions_total",
			Help:      "Mark submissions by outcome.",
		}, []string{"outcome"}),
		timetableRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "psms",
			Name:      "timetable_generations_total",
			Help:      "Timetable generation runs by outcome.",
		}, []string{"outcome"}),
		reportExports: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "psms",
			Name:      "report_exports_total",
			Help:      "PDF report cards rendered.",
		}),
		termRecomputes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "psms",
			Name:      "term_recomputes_total",
			Help:      "Term aggregation runs.",
		}),
	}
}

// Outcome labels for the counters.
const (
	OutcomeOK         = "ok"
	OutcomeDuplicate  = "duplicate"
	OutcomeError      = "error"
	OutcomeInfeasible = "infeasible"
)

// MarkSubmission counts one submission attempt.
func (m *MetricsService) MarkSubmission(outcome string) {
	m.markSubmissions.WithLabelValues(outcome).Inc()
}

// TimetableRun counts one generation run.
func (m *MetricsService) TimetableRun(outcome string) {
	m.timetableRuns.WithLabelValues(outcome).Inc()
}

// ReportExport counts one rendered report card.
func (m *MetricsService) ReportExport() {
	m.reportExports.Inc()
}

// TermRecompute counts one aggregation run.
func (m *MetricsService) TermRecompute() {
	m.termRecomputes.Inc()
}
