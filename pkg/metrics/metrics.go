package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SourceLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "faturamento_source_loads_total",
		Help: "Total number of workbook loads by origin and outcome",
	}, []string{"origin", "status"})

	SourceBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "faturamento_source_bytes",
		Help:    "Size of the loaded workbooks",
		Buckets: prometheus.ExponentialBuckets(16*1024, 4, 8),
	})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "faturamento_stage_duration_seconds",
		Help:    "Duration of each report pipeline stage",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	RowsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "faturamento_rows_processed_total",
		Help: "Total number of order rows normalized and filtered",
	}, []string{"result"})

	ReportsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "faturamento_reports_total",
		Help: "Total number of report runs by outcome",
	}, []string{"status"})

	EmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "faturamento_emails_total",
		Help: "Total number of report emails by outcome",
	}, []string{"status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "http_duration_seconds",
		Help: "Duration of HTTP requests.",
	}, []string{"method", "route", "status_code"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"method", "route", "status_code"})
)

func RecordSourceLoad(origin, status string, size int) {
	SourceLoads.WithLabelValues(origin, status).Inc()
	if size > 0 {
		SourceBytes.Observe(float64(size))
	}
}

func RecordRows(result string, count int) {
	if count <= 0 {
		return
	}
	RowsProcessed.WithLabelValues(result).Add(float64(count))
}

func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	HTTPDuration.WithLabelValues(method, route, code).Observe(duration.Seconds())
	HTTPRequests.WithLabelValues(method, route, code).Inc()
}

func RecordReport(status string) {
	ReportsGenerated.WithLabelValues(status).Inc()
}

func RecordEmail(status string) {
	EmailsSent.WithLabelValues(status).Inc()
}

type Timer struct {
	start time.Time
}

func NewTimer() *Timer {
	return &Timer{
		start: time.Now(),
	}
}

func (t *Timer) ObserveDuration(observer prometheus.Observer) {
	observer.Observe(time.Since(t.start).Seconds())
}

// ObserveStage records the elapsed time under the given pipeline stage.
func (t *Timer) ObserveStage(stage string) {
	t.ObserveDuration(StageDuration.WithLabelValues(stage))
}

func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}
