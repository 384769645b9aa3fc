package metrics

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	//Request duration histogram with method, endpoint, and status labels
	RequestDuration *prometheus.HistogramVec
	//Login attempts counter
	LoginAttempts *prometheus.CounterVec
	//Total errors counter with error type label
	TotalErrors *prometheus.CounterVec
	//Database query duration histogram with query type and status labels
	DbQueryDuration *prometheus.HistogramVec
	//Credits moved through the ledger, labeled by direction (credit/debit)
	CreditsMoved *prometheus.CounterVec
	//Upstream provider call duration with provider and status labels
	ProviderDuration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "request_duration_seconds",
			Help: "Duration of HTTP requests in seconds."},
			[]string{"method", "endpoint", "status"},
		),
		LoginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "Total number of login attempts.",
		},
			[]string{"status"},
		),
		TotalErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "total_errors_total",
				Help: "Number of total errors.",
			},
			[]string{"error_type"},
		),
		DbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of database queries in seconds.",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
			[]string{"query_type", "status"},
		),
		CreditsMoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "credits_moved_total",
			Help: "Credits credited and debited through the ledger.",
		},
			[]string{"direction"},
		),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "provider_call_duration_seconds",
			Help: "Duration of upstream provider calls in seconds.",
		},
			[]string{"provider", "status"},
		),
	}
	// Register metrics with the provided registry
	reg.MustRegister(m.RequestDuration)
	reg.MustRegister(m.LoginAttempts)
	reg.MustRegister(m.TotalErrors)
	reg.MustRegister(m.DbQueryDuration)
	reg.MustRegister(m.CreditsMoved)
	reg.MustRegister(m.ProviderDuration)
	return m
}

// ObserveDB is a helper method to record the duration and status of database queries in a consistent way.
func (m *Metrics) ObserveDB(queryName string, start time.Time, err error) {
	duration := time.Since(start).Seconds()

	status := "ok"
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			status = "not_found"
		} else {
			status = "error"
		}
	}

	m.DbQueryDuration.WithLabelValues(queryName, status).Observe(duration)
}

// ObserveProvider records an upstream call the same way ObserveDB does for queries.
func (m *Metrics) ObserveProvider(provider string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.ProviderDuration.WithLabelValues(provider, status).Observe(time.Since(start).Seconds())
}
