package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	UsersRegistered prometheus.Counter
	BooksAdded      prometheus.Counter
	LoansCreated    prometheus.Counter
	LoansReturned   prometheus.Counter
	FinesAssessed   prometheus.Counter
	FineDollars     prometheus.Counter

	CopyRejections prometheus.Counter
	CapRejections  prometheus.Counter

	RequestDuration *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		UsersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "circ_users_registered_total",
			Help: "Total number of borrowers registered.",
		}),
		BooksAdded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "circ_books_added_total",
			Help: "Total number of books added to the catalog.",
		}),
		LoansCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "circ_loans_created_total",
			Help: "Total number of loans created.",
		}),
		LoansReturned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "circ_loans_returned_total",
			Help: "Total number of loans returned.",
		}),
		FinesAssessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "circ_fines_assessed_total",
			Help: "Number of returns that were assessed a non-zero fine.",
		}),
		FineDollars: promauto.NewCounter(prometheus.CounterOpts{
			Name: "circ_fine_dollars_total",
			Help: "Accumulated dollar amount of finalized fines.",
		}),
		CopyRejections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "circ_loan_rejections_no_copies_total",
			Help: "Loan creations rejected because no copies were available.",
		}),
		CapRejections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "circ_loan_rejections_limit_total",
			Help: "Loan creations rejected by the per-borrower active-loan cap.",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "circ_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}
}

// AddFine records one finalized non-zero fine.
func (m *Metrics) AddFine(amount float64) {
	if m == nil {
		return
	}
	m.FinesAssessed.Inc()
	m.FineDollars.Add(amount)
}
