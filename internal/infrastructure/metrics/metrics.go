package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Transaction metrics
	TransactionsCreated  *prometheus.CounterVec
	TransactionsDeleted  prometheus.Counter
	TransactionsImported prometheus.Counter
	TransactionErrors    *prometheus.CounterVec

	// Balance metrics
	RecalculationsTotal   *prometheus.CounterVec
	RecalculationDuration *prometheus.HistogramVec
	SnapshotsWritten      prometheus.Counter
	MonthIndexRefreshes   prometheus.Counter
	QueueFlushes          *prometheus.CounterVec

	// Budget metrics
	TemplateApplications prometheus.Counter
	TemplateAllocated    prometheus.Histogram
	BudgetResets         prometheus.Counter

	// Planning metrics
	PlanningsExecuted prometheus.Counter
	PlanningsRetired  prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBQueries     *prometheus.CounterVec
	DBDuration    *prometheus.HistogramVec
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec

	// Sync metrics
	SyncEventsQueued    prometheus.Counter
	SyncEventsDelivered prometheus.Counter
	SyncFailures        *prometheus.CounterVec
	SyncBacklog         prometheus.Gauge
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Transaction metrics
		TransactionsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobudget_transactions_created_total",
				Help: "Total number of transactions created by type",
			},
			[]string{"type"},
		),
		TransactionsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gobudget_transactions_deleted_total",
			Help: "Total number of transactions deleted",
		}),
		TransactionsImported: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gobudget_transactions_imported_total",
			Help: "Total number of transactions imported",
		}),
		TransactionErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobudget_transaction_errors_total",
				Help: "Total number of transaction errors by type",
			},
			[]string{"error_type"},
		),

		// Balance metrics
		RecalculationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobudget_recalculations_total",
				Help: "Total balance recalculations by kind",
			},
			[]string{"kind"},
		),
		RecalculationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gobudget_recalculation_duration_seconds",
				Help:    "Duration of balance recalculations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		SnapshotsWritten: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gobudget_snapshots_written_total",
			Help: "Total monthly snapshots persisted",
		}),
		MonthIndexRefreshes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gobudget_month_index_refreshes_total",
			Help: "Total month index cache refreshes",
		}),
		QueueFlushes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobudget_queue_flushes_total",
				Help: "Total recalculation queue flushes by queue",
			},
			[]string{"queue"},
		),

		// Budget metrics
		TemplateApplications: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gobudget_template_applications_total",
			Help: "Total budget template applications",
		}),
		TemplateAllocated: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "gobudget_template_allocated_amount",
			Help:    "Amounts allocated per template application",
			Buckets: []float64{10, 100, 500, 1000, 5000, 10000},
		}),
		BudgetResets: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gobudget_budget_resets_total",
			Help: "Total month budget resets",
		}),

		// Planning metrics
		PlanningsExecuted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gobudget_plannings_executed_total",
			Help: "Total planning transactions executed",
		}),
		PlanningsRetired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gobudget_plannings_retired_total",
			Help: "Total planning transactions retired after their last occurrence",
		}),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobudget_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gobudget_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Database metrics
		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobudget_db_queries_total",
				Help: "Total database queries",
			},
			[]string{"operation", "table"},
		),
		DBDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gobudget_db_query_duration_seconds",
				Help:    "Database query duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "gobudget_db_connections",
			Help: "Current number of database connections",
		}),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobudget_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		// Redis metrics
		RedisOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobudget_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobudget_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Sync metrics
		SyncEventsQueued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gobudget_sync_events_queued_total",
			Help: "Total sync events queued",
		}),
		SyncEventsDelivered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gobudget_sync_events_delivered_total",
			Help: "Total sync events delivered to the backend",
		}),
		SyncFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobudget_sync_failures_total",
				Help: "Total sync delivery failures by reason",
			},
			[]string{"reason"},
		),
		SyncBacklog: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "gobudget_sync_backlog",
			Help: "Current number of undelivered sync events",
		}),
	}
}
