package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(dbPoolStats, dbTxErrorsTotal) }

var (
	dbPoolStats = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "db_pool_stats",
			Help: "Current state of the database connection pool.",
		},
		[]string{"state"}, // 'total', 'idle', 'in_use'
	)

	dbTxErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_tx_errors_total",
			Help: "Transactions that failed in the storage layer, by kind.",
		},
		[]string{"kind"}, // 'begin', 'commit', 'lock_timeout'
	)
)

func SetDBPoolStats(total, idle, inUse int32) {
	dbPoolStats.WithLabelValues("total").Set(float64(total))
	dbPoolStats.WithLabelValues("idle").Set(float64(idle))
	dbPoolStats.WithLabelValues("in_use").Set(float64(inUse))
}

func IncDBTxError(kind string) {
	dbTxErrorsTotal.WithLabelValues(norm(kind)).Inc()
}
