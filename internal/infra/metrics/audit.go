package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(auditRecordsTotal) }

var auditRecordsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "audit_records_total",
		Help: "Audit records by outcome.",
	},
	[]string{"status"}, // 'saved', 'failed', 'dropped'
)

func IncAuditRecord(status string) {
	auditRecordsTotal.WithLabelValues(norm(status)).Inc()
}
