package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		promoRedemptionsTotal,
		promoRedemptionDuration,
		promoCodesCreatedTotal,
		promoCodesUsable,
	)
}

var (
	promoRedemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promo_redemptions_total",
			Help: "Promo code redemption attempts by result.",
		},
		[]string{"result"}, // 'success', 'invalid_input', 'not_found', 'cannot_use', 'error'
	)

	promoRedemptionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "promo_redemption_duration_seconds",
			Help:    "Time spent in a redemption unit of work, including lock wait.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"result"},
	)

	promoCodesCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promo_codes_created_total",
			Help: "Promo codes created, labeled by action.",
		},
		[]string{"action"},
	)

	promoCodesUsable = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "promo_codes_usable",
			Help: "Promo codes currently enabled, inside their window and not exhausted.",
		},
	)
)

func ObserveRedemption(result string, elapsed time.Duration) {
	r := norm(result)
	promoRedemptionsTotal.WithLabelValues(r).Inc()
	promoRedemptionDuration.WithLabelValues(r).Observe(elapsed.Seconds())
}

func IncPromoCodeCreated(action string) {
	promoCodesCreatedTotal.WithLabelValues(norm(action)).Inc()
}

func SetPromoCodesUsable(n int) {
	promoCodesUsable.Set(float64(n))
}
