package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// LoyaltyMetrics records counts for the accrual and discount surfaces.
type LoyaltyMetrics struct {
	accruals  *prometheus.CounterVec
	previews  *prometheus.CounterVec
	coinsAdd  prometheus.Counter
	growthAdd prometheus.Counter
}

// NewLoyaltyMetrics registers the loyalty metrics on the provided registerer.
func NewLoyaltyMetrics(reg prometheus.Registerer) *LoyaltyMetrics {
	if reg == nil {
		return &LoyaltyMetrics{}
	}
	accruals := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "loyalty_accruals_total",
		Help: "Accrual operations by outcome.",
	}, []string{"outcome"})
	previews := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "loyalty_discount_previews_total",
		Help: "Discount preview computations by outcome.",
	}, []string{"outcome"})
	coinsAdd := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "loyalty_coins_accrued_total",
		Help: "Coins credited through order settlement.",
	})
	growthAdd := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "loyalty_growth_accrued_total",
		Help: "Growth value credited through order settlement.",
	})
	reg.MustRegister(accruals, previews, coinsAdd, growthAdd)
	return &LoyaltyMetrics{
		accruals:  accruals,
		previews:  previews,
		coinsAdd:  coinsAdd,
		growthAdd: growthAdd,
	}
}

// IncAccrual counts one accrual operation with the given outcome.
func (m *LoyaltyMetrics) IncAccrual(outcome string) {
	if m == nil || m.accruals == nil {
		return
	}
	m.accruals.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncPreview counts one discount preview with the given outcome.
func (m *LoyaltyMetrics) IncPreview(outcome string) {
	if m == nil || m.previews == nil {
		return
	}
	m.previews.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// AddAccrued records the coin and growth deltas credited by a settlement.
func (m *LoyaltyMetrics) AddAccrued(coins, growth int64) {
	if m == nil || m.coinsAdd == nil {
		return
	}
	if coins > 0 {
		m.coinsAdd.Add(float64(coins))
	}
	if growth > 0 {
		m.growthAdd.Add(float64(growth))
	}
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return value
}
