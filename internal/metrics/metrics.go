package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fairprice_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fairprice_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	ordersCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fairprice_orders_created_total",
			Help: "Total number of orders created",
		},
	)

	escrowTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fairprice_escrow_transitions_total",
			Help: "Total number of escrow status transitions",
		},
		[]string{"to_status"},
	)

	disputesOpened = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fairprice_disputes_opened_total",
			Help: "Total number of disputes opened",
		},
	)

	couponRedemptions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fairprice_coupon_redemptions_total",
			Help: "Total number of coupon redemption attempts",
		},
		[]string{"outcome"},
	)
)

// GinMiddleware собирает счётчики и гистограммы по HTTP-запросам.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

// OrderCreated учитывает созданный заказ.
func OrderCreated() {
	ordersCreated.Inc()
}

// EscrowTransition учитывает переход escrow в новый статус.
func EscrowTransition(toStatus string) {
	escrowTransitions.WithLabelValues(toStatus).Inc()
}

// DisputeOpened учитывает открытый спор.
func DisputeOpened() {
	disputesOpened.Inc()
}

// CouponRedemption учитывает исход попытки погашения купона.
func CouponRedemption(outcome string) {
	couponRedemptions.WithLabelValues(outcome).Inc()
}
