package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	marginEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "margin_evaluations_total",
			Help: "Total number of margin evaluations",
		},
		[]string{"operation", "outcome"},
	)

	marginEvaluationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "margin_evaluation_duration_seconds",
			Help:    "Duration of margin evaluations",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		},
		[]string{"operation"},
	)

	marginAmountApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "margin_amount_recorded_total",
			Help: "Sum of recorded margin amounts by currency",
		},
		[]string{"currency"},
	)

	marginSnapshotRebuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "margin_rule_snapshot_rebuilds_total",
			Help: "Total number of active rule snapshot rebuilds",
		},
		[]string{"source"},
	)

	marginActiveRules = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "margin_active_rules",
			Help: "Number of active margin rules in the current snapshot",
		},
	)

	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "route"},
	)
)

// 评估结果标签
const (
	OutcomeRuleApplied    = "rule_applied"
	OutcomeDefaultApplied = "default_applied"
	OutcomeReplayed       = "replayed"
	OutcomeError          = "error"
)

// ObserveEvaluation 记录一次评估
func ObserveEvaluation(operation, outcome string, elapsed time.Duration) {
	marginEvaluations.WithLabelValues(operation, outcome).Inc()
	marginEvaluationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// AddRecordedMargin 累加已记录的利润金额
func AddRecordedMargin(currency string, amount float64) {
	if amount <= 0 {
		return
	}
	marginAmountApplied.WithLabelValues(currency).Add(amount)
}

// ObserveSnapshotRebuild 记录快照重建来源（store/cache）与规则数
func ObserveSnapshotRebuild(source string, activeRules int) {
	marginSnapshotRebuilds.WithLabelValues(source).Inc()
	marginActiveRules.Set(float64(activeRules))
}

// GinMiddleware HTTP 请求指标
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler Prometheus 抓取端点
func Handler() http.Handler {
	return promhttp.Handler()
}
