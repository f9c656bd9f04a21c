// Package metrics 提供基于Prometheus的指标收集
//
// 指标类型速查:
// - Counter: 只增不减的累计值(请求总数、购买总数、失败总数)
// - Gauge: 可增可减的瞬时值(处理中的请求数)
// - Histogram: 观测值分布,自动计算分位数(请求耗时、确认耗时)
//
// 命名规范:
// - Counter以_total结尾,Histogram以单位结尾(_seconds)
// - 标签只用低基数维度(method/path/status/result),绝不用user_id
//
// 指标通过/metrics端点暴露,由Prometheus Server定期抓取
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// initialized 标记是否已初始化(防止重复注册)
	initialized bool

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数(Counter)
	// 标签: method(GET/POST)、path、status(200/500)
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时(Histogram)
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数(Gauge)
	HTTPRequestsInProgress prometheus.Gauge

	// 购物车/购买业务指标

	// PurchasesConfirmedTotal 确认成功的购买条目总数(Counter)
	// 每个购物车条目转为一条购买记录时加1
	PurchasesConfirmedTotal prometheus.Counter

	// PurchasesFailedTotal 购买确认失败总数(Counter)
	// 标签: reason(book_not_found/insufficient_stock/persistence)
	PurchasesFailedTotal *prometheus.CounterVec

	// PurchaseConfirmDuration 整篮确认耗时(Histogram)
	PurchaseConfirmDuration prometheus.Histogram

	// BasketMutationsTotal 购物车变更操作总数(Counter)
	// 标签: op(change/set/remove/clear)、result(success/failure)
	BasketMutationsTotal *prometheus.CounterVec

	// 熔断器指标

	// CircuitBreakerState 熔断器状态(Gauge)
	// 0=CLOSED, 1=OPEN, 2=HALF_OPEN
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests 熔断器请求总数(Counter)
	// 标签: name、result(success/failure/rejected)
	CircuitBreakerRequests *prometheus.CounterVec

	// 消息队列指标

	// MessagesPublishedTotal 消息发布总数(Counter)
	// 标签: exchange、routing_key、result(success/failure)
	MessagesPublishedTotal *prometheus.CounterVec
)

// InitMetrics 初始化所有Prometheus指标
//
// 必须在程序启动时调用一次,通过promauto自动注册到默认Registry。
// 之后在main里暴露端点:
//
//	http.Handle("/metrics", promhttp.Handler())
func InitMetrics() {
	if initialized {
		return
	}
	initialized = true

	// HTTP请求指标
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时(秒)",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	// 购买业务指标
	PurchasesConfirmedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "purchases_confirmed_total",
			Help: "确认成功的购买条目总数",
		},
	)

	PurchasesFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchases_failed_total",
			Help: "购买确认失败总数",
		},
		[]string{"reason"},
	)

	PurchaseConfirmDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "purchase_confirm_duration_seconds",
			Help: "整篮购买确认耗时(秒)",
			// 确认涉及逐条锁定与扣减,耗时比普通请求长
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
	)

	BasketMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "basket_mutations_total",
			Help: "购物车变更操作总数",
		},
		[]string{"op", "result"},
	)

	// 熔断器指标
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态(0=CLOSED, 1=OPEN, 2=HALF_OPEN)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "熔断器请求总数",
		},
		[]string{"name", "result"},
	)

	// 消息队列指标
	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"exchange", "routing_key", "result"},
	)
}

// IncCounter 递增Counter(便捷函数)
func IncCounter(counter prometheus.Counter) {
	counter.Inc()
}

// IncCounterVec 递增CounterVec(带标签)
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

// IncGauge 递增Gauge
func IncGauge(gauge prometheus.Gauge) {
	gauge.Inc()
}

// DecGauge 递减Gauge
func DecGauge(gauge prometheus.Gauge) {
	gauge.Dec()
}

// SetGaugeVec 设置GaugeVec值(带标签)
func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	gauge.With(labels).Set(value)
}

// ObserveHistogram 记录Histogram观测值
func ObserveHistogram(histogram prometheus.Histogram, value float64) {
	histogram.Observe(value)
}

// ObserveHistogramVec 记录HistogramVec观测值(带标签)
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	histogram.With(labels).Observe(value)
}
