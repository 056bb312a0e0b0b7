// 包 metrics 提供 Prometheus 指标：HTTP 请求计数/耗时、store 动作计数。
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 持有独立的 Registry 与常用指标。
type Metrics struct {
	Registry        *prometheus.Registry
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ActionsTotal    *prometheus.CounterVec
}

// New 创建自定义 Registry 并注册全部指标。
func New() *Metrics {
	reg := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "posts_http_requests_total",
		Help: "Total number of REST requests by method and outcome.",
	}, []string{"method", "status"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "posts_http_request_duration_seconds",
		Help:    "Duration of REST requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	actions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "posts_store_actions_total",
		Help: "Total number of actions dispatched to the store.",
	}, []string{"type"})

	reg.MustRegister(requests, duration, actions)

	return &Metrics{
		Registry:        reg,
		RequestsTotal:   requests,
		RequestDuration: duration,
		ActionsTotal:    actions,
	}
}

// ObserveRequest 记录一次请求；m 为 nil 时不做任何事。
func (m *Metrics) ObserveRequest(method, status string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, status).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(seconds)
}

// ObserveAction 记录一次 dispatch。
func (m *Metrics) ObserveAction(actionType string) {
	if m == nil {
		return
	}
	m.ActionsTotal.WithLabelValues(actionType).Inc()
}

// Handler 返回 /metrics 的 HTTP Handler。
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
