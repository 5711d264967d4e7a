package metrics

import (
	"github.com/lk2023060901/aagateway/pkg/prometheus"
)

// HTTPMetrics 状态接口的请求指标
type HTTPMetrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New 在 client 上注册 HTTP 指标
func New(client *prometheus.Client) (*HTTPMetrics, error) {
	total, err := client.NewCounter("http_requests_total", "Total number of HTTP requests.",
		[]string{"path", "method", "status"})
	if err != nil {
		return nil, err
	}
	duration, err := client.NewHistogram("http_request_duration_seconds", "HTTP request latency in seconds.",
		[]string{"path", "method"}, nil)
	if err != nil {
		return nil, err
	}
	return &HTTPMetrics{RequestsTotal: total, RequestDuration: duration}, nil
}
