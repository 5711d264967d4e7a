package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CounterVec Counter 向量
type CounterVec = prometheus.CounterVec

// GaugeVec Gauge 向量
type GaugeVec = prometheus.GaugeVec

// HistogramVec Histogram 向量
type HistogramVec = prometheus.HistogramVec

// Collector 采集器接口
type Collector = prometheus.Collector

// register 以 name 为键注册一次
func register[T Collector](c *Client, name string, build func() T) (T, error) {
	var zero T
	if c.IsClosed() {
		return zero, ErrClientClosed
	}
	if _, loaded := c.metrics.LoadOrStore(name, nil); loaded {
		return zero, ErrMetricExists
	}

	metric := build()
	if err := c.registry.Register(metric); err != nil {
		c.metrics.Delete(name)
		return zero, err
	}
	c.metrics.Store(name, metric)
	return metric, nil
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// NewCounter 创建并注册 Counter
func (c *Client) NewCounter(name, help string, labels []string) (*CounterVec, error) {
	return register(c, name, func() *CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: c.config.Namespace,
			Subsystem: c.config.Subsystem,
			Name:      name,
			Help:      help,
		}, labels)
	})
}

// MustNewCounter 创建 Counter，失败则 panic
func (c *Client) MustNewCounter(name, help string, labels []string) *CounterVec {
	return must(c.NewCounter(name, help, labels))
}

// NewGauge 创建并注册 Gauge
func (c *Client) NewGauge(name, help string, labels []string) (*GaugeVec, error) {
	return register(c, name, func() *GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: c.config.Namespace,
			Subsystem: c.config.Subsystem,
			Name:      name,
			Help:      help,
		}, labels)
	})
}

// MustNewGauge 创建 Gauge，失败则 panic
func (c *Client) MustNewGauge(name, help string, labels []string) *GaugeVec {
	return must(c.NewGauge(name, help, labels))
}

// NewHistogram 创建并注册 Histogram，buckets 为 nil 时使用默认分桶
func (c *Client) NewHistogram(name, help string, labels []string, buckets []float64) (*HistogramVec, error) {
	if buckets == nil {
		buckets = prometheus.DefBuckets
	}
	return register(c, name, func() *HistogramVec {
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: c.config.Namespace,
			Subsystem: c.config.Subsystem,
			Name:      name,
			Help:      help,
			Buckets:   buckets,
		}, labels)
	})
}

// MustNewHistogram 创建 Histogram，失败则 panic
func (c *Client) MustNewHistogram(name, help string, labels []string, buckets []float64) *HistogramVec {
	return must(c.NewHistogram(name, help, labels, buckets))
}

// Get 获取已注册的指标
func (c *Client) Get(name string) (Collector, bool) {
	v, ok := c.metrics.Load(name)
	if !ok || v == nil {
		return nil, false
	}
	return v.(Collector), true
}

// RegisterCollector 注册自定义采集器
func (c *Client) RegisterCollector(collector Collector) error {
	if c.IsClosed() {
		return ErrClientClosed
	}
	return c.registry.Register(collector)
}
