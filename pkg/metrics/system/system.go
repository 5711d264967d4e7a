// Package system 周期采集本进程与主机的资源占用
package system

import (
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/lk2023060901/aagateway/pkg/prometheus"
	"github.com/lk2023060901/aagateway/pkg/util/conc"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Config 采集配置
type Config struct {
	Interval time.Duration `mapstructure:"interval" json:"interval" validate:"gte=0"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{Interval: 5 * time.Second}
}

// Stats 一次采集结果
type Stats struct {
	CPUPercent        float64   `json:"cpu_percent"`
	MemoryPercent     float64   `json:"memory_percent"`
	MemoryBytes       uint64    `json:"memory_bytes"`
	Goroutines        int       `json:"goroutines"`
	HostCPUPercent    float64   `json:"host_cpu_percent"`
	HostMemoryPercent float64   `json:"host_memory_percent"`
	HostUptime        uint64    `json:"host_uptime_seconds"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Collector 系统指标收集器
type Collector struct {
	config *Config
	proc   *process.Process
	pool   *conc.Pool[struct{}]

	mu      sync.RWMutex
	stats   Stats
	stopCh  chan struct{}
	running bool
}

// New 创建系统指标收集器
func New(cfg *Config) (*Collector, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	pool, err := conc.NewPool[struct{}](1)
	if err != nil {
		return nil, err
	}
	return &Collector{config: cfg, proc: proc, pool: pool}, nil
}

// Start 立即采集一次并启动定期采集
func (c *Collector) Start() error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = true
	c.stopCh = make(chan struct{})
	stopCh := c.stopCh
	c.mu.Unlock()

	c.collect()

	interval := c.config.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	c.pool.Submit(func() (struct{}, error) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-stopCh:
				return struct{}{}, nil
			}
		}
	})
	return nil
}

// Stop 停止采集
func (c *Collector) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		close(c.stopCh)
		c.running = false
	}
	return nil
}

// Close 停止采集并释放协程池
func (c *Collector) Close() error {
	_ = c.Stop()
	c.pool.Release()
	return nil
}

func (c *Collector) collect() {
	var stats Stats

	if pct, err := c.proc.CPUPercent(); err == nil {
		stats.CPUPercent = pct
	}
	vm, vmErr := mem.VirtualMemory()
	if vmErr == nil {
		stats.HostMemoryPercent = vm.UsedPercent
	}
	if info, err := c.proc.MemoryInfo(); err == nil {
		stats.MemoryBytes = info.RSS
		if vmErr == nil && vm.Total > 0 {
			stats.MemoryPercent = float64(info.RSS) / float64(vm.Total) * 100
		}
	}
	if pcts, err := cpu.Percent(0, false); err == nil && len(pcts) > 0 {
		stats.HostCPUPercent = pcts[0]
	}
	if up, err := host.Uptime(); err == nil {
		stats.HostUptime = up
	}
	stats.Goroutines = runtime.NumGoroutine()
	stats.UpdatedAt = time.Now()

	c.mu.Lock()
	c.stats = stats
	c.mu.Unlock()
}

// Stats 最近一次采集结果
func (c *Collector) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// Register 以 GaugeFunc 形式把主机指标挂到 client
func (c *Collector) Register(client *prometheus.Client) error {
	gauges := []struct {
		name, help string
		value      func(Stats) float64
	}{
		{"host_cpu_percent", "Host CPU usage percent.", func(s Stats) float64 { return s.HostCPUPercent }},
		{"host_memory_percent", "Host memory usage percent.", func(s Stats) float64 { return s.HostMemoryPercent }},
		{"process_memory_percent", "Process RSS as percent of host memory.", func(s Stats) float64 { return s.MemoryPercent }},
	}
	for _, g := range gauges {
		value := g.value
		fn := promclient.NewGaugeFunc(promclient.GaugeOpts{
			Namespace: client.Namespace(),
			Name:      g.name,
			Help:      g.help,
		}, func() float64 { return value(c.Stats()) })
		if err := client.RegisterCollector(fn); err != nil {
			return err
		}
	}
	return nil
}
