package bridge

import (
	"time"

	"github.com/lk2023060901/aagateway/pkg/prometheus"
)

// Recorder 会话与中继指标
type Recorder interface {
	SessionStarted(role Role)
	SessionStopped(role Role, reason string, elapsed time.Duration)
	StateChanged(role Role, state State)
	Relayed(dir Direction, n int)
}

type nopRecorder struct{}

func (nopRecorder) SessionStarted(Role) {}
func (nopRecorder) SessionStopped(Role, string, time.Duration) {}
func (nopRecorder) StateChanged(Role, State) {}
func (nopRecorder) Relayed(Direction, int) {}

// PromRecorder 基于 prometheus 的 Recorder
type PromRecorder struct {
	sessions *prometheus.CounterVec
	stopped  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	state    *prometheus.GaugeVec
	bytes    *prometheus.CounterVec
	frames   *prometheus.CounterVec
}

// NewPromRecorder 在 client 上注册会话指标
func NewPromRecorder(c *prometheus.Client) (*PromRecorder, error) {
	r := &PromRecorder{}
	var err error

	if r.sessions, err = c.NewCounter("sessions_started_total", "Sessions started", []string{"role"}); err != nil {
		return nil, err
	}
	if r.stopped, err = c.NewCounter("sessions_stopped_total", "Sessions stopped by reason", []string{"role", "reason"}); err != nil {
		return nil, err
	}
	if r.duration, err = c.NewHistogram("session_duration_seconds", "Session lifetime",
		[]string{"role"}, []float64{1, 5, 15, 60, 300, 900, 3600, 14400}); err != nil {
		return nil, err
	}
	if r.state, err = c.NewGauge("session_state", "Current session state (1 for the active state)", []string{"role", "state"}); err != nil {
		return nil, err
	}
	if r.bytes, err = c.NewCounter("relay_bytes_total", "Bytes relayed", []string{"direction"}); err != nil {
		return nil, err
	}
	if r.frames, err = c.NewCounter("relay_writes_total", "Writes performed by the relay", []string{"direction"}); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *PromRecorder) SessionStarted(role Role) {
	r.sessions.WithLabelValues(role.String()).Inc()
}

func (r *PromRecorder) SessionStopped(role Role, reason string, elapsed time.Duration) {
	r.stopped.WithLabelValues(role.String(), reason).Inc()
	r.duration.WithLabelValues(role.String()).Observe(elapsed.Seconds())
}

// StateChanged 只保留当前状态为 1
func (r *PromRecorder) StateChanged(role Role, state State) {
	for s := StateIdle; s <= StateStopped; s++ {
		v := 0.0
		if s == state {
			v = 1
		}
		r.state.WithLabelValues(role.String(), s.String()).Set(v)
	}
}

func (r *PromRecorder) Relayed(dir Direction, n int) {
	r.bytes.WithLabelValues(string(dir)).Add(float64(n))
	r.frames.WithLabelValues(string(dir)).Inc()
}
