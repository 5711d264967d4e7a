package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Namespace = "test"
	cfg.EnableProcessCollector = false
	c, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"empty namespace", &Config{}, true},
		{"server without addr", &Config{Namespace: "x", HTTPServer: HTTPServerConfig{Enabled: true}}, true},
		{"server disabled", &Config{Namespace: "x"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	cfg := &Config{Namespace: "x", HTTPServer: HTTPServerConfig{Enabled: true, Addr: ":0"}}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "/metrics", cfg.HTTPServer.Path)
}

func TestRegisterMetrics(t *testing.T) {
	c := newTestClient(t)

	counter, err := c.NewCounter("frames_total", "frames", []string{"direction"})
	require.NoError(t, err)
	counter.WithLabelValues("usb_to_network").Add(3)

	_, err = c.NewCounter("frames_total", "frames", nil)
	assert.ErrorIs(t, err, ErrMetricExists)

	gauge := c.MustNewGauge("state", "state", nil)
	gauge.WithLabelValues().Set(2)

	hist := c.MustNewHistogram("duration_seconds", "duration", []string{"reason"}, nil)
	hist.WithLabelValues("cancelled").Observe(1.5)

	got, ok := c.Get("frames_total")
	require.True(t, ok)
	assert.Same(t, counter, got)

	_, ok = c.Get("missing")
	assert.False(t, ok)

	assert.Panics(t, func() { c.MustNewGauge("state", "state", nil) })
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := newTestClient(t)
	c.MustNewCounter("relay_bytes_total", "bytes", nil).WithLabelValues().Add(42)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "test_relay_bytes_total 42"))
}

func TestRegisterCollector(t *testing.T) {
	c := newTestClient(t)
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: "custom"})
	require.NoError(t, c.RegisterCollector(g))
	assert.Error(t, c.RegisterCollector(g))
}

func TestClientClose(t *testing.T) {
	c, err := New(&Config{Namespace: "x"})
	require.NoError(t, err)

	require.NoError(t, c.Close())
	assert.True(t, c.IsClosed())
	assert.ErrorIs(t, c.Close(), ErrClientClosed)

	_, err = c.NewCounter("late", "late", nil)
	assert.ErrorIs(t, err, ErrClientClosed)
}
