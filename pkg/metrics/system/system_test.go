package system

import (
	"testing"
	"time"

	"github.com/lk2023060901/aagateway/pkg/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	c, err := New(&Config{Interval: 10 * time.Millisecond})
	require.NoError(t, err)
	defer c.Close()

	assert.True(t, c.Stats().UpdatedAt.IsZero())
	require.NoError(t, c.Start())
	require.NoError(t, c.Start())

	first := c.Stats()
	assert.False(t, first.UpdatedAt.IsZero())
	assert.Positive(t, first.Goroutines)

	require.Eventually(t, func() bool {
		return c.Stats().UpdatedAt.After(first.UpdatedAt)
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, c.Stop())
	require.NoError(t, c.Stop())
}

func TestRegister(t *testing.T) {
	c, err := New(nil)
	require.NoError(t, err)
	defer c.Close()

	client, err := prometheus.New(prometheus.DefaultConfig())
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, c.Register(client))

	families, err := client.Registry().Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "aagateway_host_cpu_percent")
	assert.Contains(t, names, "aagateway_process_memory_percent")

	assert.Error(t, c.Register(client))
}
