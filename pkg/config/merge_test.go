package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mergeRetry struct {
	Interval time.Duration
	Deadline time.Duration
}

type mergeTestConfig struct {
	Host     string
	Port     int
	Fallback bool
	Retry    mergeRetry
	Labels   map[string]string
	Peers    []string
	Extra    *mergeRetry
}

func TestMergeConfig(t *testing.T) {
	tests := []struct {
		name string
		dst  *mergeTestConfig
		src  *mergeTestConfig
		want *mergeTestConfig
	}{
		{
			name: "scalar override",
			dst:  &mergeTestConfig{Host: "0.0.0.0", Port: 5288},
			src:  &mergeTestConfig{Port: 6000, Fallback: true},
			want: &mergeTestConfig{Host: "0.0.0.0", Port: 6000, Fallback: true},
		},
		{
			name: "zero values keep defaults",
			dst:  &mergeTestConfig{Host: "0.0.0.0", Retry: mergeRetry{Interval: time.Second, Deadline: time.Minute}},
			src:  &mergeTestConfig{Retry: mergeRetry{Deadline: 5 * time.Second}},
			want: &mergeTestConfig{Host: "0.0.0.0", Retry: mergeRetry{Interval: time.Second, Deadline: 5 * time.Second}},
		},
		{
			name: "maps merge slices replace",
			dst:  &mergeTestConfig{Labels: map[string]string{"a": "1"}, Peers: []string{"x"}},
			src:  &mergeTestConfig{Labels: map[string]string{"b": "2"}, Peers: []string{"y", "z"}},
			want: &mergeTestConfig{Labels: map[string]string{"a": "1", "b": "2"}, Peers: []string{"y", "z"}},
		},
		{
			name: "nil pointer allocated",
			dst:  &mergeTestConfig{},
			src:  &mergeTestConfig{Extra: &mergeRetry{Interval: time.Millisecond}},
			want: &mergeTestConfig{Extra: &mergeRetry{Interval: time.Millisecond}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MergeConfig(tt.dst, tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMergeConfigNil(t *testing.T) {
	_, err := MergeConfig[mergeTestConfig](nil, nil)
	assert.ErrorIs(t, err, ErrNilConfig)

	src := &mergeTestConfig{Port: 1}
	got, err := MergeConfig(nil, src)
	require.NoError(t, err)
	assert.Same(t, src, got)

	dst := &mergeTestConfig{Port: 2}
	got, err = MergeConfig(dst, nil)
	require.NoError(t, err)
	assert.Same(t, dst, got)
}
