package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCaptureLogger(t *testing.T, cfg *Config, opts ...Option) (*BaseLogger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.Format = JSONFormat
	cfg.Level = DebugLevel
	l, err := New(cfg, append(opts, WithWriter(buf))...)
	require.NoError(t, err)
	return l, buf
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	entry := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	return entry
}

func TestLoggerKeyValues(t *testing.T) {
	l, buf := newCaptureLogger(t, nil)

	l.Info("relay started", "session_id", "abc", "buffer", 16384)
	entry := lastEntry(t, buf)
	assert.Equal(t, "relay started", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "abc", entry["session_id"])
	assert.EqualValues(t, 16384, entry["buffer"])
}

func TestLoggerErrorValue(t *testing.T) {
	l, buf := newCaptureLogger(t, &Config{EnableStacktrace: false})

	l.Warn("pump ended", "error", errors.New("broken pipe"))
	entry := lastEntry(t, buf)
	assert.Equal(t, "broken pipe", entry["error"])
}

func TestLoggerOddKeyValues(t *testing.T) {
	l, buf := newCaptureLogger(t, nil)

	l.Debug("odd", "dangling")
	entry := lastEntry(t, buf)
	assert.Equal(t, "dangling", entry["!BADKEY"])
}

func TestLoggerNamedAndFields(t *testing.T) {
	l, buf := newCaptureLogger(t, nil)

	child := l.Named("bridge").WithFields("role", "gateway")
	child.Info("state changed")
	entry := lastEntry(t, buf)
	assert.Equal(t, "bridge", entry["logger"])
	assert.Equal(t, "gateway", entry["role"])
}

func TestLoggerContextSessionID(t *testing.T) {
	l, buf := newCaptureLogger(t, nil)

	ctx := WithSessionID(context.Background(), "s-1")
	l.InfoContext(ctx, "handshake done")
	assert.Equal(t, "s-1", lastEntry(t, buf)["session_id"])

	id, ok := SessionIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "s-1", id)

	_, ok = SessionIDFromContext(context.Background())
	assert.False(t, ok)
}

func TestLoggerRedactsPassphrase(t *testing.T) {
	l, buf := newCaptureLogger(t, nil)

	l.Info("hotspot up", "ssid", "AAGateway", "passphrase", "secret")
	entry := lastEntry(t, buf)
	assert.Equal(t, "AAGateway", entry["ssid"])
	assert.Equal(t, "***", entry["passphrase"])
}

func TestLoggerGlobalFields(t *testing.T) {
	l, buf := newCaptureLogger(t, &Config{GlobalFields: map[string]any{"device": "pi"}}, WithGlobalFields("app", "gateway"))

	l.Info("boot")
	entry := lastEntry(t, buf)
	assert.Equal(t, "pi", entry["device"])
	assert.Equal(t, "gateway", entry["app"])
}

func TestLoggerLevelFilter(t *testing.T) {
	buf := &bytes.Buffer{}
	l, err := New(&Config{Level: WarnLevel, Format: JSONFormat}, WithWriter(buf))
	require.NoError(t, err)

	l.Info("hidden")
	assert.Empty(t, buf.String())
	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{name: "console", cfg: Config{EnableConsole: true}},
		{name: "file without path", cfg: Config{EnableFile: true}, want: ErrInvalidOutputPath},
		{name: "no output", cfg: Config{}, want: ErrNoOutputEnabled},
		{name: "time rotation without interval", cfg: Config{EnableConsole: true, Rotation: RotationConfig{Type: RotationByTime}}, want: ErrInvalidRotation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestNoopLogger(t *testing.T) {
	var l Logger = NewNoop()
	l.Info("ignored", "k", "v")
	assert.Same(t, l, l.Named("x"))
	assert.NoError(t, l.Sync())
}

func TestDefaultLogger(t *testing.T) {
	custom := NewNoop()
	SetDefault(custom)
	t.Cleanup(func() { SetDefault(nil) })

	assert.Same(t, Logger(custom), Default())
	assert.NotNil(t, Named("x"))
}
