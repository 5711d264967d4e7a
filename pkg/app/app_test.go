package app

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lk2023060901/aagateway/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, s)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func server(r *recorder, name string, startErr error) Server {
	return ServerFuncs{
		StartFunc: func() error {
			r.add("start " + name)
			return startErr
		},
		StopFunc: func() error {
			r.add("stop " + name)
			return nil
		},
	}
}

func closer(r *recorder, name string) Closer {
	return CloserFunc(func() error {
		r.add("close " + name)
		return nil
	})
}

func TestBaseAppLifecycle(t *testing.T) {
	rec := &recorder{}
	a := NewBaseApp(WithLogger(logger.NewNoop()), WithName("test"))
	InitApp(a, AppComponents{
		Servers: []Server{server(rec, "a", nil), server(rec, "b", nil)},
		Closers: []Closer{closer(rec, "x"), closer(rec, "y")},
	})

	done := make(chan error, 1)
	go func() { done <- a.Run() }()

	require.Eventually(t, func() bool { return len(rec.list()) == 2 }, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, a.Run(), ErrAppAlreadyRunning)
	assert.NoError(t, a.Context().Err())

	require.NoError(t, a.Shutdown())
	require.NoError(t, <-done)
	assert.Error(t, a.Context().Err())

	assert.Equal(t, []string{
		"start a", "start b",
		"stop b", "stop a",
		"close y", "close x",
	}, rec.list())
}

func TestBaseAppStartFailure(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("boom")
	a := NewBaseApp(WithLogger(logger.NewNoop()))
	a.AppendServer(server(rec, "a", nil), server(rec, "b", boom), server(rec, "c", nil))
	a.AppendCloser(closer(rec, "x"))

	assert.ErrorIs(t, a.Run(), boom)
	assert.Equal(t, []string{"start a", "start b", "stop a", "close x"}, rec.list())
}

func TestLoggerFallback(t *testing.T) {
	a := NewBaseApp(WithLogger(logger.NewNoop()))
	assert.NotNil(t, a.Logger("bridge"))

	custom := logger.NewNoop()
	a.loggers.set("traffic", custom)
	assert.Same(t, custom, a.Logger("traffic"))
}

func TestNamedLoggersFromConfig(t *testing.T) {
	cfg := logger.DefaultConfig()
	a := NewBaseApp(
		WithLogger(logger.NewNoop()),
		WithNamedLoggers(map[string]*logger.Config{"status": cfg, "usb": cfg, "skipped": nil}),
	)
	assert.Equal(t, []string{"status", "usb"}, a.loggers.names())

	_, ok := a.loggers.get("skipped")
	assert.False(t, ok)
}

func TestDefaultAppName(t *testing.T) {
	exe := func(path string, err error) func() (string, error) {
		return func() (string, error) { return path, err }
	}
	assert.Equal(t, "aagateway-gateway", defaultAppName(exe("/usr/local/bin/gateway", nil)))
	assert.Equal(t, "aagateway-client", defaultAppName(exe("/opt/client.exe", nil)))
	assert.Equal(t, "aagateway", defaultAppName(exe("/usr/bin/aagateway", nil)))
	assert.Equal(t, "aagateway", defaultAppName(exe("", errors.New("no exe"))))
}

func TestGetInfo(t *testing.T) {
	info := GetInfo()
	assert.Equal(t, AppName, info.AppName)
	assert.False(t, info.StartedAt.IsZero())
	assert.NotEmpty(t, info.Uptime)
	assert.Contains(t, info.String(), info.AppName)
}
