package bridge

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

var errBoom = errors.New("boom")

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.ListenHost = "127.0.0.1"
	cfg.ControlPort = freePort(t)
	cfg.DataPort = freePort(t)
	cfg.HandshakeTimeout = 5 * time.Second
	cfg.ConnectionTimeout = 5 * time.Second
	cfg.HandshakeReadTimeout = 2 * time.Second
	cfg.IdleTimeout = 5 * time.Second
	cfg.ConnectRetry.Interval = 20 * time.Millisecond
	cfg.ConnectRetry.Deadline = 3 * time.Second
	return cfg
}

func addr(port int) string {
	return net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
}

// fakeLink 记录 BringUp/TearDown 次数
type fakeLink struct {
	info *LinkInfo
	err  error
	lost chan struct{}

	bringUps  atomic.Int32
	tearDowns atomic.Int32
}

func newFakeLink() *fakeLink {
	return &fakeLink{
		info: &LinkInfo{Address: "127.0.0.1", SSID: "aagw", Passphrase: "secret"},
		lost: make(chan struct{}),
	}
}

func (l *fakeLink) BringUp(ctx context.Context) (*LinkInfo, error) {
	l.bringUps.Inc()
	if l.err != nil {
		return nil, l.err
	}
	return l.info, nil
}

func (l *fakeLink) TearDown() error {
	l.tearDowns.Inc()
	return nil
}

func (l *fakeLink) Lost() <-chan struct{} { return l.lost }

// fakeRadio 记录蓝牙唤起次数与收到的链路信息
type fakeRadio struct {
	connects atomic.Int32
	links    chan LinkInfo
}

func (r *fakeRadio) Connect(ctx context.Context, peerAddress string, timeout time.Duration, link LinkInfo) error {
	r.connects.Inc()
	if r.links != nil {
		r.links <- link
	}
	return nil
}

// fakeAccessory 模拟 USB 附件
//
// failAfter > 0 时每次 Read 立即返回 chunk，第 failAfter+1 次返回 errBoom；
// 否则 Read 阻塞直到 feed 或 Close。
type fakeAccessory struct {
	feed   chan []byte
	writes chan []byte

	chunk     []byte
	failAfter int

	reads  atomic.Int32
	closes atomic.Int32
	once   sync.Once
	closed chan struct{}
}

func newFakeAccessory() *fakeAccessory {
	return &fakeAccessory{
		feed:   make(chan []byte, 16),
		writes: make(chan []byte, 64),
		closed: make(chan struct{}),
	}
}

func (a *fakeAccessory) Read(p []byte) (int, error) {
	n := int(a.reads.Inc())
	if a.failAfter > 0 {
		if n > a.failAfter {
			return 0, errBoom
		}
		return copy(p, a.chunk), nil
	}
	select {
	case b := <-a.feed:
		return copy(p, b), nil
	case <-a.closed:
		return 0, io.ErrClosedPipe
	}
}

func (a *fakeAccessory) Write(p []byte) (int, error) {
	select {
	case <-a.closed:
		return 0, io.ErrClosedPipe
	default:
	}
	a.writes <- append([]byte(nil), p...)
	return len(p), nil
}

func (a *fakeAccessory) Close() error {
	a.closes.Inc()
	a.once.Do(func() { close(a.closed) })
	return nil
}

func dialWhenReady(t *testing.T, address string) net.Conn {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		conn, err := net.Dial("tcp", address)
		if err == nil {
			return conn
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("nothing listening on %s", address)
	return nil
}

func sendReasonByte(t *testing.T, port int, reason byte) {
	t.Helper()
	conn := dialWhenReady(t, addr(port))
	defer conn.Close()
	_, err := conn.Write([]byte{reason})
	require.NoError(t, err)
}

func waitState(t *testing.T, s *Session, state State) {
	t.Helper()
	require.Eventually(t, func() bool { return s.State() == state }, 5*time.Second, 5*time.Millisecond,
		"session stuck in %s waiting for %s", s.State(), state)
}

func waitStopped(t *testing.T, s *Session, within time.Duration) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), within)
	defer cancel()
	select {
	case <-s.Done():
		return s.Err()
	case <-ctx.Done():
		t.Fatalf("session did not stop within %s, state %s", within, s.State())
		return nil
	}
}

func newTestOrchestrator(t *testing.T, cfg *Config, link LinkProvider, opts ...Option) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(cfg, link, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = o.Close(ctx)
	})
	return o
}
