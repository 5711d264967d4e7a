package tcp

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func serverConfig(addr string) *ServerConfig {
	cfg := DefaultServerConfig()
	cfg.Addr = addr
	return cfg
}

func TestServerConfigValidate(t *testing.T) {
	assert.ErrorIs(t, (*ServerConfig)(nil).Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, (&ServerConfig{}).Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, (&ServerConfig{Addr: ":1", AcceptTimeout: -1}).Validate(), ErrInvalidConfig)

	cfg := &ServerConfig{Addr: ":5288"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "tcp", cfg.Network)
}

func TestClientConfigValidate(t *testing.T) {
	assert.ErrorIs(t, (&ClientConfig{}).Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, (&ClientConfig{Addr: "x:1", Retry: RetryConfig{Deadline: time.Second}}).Validate(), ErrInvalidConfig)
	assert.NoError(t, (&ClientConfig{Addr: "x:1"}).Validate())
}

func TestAcceptorAcceptOne(t *testing.T) {
	cfg := serverConfig("127.0.0.1:0")
	cfg.AcceptTimeout = 2 * time.Second

	addrCh := make(chan net.Addr, 1)
	a, err := NewAcceptor(cfg, WithOnListen(func(addr net.Addr) { addrCh <- addr }))
	require.NoError(t, err)

	go func() {
		addr := <-addrCh
		conn, err := net.Dial("tcp", addr.String())
		if err == nil {
			_, _ = conn.Write([]byte("ping"))
			_ = conn.Close()
		}
	}()

	conn, err := a.AcceptOne(context.Background())
	require.NoError(t, err)
	defer conn.Close()

	buf := make([]byte, 4)
	_, err = io.ReadFull(conn, buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf))
}

func TestAcceptorTimeout(t *testing.T) {
	cfg := serverConfig("127.0.0.1:0")
	cfg.AcceptTimeout = 100 * time.Millisecond
	a, err := NewAcceptor(cfg)
	require.NoError(t, err)

	start := time.Now()
	_, err = a.AcceptOne(context.Background())
	assert.ErrorIs(t, err, ErrAcceptTimeout)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestAcceptorCancel(t *testing.T) {
	a, err := NewAcceptor(serverConfig("127.0.0.1:0"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err = a.AcceptOne(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAcceptorIdleTimeout(t *testing.T) {
	cfg := serverConfig("127.0.0.1:0")
	cfg.IdleTimeout = 100 * time.Millisecond

	addrCh := make(chan net.Addr, 1)
	a, err := NewAcceptor(cfg, WithOnListen(func(addr net.Addr) { addrCh <- addr }))
	require.NoError(t, err)

	hold := make(chan struct{})
	defer close(hold)
	go func() {
		conn, err := net.Dial("tcp", (<-addrCh).String())
		if err != nil {
			return
		}
		<-hold
		_ = conn.Close()
	}()

	conn, err := a.AcceptOne(context.Background())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Read(make([]byte, 1))
	require.Error(t, err)
	assert.True(t, isTimeout(err))
}

func TestConnectorRetriesUntilListening(t *testing.T) {
	addr := freeAddr(t)
	cfg := DefaultClientConfig()
	cfg.Addr = addr
	cfg.Retry = RetryConfig{Interval: 50 * time.Millisecond, Deadline: 3 * time.Second}
	c, err := NewConnector(cfg)
	require.NoError(t, err)

	accepted := make(chan struct{})
	time.AfterFunc(200*time.Millisecond, func() {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return
		}
		defer ln.Close()
		conn, err := ln.Accept()
		if err == nil {
			_ = conn.Close()
		}
		close(accepted)
	})

	conn, err := c.Dial(context.Background())
	require.NoError(t, err)
	_ = conn.Close()

	select {
	case <-accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("listener never accepted")
	}
}

func TestConnectorDeadline(t *testing.T) {
	cfg := DefaultClientConfig()
	cfg.Addr = freeAddr(t)
	cfg.Retry = RetryConfig{Interval: 50 * time.Millisecond, Deadline: 300 * time.Millisecond}
	c, err := NewConnector(cfg)
	require.NoError(t, err)

	start := time.Now()
	_, err = c.Dial(context.Background())
	assert.ErrorIs(t, err, ErrDialExhausted)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestConnectorCancel(t *testing.T) {
	cfg := DefaultClientConfig()
	cfg.Addr = freeAddr(t)
	cfg.Retry = RetryConfig{Interval: time.Second, Deadline: time.Minute}
	c, err := NewConnector(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	start := time.Now()
	_, err = c.Dial(ctx)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}
