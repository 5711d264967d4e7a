package tcp

import (
	"errors"
	"net"
	"time"
)

// idleConn 每次读写前刷新对应方向的截止时间
type idleConn struct {
	net.Conn
	timeout time.Duration
}

// WithIdleTimeout 包装连接，任一方向超过 timeout 无进展即返回超时错误
func WithIdleTimeout(conn net.Conn, timeout time.Duration) net.Conn {
	if timeout <= 0 {
		return conn
	}
	return &idleConn{Conn: conn, timeout: timeout}
}

func (c *idleConn) Read(b []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(b)
}

func (c *idleConn) Write(b []byte) (int, error) {
	if err := c.Conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Write(b)
}

func tune(conn net.Conn, noDelay bool) {
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(noDelay)
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
