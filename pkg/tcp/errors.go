package tcp

import "errors"

var (
	// 配置错误
	ErrInvalidConfig = errors.New("tcp: invalid config")

	// 监听错误
	ErrAcceptTimeout = errors.New("tcp: accept timeout")
	ErrListenFailed  = errors.New("tcp: listen failed")

	// 连接错误
	ErrReadTimeout      = errors.New("tcp: read timeout")
	ErrConnectionClosed = errors.New("tcp: connection closed")
	ErrDialExhausted    = errors.New("tcp: dial retries exhausted")
)
