package framer

import "errors"

var (
	// ErrTruncated 可用字节不足一个完整的帧头或载荷
	ErrTruncated = errors.New("framer: truncated frame")

	// ErrPayloadTooLarge 载荷超过 16 位长度字段上限
	ErrPayloadTooLarge = errors.New("framer: payload exceeds 65535 bytes")
)
