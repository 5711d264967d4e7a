// Package framer 控制通道与数据通道的帧编解码
//
// 控制通道帧: length(u16 BE) | type(u16 BE) | payload[length]
package framer

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/lk2023060901/aagateway/pkg/pool/bytebuff"
)

// HeaderSize 控制通道帧头长度
const HeaderSize = 4

// MessageType 控制通道消息类型
type MessageType uint16

const (
	StartRequest  MessageType = 1
	StartResponse MessageType = 2
	InfoRequest   MessageType = 3
)

func (t MessageType) String() string {
	switch t {
	case StartRequest:
		return "StartRequest"
	case StartResponse:
		return "StartResponse"
	case InfoRequest:
		return "InfoRequest"
	default:
		return fmt.Sprintf("MessageType(%d)", uint16(t))
	}
}

// Frame 一个完整的控制通道帧
type Frame struct {
	Type    MessageType
	Payload []byte
}

// EncodeFrame 编码为 length || type || payload
func EncodeFrame(msgType MessageType, payload []byte) ([]byte, error) {
	if len(payload) > math.MaxUint16 {
		return nil, ErrPayloadTooLarge
	}
	out := make([]byte, HeaderSize+len(payload))
	putHeader(out, uint16(len(payload)), msgType)
	copy(out[HeaderSize:], payload)
	return out, nil
}

// DecodeFrameHeader 只解析前 4 个字节，类型不做校验
func DecodeFrameHeader(b []byte) (length uint16, msgType MessageType, err error) {
	if len(b) < HeaderSize {
		return 0, 0, ErrTruncated
	}
	return binary.BigEndian.Uint16(b[0:2]), MessageType(binary.BigEndian.Uint16(b[2:4])), nil
}

func putHeader(b []byte, length uint16, msgType MessageType) {
	binary.BigEndian.PutUint16(b[0:2], length)
	binary.BigEndian.PutUint16(b[2:4], uint16(msgType))
}

// ReadFrame 从流中读取一个完整帧
func ReadFrame(r io.Reader) (*Frame, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, truncated(err)
	}
	length, msgType, err := DecodeFrameHeader(header[:])
	if err != nil {
		return nil, err
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, truncated(err)
	}
	return &Frame{Type: msgType, Payload: payload}, nil
}

// WriteFrame 把帧头和载荷合并成一次写入
func WriteFrame(w io.Writer, msgType MessageType, payload []byte) error {
	if len(payload) > math.MaxUint16 {
		return ErrPayloadTooLarge
	}

	buf := bytebuff.GetBuffer()
	defer bytebuff.PutBuffer(buf)

	var header [HeaderSize]byte
	putHeader(header[:], uint16(len(payload)), msgType)
	buf.B = append(buf.B, header[:]...)
	buf.B = append(buf.B, payload...)

	_, err := w.Write(buf.B)
	return err
}

func truncated(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: %w", ErrTruncated, err)
	}
	return err
}
