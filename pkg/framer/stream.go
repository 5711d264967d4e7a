package framer

import (
	"encoding/binary"
	"io"
)

const (
	streamHeaderSize   = 4
	extendedHeaderSize = 8

	// extendedFlag 出现在帧头第 2 个字节时，帧头扩展为 8 字节
	extendedFlag = 9

	// MaxStreamFrame 数据通道单帧最大长度
	MaxStreamFrame = extendedHeaderSize + 0xFFFF
)

// StreamReader 按数据通道帧格式切分字节流
//
// 帧头 4 字节，header[1] == 9 时为 8 字节；载荷长度为 header[2:4] 大端序。
// Next 返回的切片在下一次调用前有效。
type StreamReader struct {
	r   io.Reader
	buf []byte
}

// NewStreamReader 创建读取器，buf 为 nil 或容量不足时自行分配
func NewStreamReader(r io.Reader, buf []byte) *StreamReader {
	if cap(buf) < MaxStreamFrame {
		buf = make([]byte, MaxStreamFrame)
	}
	return &StreamReader{r: r, buf: buf[:MaxStreamFrame]}
}

// Next 读取下一帧，返回 header || payload
func (s *StreamReader) Next() ([]byte, error) {
	if _, err := io.ReadFull(s.r, s.buf[:streamHeaderSize]); err != nil {
		return nil, truncated(err)
	}

	offset := streamHeaderSize
	if s.buf[1] == extendedFlag {
		if _, err := io.ReadFull(s.r, s.buf[streamHeaderSize:extendedHeaderSize]); err != nil {
			return nil, truncated(err)
		}
		offset = extendedHeaderSize
	}

	length := int(binary.BigEndian.Uint16(s.buf[2:4]))
	end := offset + length
	if _, err := io.ReadFull(s.r, s.buf[offset:end]); err != nil {
		return nil, truncated(err)
	}
	return s.buf[:end], nil
}

// CopyFrames 逐帧从 r 复制到 w，每帧一次 Write，onFrame 可为 nil
func CopyFrames(w io.Writer, r *StreamReader, onFrame func(frame []byte)) error {
	for {
		frame, err := r.Next()
		if err != nil {
			return err
		}
		if _, err := w.Write(frame); err != nil {
			return err
		}
		if onFrame != nil {
			onFrame(frame)
		}
	}
}
