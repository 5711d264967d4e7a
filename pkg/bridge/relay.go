package bridge

import (
	"context"
	"encoding/hex"
	"io"

	"github.com/lk2023060901/aagateway/pkg/framer"
	"github.com/lk2023060901/aagateway/pkg/logger"
	"github.com/lk2023060901/aagateway/pkg/pool/bytebuff"
	"golang.org/x/sync/errgroup"
)

// Direction 中继方向
type Direction string

const (
	USBToNetwork Direction = "usb_to_network"
	NetworkToUSB Direction = "network_to_usb"
)

// Relay 双向中继
//
// USB -> 网络按块原样转发；网络 -> USB 按数据通道帧头重新切分，
// 每帧一次写入。任一方向结束即结束整个中继，并关闭两端传输
// 使另一方向阻塞中的读取立即返回。
type Relay struct {
	usb     io.ReadWriteCloser
	network io.ReadWriteCloser

	bufferSize int
	dump       bool
	logger     logger.Logger
	metrics    Recorder
}

// NewRelay 创建中继，bufferSize <= 0 时使用 16 KiB
func NewRelay(usb, network io.ReadWriteCloser, bufferSize int, l logger.Logger, m Recorder) *Relay {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	if l == nil {
		l = logger.NewNoop()
	}
	if m == nil {
		m = nopRecorder{}
	}
	return &Relay{
		usb:        usb,
		network:    network,
		bufferSize: bufferSize,
		logger:     l,
		metrics:    m,
	}
}

// WithTrafficDump 以十六进制转储每次转发的数据
func (r *Relay) WithTrafficDump(enabled bool) *Relay {
	r.dump = enabled
	return r
}

// Run 阻塞直到任一方向出错或 ctx 取消，返回值带有 ErrRelayIO 标记
func (r *Relay) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	stop := context.AfterFunc(gctx, r.closeAll)
	defer stop()

	g.Go(func() error {
		if err := r.pumpUSB(); err != nil {
			return mark(tag(err, errUSBPump), ErrRelayIO, "usb to network")
		}
		return nil
	})
	g.Go(func() error {
		if err := r.pumpNetwork(); err != nil {
			return mark(tag(err, errNetworkPump), ErrRelayIO, "network to usb")
		}
		return nil
	})

	err := g.Wait()
	if ctx.Err() != nil {
		return context.Cause(ctx)
	}
	return err
}

func (r *Relay) closeAll() {
	if err := r.network.Close(); err != nil {
		r.logger.Debug("close network transport", "error", err)
	}
	if err := r.usb.Close(); err != nil {
		r.logger.Debug("close usb transport", "error", err)
	}
}

// pumpUSB USB -> 网络
func (r *Relay) pumpUSB() error {
	bufp := bytebuff.GetChunk(r.bufferSize)
	defer bytebuff.PutChunk(bufp)
	buf := *bufp

	for {
		n, err := r.usb.Read(buf)
		if n > 0 {
			if _, werr := r.network.Write(buf[:n]); werr != nil {
				return werr
			}
			r.metrics.Relayed(USBToNetwork, n)
			r.trace(USBToNetwork, buf[:n])
		}
		if err != nil {
			return err
		}
	}
}

// pumpNetwork 网络 -> USB
func (r *Relay) pumpNetwork() error {
	bufp := bytebuff.GetChunk(framer.MaxStreamFrame)
	defer bytebuff.PutChunk(bufp)

	reader := framer.NewStreamReader(r.network, *bufp)
	return framer.CopyFrames(r.usb, reader, func(frame []byte) {
		r.metrics.Relayed(NetworkToUSB, len(frame))
		r.trace(NetworkToUSB, frame)
	})
}

func (r *Relay) trace(dir Direction, b []byte) {
	if r.dump {
		r.logger.Debug("relayed", "direction", string(dir), "bytes", len(b), "dump", hex.Dump(b))
	}
}
