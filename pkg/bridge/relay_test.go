package bridge

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRecorder struct {
	nopRecorder
	relayed chan int
}

func (r *countingRecorder) Relayed(_ Direction, n int) { r.relayed <- n }

func runRelay(t *testing.T, usb *fakeAccessory, network net.Conn, m Recorder) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() {
		done <- NewRelay(usb, network, 0, nil, m).WithTrafficDump(true).Run(context.Background())
	}()
	return done
}

func TestRelayWritesWholeFrameToUSB(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"extended header", []byte{0x03, 0x09, 0x00, 0x05, 0xE0, 0xE1, 0xE2, 0xE3, 1, 2, 3, 4, 5}},
		{"short header", []byte{0x03, 0x00, 0x00, 0x05, 1, 2, 3, 4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usb := newFakeAccessory()
			local, remote := net.Pipe()
			rec := &countingRecorder{relayed: make(chan int, 4)}
			done := runRelay(t, usb, local, rec)

			// 逐字节写入，验证 USB 仍然只收到一次完整写入
			for _, b := range tt.input {
				_, err := remote.Write([]byte{b})
				require.NoError(t, err)
			}

			select {
			case got := <-usb.writes:
				assert.Equal(t, tt.input, got)
			case <-time.After(2 * time.Second):
				t.Fatal("no usb write")
			}
			assert.Equal(t, len(tt.input), <-rec.relayed)
			assert.Empty(t, usb.writes)

			require.NoError(t, remote.Close())
			err := <-done
			assert.ErrorIs(t, err, ErrRelayIO)
			assert.ErrorIs(t, err, errNetworkPump)
		})
	}
}

func TestRelayClosesBothSidesOnError(t *testing.T) {
	usb := newFakeAccessory()
	usb.chunk = []byte{1, 2, 3}
	usb.failAfter = 1000

	local, remote := net.Pipe()
	done := runRelay(t, usb, local, nil)

	buf := make([]byte, 3)
	total := 0
	for {
		n, err := remote.Read(buf)
		total += n
		if err != nil {
			break
		}
	}
	assert.Equal(t, 3000, total)

	err := <-done
	assert.ErrorIs(t, err, ErrRelayIO)
	assert.ErrorIs(t, err, errUSBPump)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, int32(1), usb.closes.Load())
	assert.Equal(t, "relay failed: usb to network: boom", err.Error())
}

func TestRelayStopsOnContextCancel(t *testing.T) {
	usb := newFakeAccessory()
	local, remote := net.Pipe()
	defer remote.Close()

	ctx, cancel := context.WithCancelCause(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewRelay(usb, local, 0, nil, nil).Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel(ErrCancelled)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrCancelled)
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop")
	}
	assert.Equal(t, int32(1), usb.closes.Load())
}
