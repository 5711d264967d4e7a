package bluetooth

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/lk2023060901/aagateway/pkg/framer"
	"github.com/lk2023060901/aagateway/pkg/wifiproto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDevicePath(t *testing.T) {
	path, err := devicePath("/org/bluez/hci0", "aa:bb:cc:dd:ee:0f")
	require.NoError(t, err)
	assert.Equal(t, "/org/bluez/hci0/dev_AA_BB_CC_DD_EE_0F", path)

	for _, bad := range []string{"", "aa:bb", "aaa:bb:cc:dd:ee:ff", "aa-bb-cc-dd-ee-ff"} {
		_, err := devicePath("/org/bluez/hci0", bad)
		assert.ErrorIs(t, err, ErrInvalidAddress, bad)
	}
}

func TestUUIDs(t *testing.T) {
	assert.Equal(t, "2b12becb-c5c0-4370-b19c-0917c72e852c", PairingUUID.String())
	assert.Equal(t, "4de17a00-52cb-11e6-bdf4-0800200c9a66", ListenerUUID.String())
	assert.Equal(t, PairingUUID.String(), DefaultConfig().ConnectUUID)
}

func TestRetry(t *testing.T) {
	t.Run("succeeds after failures", func(t *testing.T) {
		calls := 0
		attempts, err := retry(context.Background(), 5*time.Millisecond, time.Second, func() error {
			calls++
			if calls < 3 {
				return errors.New("not yet")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("times out", func(t *testing.T) {
		start := time.Now()
		_, err := retry(context.Background(), 20*time.Millisecond, 100*time.Millisecond, func() error {
			return errors.New("down")
		})
		assert.ErrorIs(t, err, ErrConnectTimeout)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := retry(ctx, time.Millisecond, time.Second, func() error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestExchange(t *testing.T) {
	gateway, peer := net.Pipe()
	defer gateway.Close()
	defer peer.Close()

	start := &wifiproto.StartRequest{IPAddress: "192.168.43.1", Port: 5288}
	info := &wifiproto.InfoResponse{
		SSID:            "aagw",
		Key:             "secret",
		BSSID:           "02:00:00:00:00:01",
		SecurityMode:    wifiproto.SecurityWPA2Personal,
		AccessPointType: wifiproto.AccessPointDynamic,
	}

	done := make(chan error, 1)
	go func() { done <- Exchange(gateway, start, info, nil) }()

	frame, err := framer.ReadFrame(peer)
	require.NoError(t, err)
	require.Equal(t, framer.StartRequest, frame.Type)
	var gotStart wifiproto.StartRequest
	require.NoError(t, gotStart.Unmarshal(frame.Payload))
	assert.Equal(t, *start, gotStart)

	require.NoError(t, framer.WriteFrame(peer, framer.StartResponse, nil))

	frame, err = framer.ReadFrame(peer)
	require.NoError(t, err)
	require.Equal(t, framer.InfoRequest, frame.Type)
	var gotInfo wifiproto.InfoResponse
	require.NoError(t, gotInfo.Unmarshal(frame.Payload))
	assert.Equal(t, *info, gotInfo)

	require.NoError(t, <-done)
}

func TestExchangeUnexpectedResponse(t *testing.T) {
	gateway, peer := net.Pipe()
	defer gateway.Close()
	defer peer.Close()

	done := make(chan error, 1)
	go func() {
		done <- Exchange(gateway, &wifiproto.StartRequest{}, &wifiproto.InfoResponse{}, nil)
	}()

	_, err := framer.ReadFrame(peer)
	require.NoError(t, err)
	require.NoError(t, framer.WriteFrame(peer, framer.MessageType(7), []byte{1}))

	assert.ErrorIs(t, <-done, ErrUnexpectedResponse)
}
