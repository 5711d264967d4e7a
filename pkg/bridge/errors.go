package bridge

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/aagateway/pkg/power"
	"github.com/lk2023060901/aagateway/pkg/tcp"
)

// 会话终止原因，错误文本即 Stopped 的 reason
var (
	ErrLinkBringUpFailed    = errors.New("link failed")
	ErrHandshakeTimedOut    = errors.New("handshake timed out")
	ErrHandshakeIO          = errors.New("handshake failed")
	ErrTransportTimedOut    = errors.New("transport timed out")
	ErrTransportUnavailable = errors.New("usb unavailable")
	ErrRelayIO              = errors.New("relay failed")
	ErrCancelled            = errors.New("cancelled")
	ErrPeerRejected         = errors.New("peer rejected")
	ErrRejectedLocally      = errors.New("rejected locally")
	ErrLinkLost             = errors.New("link lost")
	ErrLaunchFailed         = errors.New("launch failed")

	// ErrSessionActive 已有活跃会话时拒绝启动新会话
	ErrSessionActive = errors.New("bridge: session already active")
)

// 中继泵标记，用于区分状态文本
var (
	errUSBPump     = errors.New("usb pump")
	errNetworkPump = errors.New("network pump")
)

// markedError 使 errors.Is(err, ref) 成立，同时保留 cause 的错误链
type markedError struct {
	ref   error
	cause error
	quiet bool
}

func (e *markedError) Error() string {
	if e.quiet {
		return e.cause.Error()
	}
	return e.ref.Error() + ": " + e.cause.Error()
}

func (e *markedError) Unwrap() error { return e.cause }

func (e *markedError) Is(target error) bool { return target == e.ref }

// mark 为 cause 附加终止原因，cause 为 nil 时直接返回 sentinel
func mark(cause error, sentinel error, msg string) error {
	if cause == nil {
		return sentinel
	}
	return &markedError{ref: sentinel, cause: errors.Wrap(cause, msg)}
}

// tag 附加不改变错误文本的标记
func tag(err error, ref error) error {
	return &markedError{ref: ref, cause: err, quiet: true}
}

func rejected(sentinel error, reason power.RejectionReason) error {
	return &markedError{ref: sentinel, cause: errors.Newf("reason %d (%s)", uint8(reason), reason)}
}

// Reason 返回终止原因的简短描述
func Reason(err error) string {
	for _, sentinel := range []error{
		ErrCancelled,
		ErrLinkBringUpFailed,
		ErrHandshakeTimedOut,
		ErrHandshakeIO,
		ErrTransportTimedOut,
		ErrTransportUnavailable,
		ErrRelayIO,
		ErrPeerRejected,
		ErrRejectedLocally,
		ErrLinkLost,
		ErrLaunchFailed,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// statusText 会话停止时展示给用户的状态文本
func statusText(role Role, err error, reason power.RejectionReason) string {
	switch {
	case errors.Is(err, ErrCancelled):
		return StatusStopping
	case errors.Is(err, ErrLinkBringUpFailed):
		if role == RoleClient {
			return "Wifi connection failed"
		}
		return "Could not start wifi hotspot"
	case errors.Is(err, ErrHandshakeTimedOut):
		return "Initial handshake did not happen in time"
	case errors.Is(err, ErrHandshakeIO):
		return "Error in handshake"
	case errors.Is(err, ErrTransportTimedOut):
		if errors.Is(err, tcp.ErrAcceptTimeout) {
			return "Wireless client did not connect"
		}
		return "Error initializing TCP"
	case errors.Is(err, ErrTransportUnavailable):
		return "No USB accessory found"
	case errors.Is(err, ErrRelayIO):
		if errors.Is(err, errUSBPump) {
			return "Error in USB main loop"
		}
		return "Error in TCP main loop"
	case errors.Is(err, ErrPeerRejected), errors.Is(err, ErrRejectedLocally):
		return fmt.Sprintf("Rejected connection with reason %d", uint8(reason))
	case errors.Is(err, ErrLinkLost):
		return "Wifi connection lost"
	case errors.Is(err, ErrLaunchFailed):
		return "Could not start projection"
	default:
		return StatusStopping
	}
}

// 阶段状态文本
const (
	StatusStarted           = "Started"
	StatusStartingHotspot   = "Starting wifi hotspot"
	StatusWaitingClient     = "Waiting for wireless client"
	StatusHandshakeDone     = "Initial Handshake done"
	StatusWaitingTCP        = "Waiting for TCP"
	StatusWaitingUSB        = "Waiting for USB"
	StatusConnected         = "Connected!"
	StatusStopping          = "Stopping wireless connection"
	StatusConnectingGateway = "Connecting to gateway wifi"
	StatusProjectionStarted = "Started Android Auto"
)
