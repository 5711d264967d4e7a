package bridge

import (
	"fmt"
	"strings"

	"github.com/lk2023060901/aagateway/pkg/wifiproto"
)

// Role 会话角色
type Role int8

const (
	// RoleGateway 持有 USB 附件、开启热点的一端
	RoleGateway Role = iota
	// RoleClient 连接网关热点、发起投屏的一端
	RoleClient
)

func (r Role) String() string {
	switch r {
	case RoleGateway:
		return "gateway"
	case RoleClient:
		return "client"
	default:
		return fmt.Sprintf("Role(%d)", int8(r))
	}
}

// UnmarshalText 支持配置中的 "gateway" / "client"
func (r *Role) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "gateway", "":
		*r = RoleGateway
	case "client":
		*r = RoleClient
	default:
		return fmt.Errorf("bridge: unknown role %q", text)
	}
	return nil
}

// MarshalText 实现 encoding.TextMarshaler
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// State 会话状态
type State int32

const (
	StateIdle State = iota
	StateLinkBringUp
	StateHandshaking
	StateAwaitingTransports
	StateRelaying
	// StateConnected 仅客户端：投屏已交给启动器，等待链路丢失或取消
	StateConnected
	StateStopped
)

var stateNames = [...]string{
	StateIdle:               "idle",
	StateLinkBringUp:        "link_bring_up",
	StateHandshaking:        "handshaking",
	StateAwaitingTransports: "awaiting_transports",
	StateRelaying:           "relaying",
	StateConnected:          "connected",
	StateStopped:            "stopped",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// MarshalText 实现 encoding.TextMarshaler
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// LinkInfo 无线链路描述，由 LinkProvider 填充一次，此后只读
//
// 网关端 Address 为热点自身地址，客户端为 DHCP 网关地址。
type LinkInfo struct {
	Address string `json:"address"`

	// 以下字段只在网关端有效，通过蓝牙发送给对端
	SSID            string                    `json:"ssid,omitempty"`
	Passphrase      string                    `json:"-"`
	BSSID           string                    `json:"bssid,omitempty"`
	SecurityMode    wifiproto.SecurityMode    `json:"security_mode,omitempty"`
	AccessPointType wifiproto.AccessPointType `json:"access_point_type,omitempty"`
}

// InfoResponse 转换为蓝牙控制通道上的热点参数消息
func (l *LinkInfo) InfoResponse() *wifiproto.InfoResponse {
	return &wifiproto.InfoResponse{
		SSID:            l.SSID,
		Key:             l.Passphrase,
		BSSID:           l.BSSID,
		SecurityMode:    l.SecurityMode,
		AccessPointType: l.AccessPointType,
	}
}
