package bridge

import (
	"net"
	"strconv"
	"time"

	"github.com/lk2023060901/aagateway/pkg/config"
	"github.com/lk2023060901/aagateway/pkg/power"
	"github.com/lk2023060901/aagateway/pkg/tcp"
)

const (
	DefaultControlPort = 5287
	DefaultDataPort    = 5288
	DefaultBufferSize  = 16 * 1024
)

// Config 会话配置，在会话开始时读取一次
type Config struct {
	Role Role `mapstructure:"role" json:"role"`

	// 对端蓝牙地址，网关用它发起配对
	PeerAddress string `mapstructure:"peer_address" json:"peer_address" validate:"omitempty,mac"`

	// 常规超时
	HandshakeTimeout  time.Duration `mapstructure:"handshake_timeout" json:"handshake_timeout" validate:"gt=0"`
	ConnectionTimeout time.Duration `mapstructure:"connection_timeout" json:"connection_timeout" validate:"gt=0"`

	// 开启后无线连接失败时回退到有线投屏，并使用更短的超时
	USBFallback               bool          `mapstructure:"usb_fallback" json:"usb_fallback"`
	FallbackHandshakeTimeout  time.Duration `mapstructure:"fallback_handshake_timeout" json:"fallback_handshake_timeout" validate:"gt=0"`
	FallbackConnectionTimeout time.Duration `mapstructure:"fallback_connection_timeout" json:"fallback_connection_timeout" validate:"gt=0"`

	// 握手连接建立后读取单字节的超时
	HandshakeReadTimeout time.Duration `mapstructure:"handshake_read_timeout" json:"handshake_read_timeout" validate:"gt=0"`

	// 数据连接每次读写的空闲超时
	IdleTimeout time.Duration `mapstructure:"idle_timeout" json:"idle_timeout" validate:"gte=0"`

	ListenHost  string `mapstructure:"listen_host" json:"listen_host"`
	ControlPort int    `mapstructure:"control_port" json:"control_port" validate:"gte=0,lte=65535"`
	DataPort    int    `mapstructure:"data_port" json:"data_port" validate:"gte=0,lte=65535"`

	// USB -> 网络方向单次读取的缓冲大小
	BufferSize int `mapstructure:"buffer_size" json:"buffer_size" validate:"gte=512,lte=65536"`

	// 以十六进制转储中继流量（debug 级别）
	LogCommunication bool `mapstructure:"log_communication" json:"log_communication"`

	// 对端发送非零拒绝原因时结束会话
	HonorPeerRejection bool `mapstructure:"honor_peer_rejection" json:"honor_peer_rejection"`

	Rejection    power.Policy    `mapstructure:"rejection" json:"rejection"`
	ConnectRetry tcp.RetryConfig `mapstructure:"connect_retry" json:"connect_retry"`

	// 蓝牙配对重试的总时限
	RadioTimeout time.Duration `mapstructure:"radio_timeout" json:"radio_timeout" validate:"gte=0"`
}

// Timeouts 本次会话实际生效的超时
type Timeouts struct {
	Handshake  time.Duration `json:"handshake"`
	Connection time.Duration `json:"connection"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Role:                      RoleGateway,
		HandshakeTimeout:          60 * time.Second,
		ConnectionTimeout:         180 * time.Second,
		FallbackHandshakeTimeout:  15 * time.Second,
		FallbackConnectionTimeout: 60 * time.Second,
		HandshakeReadTimeout:      10 * time.Second,
		IdleTimeout:               10 * time.Second,
		ControlPort:               DefaultControlPort,
		DataPort:                  DefaultDataPort,
		BufferSize:                DefaultBufferSize,
		ConnectRetry:              tcp.DefaultRetryConfig(),
		RadioTimeout:              30 * time.Second,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c == nil {
		return config.ErrNilConfig
	}
	return config.Validate(c)
}

// Timeouts 开启 USB 回退时使用回退超时
func (c *Config) Timeouts() Timeouts {
	if c.USBFallback {
		return Timeouts{Handshake: c.FallbackHandshakeTimeout, Connection: c.FallbackConnectionTimeout}
	}
	return Timeouts{Handshake: c.HandshakeTimeout, Connection: c.ConnectionTimeout}
}

// ControlAddr 控制端口监听地址
func (c *Config) ControlAddr() string {
	return net.JoinHostPort(c.ListenHost, strconv.Itoa(c.ControlPort))
}

// DataAddr 数据端口监听地址
func (c *Config) DataAddr() string {
	return net.JoinHostPort(c.ListenHost, strconv.Itoa(c.DataPort))
}
