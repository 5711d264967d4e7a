// Package wifiproto 蓝牙控制通道上交换的 Wi-Fi 协商消息
//
// 字段编号与对端 protobuf 定义保持一致:
//
//	message WifiStartRequest  { string ip_address = 1; uint32 port = 2; }
//	message WifiInfoResponse  { string ssid = 1; string key = 2; string bssid = 3;
//	                            SecurityMode security_mode = 4; AccessPointType access_point_type = 5; }
package wifiproto

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

var ErrMalformed = errors.New("wifiproto: malformed message")

// SecurityMode 无线安全模式
type SecurityMode int32

const (
	SecurityUnknown           SecurityMode = 0
	SecurityOpen              SecurityMode = 1
	SecurityWEP64             SecurityMode = 2
	SecurityWEP128            SecurityMode = 3
	SecurityWPAPersonal       SecurityMode = 4
	SecurityWPA2Personal      SecurityMode = 8
	SecurityWPAWPA2Personal   SecurityMode = 12
	SecurityWPAEnterprise     SecurityMode = 20
	SecurityWPA2Enterprise    SecurityMode = 24
	SecurityWPAWPA2Enterprise SecurityMode = 28
)

// AccessPointType 热点地址分配方式
type AccessPointType int32

const (
	AccessPointStatic  AccessPointType = 0
	AccessPointDynamic AccessPointType = 1
)

// StartRequest 告知对端网关地址与数据端口
type StartRequest struct {
	IPAddress string
	Port      uint32
}

// InfoResponse 热点连接参数
type InfoResponse struct {
	SSID            string
	Key             string
	BSSID           string
	SecurityMode    SecurityMode
	AccessPointType AccessPointType
}

// Marshal 编码，零值字段省略
func (m *StartRequest) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, m.IPAddress)
	b = appendVarint(b, 2, uint64(m.Port))
	return b
}

// Unmarshal 解码，未知字段跳过
func (m *StartRequest) Unmarshal(b []byte) error {
	*m = StartRequest{}
	return walk(b, func(num protowire.Number, typ protowire.Type, v []byte, n uint64) error {
		switch {
		case num == 1 && typ == protowire.BytesType:
			m.IPAddress = string(v)
		case num == 2 && typ == protowire.VarintType:
			m.Port = uint32(n)
		}
		return nil
	})
}

// Marshal 编码，零值字段省略
func (m *InfoResponse) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, m.SSID)
	b = appendString(b, 2, m.Key)
	b = appendString(b, 3, m.BSSID)
	b = appendVarint(b, 4, uint64(m.SecurityMode))
	b = appendVarint(b, 5, uint64(m.AccessPointType))
	return b
}

// Unmarshal 解码，未知字段跳过
func (m *InfoResponse) Unmarshal(b []byte) error {
	*m = InfoResponse{}
	return walk(b, func(num protowire.Number, typ protowire.Type, v []byte, n uint64) error {
		switch {
		case num == 1 && typ == protowire.BytesType:
			m.SSID = string(v)
		case num == 2 && typ == protowire.BytesType:
			m.Key = string(v)
		case num == 3 && typ == protowire.BytesType:
			m.BSSID = string(v)
		case num == 4 && typ == protowire.VarintType:
			m.SecurityMode = SecurityMode(int32(n))
		case num == 5 && typ == protowire.VarintType:
			m.AccessPointType = AccessPointType(int32(n))
		}
		return nil
	})
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

type fieldFunc func(num protowire.Number, typ protowire.Type, bytesVal []byte, varintVal uint64) error

func walk(b []byte, fn fieldFunc) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %w", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		var (
			bytesVal  []byte
			varintVal uint64
		)
		switch typ {
		case protowire.BytesType:
			bytesVal, n = protowire.ConsumeBytes(b)
		case protowire.VarintType:
			varintVal, n = protowire.ConsumeVarint(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return fmt.Errorf("%w: field %d: %w", ErrMalformed, num, protowire.ParseError(n))
		}
		b = b[n:]

		if err := fn(num, typ, bytesVal, varintVal); err != nil {
			return err
		}
	}
	return nil
}
