// Package power 根据电量与省电模式计算拒绝连接的原因位
package power

import "strings"

// RejectionReason 客户端拒绝会话的原因位掩码，0 表示接受
type RejectionReason uint8

const (
	// PowerSaveMode 省电模式开启
	PowerSaveMode RejectionReason = 1 << 0
	// InsufficientBattery 电量低于下限
	InsufficientBattery RejectionReason = 1 << 1
)

// Accepted 是否没有任何拒绝原因
func (r RejectionReason) Accepted() bool {
	return r == 0
}

// Has 是否包含指定原因位
func (r RejectionReason) Has(bit RejectionReason) bool {
	return r&bit != 0
}

func (r RejectionReason) String() string {
	if r == 0 {
		return "none"
	}
	var parts []string
	if r.Has(PowerSaveMode) {
		parts = append(parts, "power-save")
	}
	if r.Has(InsufficientBattery) {
		parts = append(parts, "low-battery")
	}
	if rest := r &^ (PowerSaveMode | InsufficientBattery); rest != 0 {
		parts = append(parts, "unknown")
	}
	return strings.Join(parts, "|")
}
