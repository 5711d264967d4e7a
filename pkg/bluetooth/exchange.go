package bluetooth

import (
	"fmt"
	"io"

	"github.com/lk2023060901/aagateway/pkg/framer"
	"github.com/lk2023060901/aagateway/pkg/logger"
	"github.com/lk2023060901/aagateway/pkg/wifiproto"
)

// Exchange 在已连接的 RFCOMM 流上下发热点参数
//
// 发送 StartRequest，读取一帧应答；应答为 StartResponse 时发送 InfoRequest。
func Exchange(rw io.ReadWriter, start *wifiproto.StartRequest, info *wifiproto.InfoResponse, l logger.Logger) error {
	if l == nil {
		l = logger.NewNoop()
	}

	if err := framer.WriteFrame(rw, framer.StartRequest, start.Marshal()); err != nil {
		return fmt.Errorf("bluetooth: send start request: %w", err)
	}
	l.Debug("sent start request", "ip", start.IPAddress, "port", start.Port)

	resp, err := framer.ReadFrame(rw)
	if err != nil {
		return fmt.Errorf("bluetooth: read start response: %w", err)
	}
	l.Debug("read start response", "type", resp.Type, "length", len(resp.Payload))
	if resp.Type != framer.StartResponse {
		return fmt.Errorf("%w: %s", ErrUnexpectedResponse, resp.Type)
	}

	if err := framer.WriteFrame(rw, framer.InfoRequest, info.Marshal()); err != nil {
		return fmt.Errorf("bluetooth: send info request: %w", err)
	}
	l.Debug("sent info request", "ssid", info.SSID, "bssid", info.BSSID)
	return nil
}
