package usb

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/lk2023060901/aagateway/pkg/logger"
)

// Handler 插拔回调，在 Run 所在的 goroutine 中串行调用
type Handler struct {
	Attached func(path string)
	Detached func(path string)
}

// Watcher 监听配件设备节点的出现与消失
type Watcher struct {
	config *Config
	logger logger.Logger
}

// NewWatcher 创建 Watcher
func NewWatcher(cfg *Config, l logger.Logger) *Watcher {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if l == nil {
		l = logger.NewNoop()
	}
	return &Watcher{config: cfg, logger: l.Named("usb")}
}

// Run 阻塞直到 ctx 结束；启动时设备已存在同样视为插入
func (w *Watcher) Run(ctx context.Context, h Handler) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("usb: create watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.config.Device)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("usb: watch %s: %w", dir, err)
	}
	w.logger.Info("watching accessory", "device", w.config.Device)

	var settle *time.Timer
	var settleC <-chan time.Time
	stopSettle := func() {
		if settle != nil {
			settle.Stop()
			settle, settleC = nil, nil
		}
	}
	defer stopSettle()

	attached := false
	arm := func() {
		stopSettle()
		settle = time.NewTimer(w.config.SettleDelay)
		settleC = settle.C
	}
	if Present(w.config.Device) {
		arm()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-settleC:
			settle, settleC = nil, nil
			if !attached && Present(w.config.Device) {
				attached = true
				w.logger.Info("accessory attached", "device", w.config.Device)
				if h.Attached != nil {
					h.Attached(w.config.Device)
				}
			}
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.config.Device) {
				continue
			}
			switch {
			case ev.Has(fsnotify.Create):
				arm()
			case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
				stopSettle()
				if attached {
					attached = false
					w.logger.Info("accessory detached", "device", w.config.Device)
					if h.Detached != nil {
						h.Detached(w.config.Device)
					}
				}
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}
