package app

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/lk2023060901/aagateway/pkg/logger"
)

// namedLoggers 按组件单独配置的日志，键为组件名（bridge、status、usb 等）
type namedLoggers struct {
	mu      sync.RWMutex
	loggers map[string]logger.Logger
}

func newNamedLoggers() *namedLoggers {
	return &namedLoggers{loggers: make(map[string]logger.Logger)}
}

// init 逐个创建，单个配置出错不影响其余组件
func (n *namedLoggers) init(configs map[string]*logger.Config) error {
	var errs []error
	for name, cfg := range configs {
		if cfg == nil {
			continue
		}
		l, err := logger.New(cfg)
		if err != nil {
			errs = append(errs, fmt.Errorf("logger %q: %w", name, err))
			continue
		}
		n.set(name, l.Named(name))
	}
	return errors.Join(errs...)
}

func (n *namedLoggers) set(name string, l logger.Logger) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.loggers[name] = l
}

func (n *namedLoggers) get(name string) (logger.Logger, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	l, ok := n.loggers[name]
	return l, ok
}

func (n *namedLoggers) names() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]string, 0, len(n.loggers))
	for name := range n.loggers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (n *namedLoggers) syncAll() {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, l := range n.loggers {
		_ = l.Sync()
	}
}
