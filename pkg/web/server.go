package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/aagateway/pkg/logger"
	"github.com/lk2023060901/aagateway/pkg/util/conc"
	"github.com/lk2023060901/aagateway/pkg/web/middleware"
	"github.com/lk2023060901/aagateway/pkg/web/validator"
)

// Server 状态接口 HTTP 服务
type Server struct {
	engine *gin.Engine
	config *Config
	logger logger.Logger

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	served   *conc.Future[struct{}]
}

// NewServer 创建 Web 服务并挂载日志与恢复中间件
func NewServer(cfg *Config, l logger.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if l == nil {
		l = logger.Default()
	}
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	validator.Init()

	engine := gin.New()
	engine.Use(middleware.Logger(l.Named("web.access")))
	engine.Use(middleware.Recovery(l))

	return &Server{
		engine: engine,
		config: cfg,
		logger: l.Named("web.server"),
	}
}

// Router 返回 Gin 引擎，用于注册路由
func (s *Server) Router() *gin.Engine {
	return s.engine
}

// Handler 返回 http.Handler 接口
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr 实际监听地址，未启动时为 nil
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start 监听端口并在后台提供服务，监听失败同步返回
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server != nil {
		return ErrServerAlreadyStarted
	}

	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:        s.engine,
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
	s.server, s.listener = srv, ln

	s.logger.Info("starting http server", "addr", ln.Addr().String())
	s.served = conc.Go(func() (struct{}, error) {
		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server exited", "error", err)
			return struct{}{}, err
		}
		return struct{}{}, nil
	})
	return nil
}

// Stop 优雅关闭，超过 ShutdownTimeout 后强制关闭
func (s *Server) Stop() error {
	s.mu.Lock()
	srv, served := s.server, s.served
	s.server, s.listener, s.served = nil, nil, nil
	s.mu.Unlock()
	if srv == nil {
		return ErrServerNotStarted
	}

	ctx := context.Background()
	if s.config.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()
	}
	if err := srv.Shutdown(ctx); err != nil {
		_ = srv.Close()
		return err
	}
	_, err := served.Await()
	s.logger.Info("http server stopped")
	return err
}
