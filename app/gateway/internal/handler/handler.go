// Package handler 网关状态与控制接口
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/aagateway/pkg/app"
	"github.com/lk2023060901/aagateway/pkg/bridge"
	"github.com/lk2023060901/aagateway/pkg/logger"
	"github.com/lk2023060901/aagateway/pkg/metrics/system"
	"github.com/lk2023060901/aagateway/pkg/web"
	weberrors "github.com/lk2023060901/aagateway/pkg/web/errors"
)

// SessionController 会话控制
type SessionController interface {
	StartSession() (bridge.Snapshot, error)
	CancelSession() (bridge.Snapshot, bool)
	Current() (bridge.Snapshot, bool)
}

// StatsProvider 主机资源统计
type StatsProvider interface {
	Stats() system.Stats
}

// SessionHandler 会话相关 HTTP 接口
type SessionHandler struct {
	sessions SessionController
	stats    StatsProvider
	metrics  http.Handler
	logger   logger.Logger
}

// NewSessionHandler stats 与 metrics 可为 nil，对应路由不注册
func NewSessionHandler(sessions SessionController, stats StatsProvider, metrics http.Handler, l logger.Logger) *SessionHandler {
	if l == nil {
		l = logger.NewNoop()
	}
	return &SessionHandler{
		sessions: sessions,
		stats:    stats,
		metrics:  metrics,
		logger:   l.Named("handler.session"),
	}
}

// Register 注册路由
func (h *SessionHandler) Register(r gin.IRouter) {
	r.GET("/health", h.Health)
	if h.metrics != nil {
		r.GET("/metrics", gin.WrapH(h.metrics))
	}

	api := r.Group("/api")
	{
		api.GET("/version", h.Version)
		api.GET("/session", h.Get)
		api.POST("/session/start", h.Start)
		api.POST("/session/cancel", h.Cancel)
		if h.stats != nil {
			api.GET("/system", h.System)
		}
	}
}

// Health 存活检查
func (h *SessionHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Version 版本信息
func (h *SessionHandler) Version(c *gin.Context) {
	web.Success(c, app.GetInfo())
}

// Get 当前或最近一次会话，scope=active 时只返回未结束的会话
func (h *SessionHandler) Get(c *gin.Context) {
	scope := web.GetQuery(c, "scope", "last")
	if scope != "last" && scope != "active" {
		web.Fail(c, weberrors.CodeInvalidParams, "scope must be last or active")
		return
	}
	snap, ok := h.sessions.Current()
	if !ok || (scope == "active" && snap.State == bridge.StateStopped) {
		web.Fail(c, weberrors.CodeNotFound, "no session")
		return
	}
	web.Success(c, snap)
}

// Start 手动开始会话
func (h *SessionHandler) Start(c *gin.Context) {
	snap, err := h.sessions.StartSession()
	switch {
	case errors.Is(err, bridge.ErrSessionActive):
		web.Fail(c, weberrors.CodeConflict, err.Error())
	case err != nil:
		h.logger.Error("start session", "error", err)
		web.Fail(c, weberrors.CodeUnavailable, err.Error())
	default:
		h.logger.Info("session started via api", "session_id", snap.ID)
		web.Success(c, snap)
	}
}

// Cancel 取消活跃会话
func (h *SessionHandler) Cancel(c *gin.Context) {
	snap, ok := h.sessions.CancelSession()
	if !ok {
		web.Fail(c, weberrors.CodeNotFound, "no active session")
		return
	}
	h.logger.Info("session cancelled via api", "session_id", snap.ID)
	web.Success(c, snap)
}

// System 主机资源占用
func (h *SessionHandler) System(c *gin.Context) {
	web.Success(c, h.stats.Stats())
}
