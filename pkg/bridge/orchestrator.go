// Package bridge 无线 USB 附件桥接的会话编排
//
// 网关: 建立热点 -> 控制通道握手 -> 等待 USB 与数据连接就绪 -> 双向中继。
// 客户端: 计算拒绝原因 -> 加入热点 -> 发送握手字节 -> 启动投屏并等待链路丢失。
// 任一阶段失败都会转为一次 Stopped，拆除链路并关闭全部传输，不自动重试。
package bridge

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/aagateway/pkg/logger"
	"github.com/lk2023060901/aagateway/pkg/power"
	"github.com/lk2023060901/aagateway/pkg/session"
	"github.com/lk2023060901/aagateway/pkg/util/conc"
)

const defaultPoolSize = 16

// Orchestrator 会话编排器，同一时刻只允许一个活跃会话
type Orchestrator struct {
	config *Config
	link   LinkProvider

	radio     RadioPairing
	launcher  Launcher
	fallback  FallbackHandler
	evaluator RejectionEvaluator
	recorder  Recorder
	logger    logger.Logger
	onStatus  func(*Session, string)
	onState   func(*Session, State)

	pool     *conc.Pool[struct{}]
	ownPool  bool
	registry *session.Registry

	onListen func(net.Addr)
}

// NewOrchestrator 创建编排器
func NewOrchestrator(cfg *Config, link LinkProvider, opts ...Option) (*Orchestrator, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if link == nil {
		return nil, errors.New("bridge: link provider is required")
	}

	o := &Orchestrator{
		config:   cfg,
		link:     link,
		recorder: nopRecorder{},
		logger:   logger.NewNoop(),
		registry: session.NewRegistry(1),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.Named("bridge")

	if o.pool == nil {
		pool, err := conc.NewPool[struct{}](defaultPoolSize)
		if err != nil {
			return nil, err
		}
		o.pool = pool
		o.ownPool = true
	}
	return o, nil
}

// Config 编排器配置
func (o *Orchestrator) Config() *Config {
	return o.config
}

// Start 启动会话并立即返回，ctx 决定会话的最长生命周期
//
// 网关角色下 accessory 为已打开的 USB 附件，所有权转交给会话；
// 为 nil 时会话以 ErrTransportUnavailable 停止。客户端角色忽略 accessory。
func (o *Orchestrator) Start(ctx context.Context, accessory io.ReadWriteCloser) (*Session, error) {
	s := newSession(ctx, o.config.Role, o.config.Timeouts())
	s.onStatus = o.onStatus
	s.onState = o.onState
	s.recorder = o.recorder

	if err := o.registry.Acquire(s); err != nil {
		s.base.Cancel(ErrSessionActive)
		return nil, ErrSessionActive
	}

	log := o.logger.WithFields("session_id", s.ID(), "role", s.role.String())
	log.Info("session started",
		"handshake_timeout", s.timeouts.Handshake,
		"connection_timeout", s.timeouts.Connection)
	o.recorder.SessionStarted(s.role)

	run := o.pool.Submit(func() (struct{}, error) {
		var err error
		defer func() {
			if r := recover(); r != nil {
				err = errors.Newf("bridge: session panicked: %v", r)
			}
			o.finish(s, err, log)
		}()

		if s.role == RoleClient {
			err = o.runClient(s, log)
		} else {
			err = o.runGateway(s, accessory, log)
		}
		return struct{}{}, nil
	})
	if run.Done() && run.Err() != nil {
		s.base.Cancel(run.Err())
		o.registry.Release(s.ID())
		return nil, errors.Wrap(run.Err(), "bridge: submit session")
	}
	return s, nil
}

// Active 当前活跃会话
func (o *Orchestrator) Active() (*Session, bool) {
	s, ok := o.registry.Latest()
	if !ok {
		return nil, false
	}
	return s.(*Session), true
}

// Close 取消活跃会话并等待其停止
func (o *Orchestrator) Close(ctx context.Context) error {
	if s, ok := o.Active(); ok {
		s.Cancel()
		if err := s.Wait(ctx); err != nil && ctx.Err() != nil {
			return err
		}
	}
	if o.ownPool {
		o.pool.Release()
	}
	return nil
}

// submit 在协程池中运行会话任务，finish 会等待这些任务退出
func (o *Orchestrator) submit(s *Session, fn func() error) *conc.Future[struct{}] {
	f := o.pool.Submit(func() (struct{}, error) {
		return struct{}{}, fn()
	})
	s.addTask(f)
	return f
}

func (o *Orchestrator) runGateway(s *Session, accessory io.ReadWriteCloser, log logger.Logger) error {
	ctx := s.Context()
	if accessory != nil && !s.track(accessory) {
		return context.Cause(ctx)
	}
	s.setStatus(StatusStarted)

	// 附件只在会话开始时检查一次，缺失时不建立热点也不唤起对端
	if accessory == nil {
		return ErrTransportUnavailable
	}

	s.transition(StateLinkBringUp)
	s.setStatus(StatusStartingHotspot)
	info, err := o.link.BringUp(ctx)
	if err != nil {
		return mark(err, ErrLinkBringUpFailed, "start hotspot")
	}
	s.setLink(info)
	log.Info("hotspot ready", "address", info.Address, "ssid", info.SSID)
	s.setStatus(StatusWaitingClient)
	o.pairRadio(s, info, log)

	s.transition(StateHandshaking)
	var peerReason power.RejectionReason
	handshake := o.submit(s, func() error {
		r, err := o.serveHandshake(ctx, s, log)
		peerReason = r
		return err
	})

	var conn net.Conn
	network := o.submit(s, func() error {
		c, err := o.acceptNetwork(ctx, s, log)
		if err != nil {
			return err
		}
		conn = c
		s.setStatus(StatusConnected)
		s.gate.MarkNetwork()
		if !s.gate.USBReady() {
			s.setStatus(StatusWaitingUSB)
		}
		return s.gate.Wait(ctx)
	})

	select {
	case <-handshake.Inner():
		if err := handshake.Err(); err != nil {
			return err
		}
	case <-network.Inner():
		// 网络侧只有在闸门打开后才会成功返回，而闸门要等握手完成
		return network.Err()
	case <-ctx.Done():
		return context.Cause(ctx)
	}

	s.setRejection(peerReason)
	if peerReason.Accepted() {
		s.setStatus(StatusHandshakeDone)
	} else {
		log.Warn("peer reported rejection", "reason", peerReason)
		if o.config.HonorPeerRejection {
			return rejected(ErrPeerRejected, peerReason)
		}
	}

	s.transition(StateAwaitingTransports)
	usb := o.submit(s, func() error {
		s.gate.MarkUSB()
		if !s.gate.NetworkReady() {
			s.setStatus(StatusWaitingTCP)
		}
		return s.gate.Wait(ctx)
	})

	select {
	case <-s.gate.Ready():
	case <-network.Inner():
		if err := network.Err(); err != nil {
			return err
		}
	case <-ctx.Done():
		return context.Cause(ctx)
	}
	if err := conc.AwaitAll(usb, network); err != nil {
		return err
	}

	s.transition(StateRelaying)
	log.Info("relay started", "remote", conn.RemoteAddr().String())
	return NewRelay(accessory, conn, o.config.BufferSize, log.Named("relay"), o.recorder).
		WithTrafficDump(o.config.LogCommunication).
		Run(ctx)
}

func (o *Orchestrator) runClient(s *Session, log logger.Logger) error {
	ctx := s.Context()
	s.setStatus(StatusStarted)

	var reason power.RejectionReason
	if o.evaluator != nil {
		reason = o.evaluator.Evaluate(ctx)
	}
	s.setRejection(reason)

	s.transition(StateLinkBringUp)
	if !reason.Accepted() {
		log.Info("connection will be rejected", "reason", reason)
		if o.config.Rejection.RefuseLocally {
			return rejected(ErrRejectedLocally, reason)
		}
	}

	s.setStatus(StatusConnectingGateway)
	info, err := o.link.BringUp(ctx)
	if err != nil {
		return mark(err, ErrLinkBringUpFailed, "join gateway wifi")
	}
	s.setLink(info)
	log.Info("joined gateway wifi", "gateway", info.Address)

	s.transition(StateHandshaking)
	handshake := o.submit(s, func() error {
		return o.sendReason(ctx, info.Address, reason, log)
	})

	if !reason.Accepted() {
		s.setStatus(fmt.Sprintf("Rejecting connection with reason %d", uint8(reason)))
		select {
		case <-handshake.Inner():
			if err := handshake.Err(); err != nil {
				log.Warn("rejection not delivered", "error", err)
			}
		case <-ctx.Done():
			return context.Cause(ctx)
		}
		return rejected(ErrRejectedLocally, reason)
	}

	if o.launcher != nil {
		if err := o.launcher.Launch(ctx, info.Address, o.config.DataPort); err != nil {
			return mark(err, ErrLaunchFailed, "launch projection")
		}
	}
	s.setStatus(StatusProjectionStarted)
	s.transition(StateConnected)

	var lost <-chan struct{}
	if w, ok := o.link.(LinkWatcher); ok {
		lost = w.Lost()
	}
	pending := handshake.Inner()
	for {
		select {
		case <-pending:
			// 原因为 0 时握手失败不影响会话
			if err := handshake.Err(); err != nil && ctx.Err() == nil {
				log.Warn("handshake not delivered", "error", err)
			}
			pending = nil
		case <-lost:
			return ErrLinkLost
		case <-ctx.Done():
			return context.Cause(ctx)
		}
	}
}

func (o *Orchestrator) pairRadio(s *Session, info *LinkInfo, log logger.Logger) {
	if o.radio == nil || o.config.PeerAddress == "" {
		return
	}
	link := *info
	o.submit(s, func() error {
		ctx := s.Context()
		if err := o.radio.Connect(ctx, o.config.PeerAddress, o.config.RadioTimeout, link); err != nil && ctx.Err() == nil {
			log.Warn("radio pairing failed", "peer", o.config.PeerAddress, "error", err)
		}
		return nil
	})
}

// finish 唯一的 Stopped 迁移：取消会话、等待任务、拆除链路、发出一条状态
func (o *Orchestrator) finish(s *Session, err error, log logger.Logger) {
	if cause := s.base.Cause(); cause != nil {
		if !errors.Is(cause, ErrCancelled) {
			cause = mark(cause, ErrCancelled, "context done")
		}
		err = cause
	}

	s.base.Cancel(err)
	s.waitTasks()

	if s.isLinkUp() {
		if terr := o.link.TearDown(); terr != nil {
			log.Warn("tear down link", "error", terr)
		}
	}
	o.registry.Release(s.ID())

	s.setStatus(statusText(s.role, err, s.RejectionReason()))
	s.stop(err)

	reason := Reason(err)
	o.recorder.SessionStopped(s.role, reason, time.Since(s.started))
	log.Info("session stopped", "reason", reason, "error", err)

	if o.shouldFallback(s, err) {
		log.Info("starting wired fallback")
		if ferr := o.fallback.Fallback(context.WithoutCancel(s.Context()), s.ID()); ferr != nil {
			log.Error("wired fallback failed", "error", ferr)
		}
	}
}

func (o *Orchestrator) shouldFallback(s *Session, err error) bool {
	return o.config.USBFallback &&
		o.fallback != nil &&
		s.role == RoleGateway &&
		!s.gate.NetworkReady() &&
		!errors.Is(err, ErrCancelled) &&
		!errors.Is(err, ErrTransportUnavailable)
}
