package bridge

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/lk2023060901/aagateway/pkg/power"
	"github.com/lk2023060901/aagateway/pkg/session"
	"github.com/lk2023060901/aagateway/pkg/util/conc"
	"go.uber.org/atomic"
)

var _ session.Session = (*Session)(nil)

// Session 一次桥接尝试
//
// 由 Orchestrator 创建并独占驱动；外部只读取状态或调用 Cancel。
type Session struct {
	base     *session.BaseSession
	role     Role
	timeouts Timeouts
	started  time.Time

	state  atomic.Int32
	reason atomic.Uint32
	gate   *Gate

	mu      sync.RWMutex
	status  string
	history []string
	states  []State
	link    *LinkInfo
	linkUp  bool
	err     error
	tasks   []*conc.Future[struct{}]

	onStatus func(*Session, string)
	onState  func(*Session, State)
	recorder Recorder

	done chan struct{}
}

func newSession(parent context.Context, role Role, timeouts Timeouts) *Session {
	s := &Session{
		base:     session.NewBaseSession(parent),
		role:     role,
		timeouts: timeouts,
		started:  time.Now(),
		gate:     NewGate(),
		states:   []State{StateIdle},
		recorder: nopRecorder{},
		done:     make(chan struct{}),
	}
	return s
}

// ID 会话 ID
func (s *Session) ID() string { return s.base.ID() }

// Context 会话上下文，会话停止或取消时 Done
func (s *Session) Context() context.Context { return s.base.Context() }

// Role 会话角色
func (s *Session) Role() Role { return s.role }

// Timeouts 本次会话生效的超时
func (s *Session) Timeouts() Timeouts { return s.timeouts }

// State 当前状态
func (s *Session) State() State { return State(s.state.Load()) }

// States 依次经过的状态
func (s *Session) States() []State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]State(nil), s.states...)
}

// Gate 传输就绪闸门
func (s *Session) Gate() *Gate { return s.gate }

// RejectionReason 本次会话的拒绝原因（客户端为本地计算值，网关为对端发送值）
func (s *Session) RejectionReason() power.RejectionReason {
	return power.RejectionReason(s.reason.Load())
}

// Status 最近一条状态文本
func (s *Session) Status() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// StatusHistory 全部状态文本
func (s *Session) StatusHistory() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.history...)
}

// Link 链路信息，链路未建立时为 nil
func (s *Session) Link() *LinkInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.link
}

// Err 停止原因，未停止时为 nil
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Done 会话进入 Stopped 且资源释放完毕时关闭
func (s *Session) Done() <-chan struct{} { return s.done }

// Wait 等待会话停止并返回停止原因
func (s *Session) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return s.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel 请求取消会话，返回 false 表示会话已在停止
func (s *Session) Cancel() bool {
	return s.base.Cancel(ErrCancelled)
}

// track 登记由会话关闭的传输，会话已取消时立即关闭并返回 false
func (s *Session) track(c io.Closer) bool {
	return s.base.Track(c)
}

func (s *Session) transition(state State) {
	s.state.Store(int32(state))
	s.mu.Lock()
	s.states = append(s.states, state)
	s.mu.Unlock()

	s.recorder.StateChanged(s.role, state)
	if s.onState != nil {
		s.onState(s, state)
	}
}

func (s *Session) setStatus(msg string) {
	s.mu.Lock()
	s.status = msg
	s.history = append(s.history, msg)
	s.mu.Unlock()

	if s.onStatus != nil {
		s.onStatus(s, msg)
	}
}

func (s *Session) setRejection(reason power.RejectionReason) {
	s.reason.Store(uint32(reason))
}

func (s *Session) setLink(info *LinkInfo) {
	s.mu.Lock()
	s.link = info
	s.linkUp = true
	s.mu.Unlock()
}

func (s *Session) isLinkUp() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.linkUp
}

func (s *Session) addTask(f *conc.Future[struct{}]) {
	s.mu.Lock()
	s.tasks = append(s.tasks, f)
	s.mu.Unlock()
}

// waitTasks 等待会话派生的全部任务退出
func (s *Session) waitTasks() {
	s.mu.RLock()
	tasks := append([]*conc.Future[struct{}](nil), s.tasks...)
	s.mu.RUnlock()
	_ = conc.AwaitAll(tasks...)
}

func (s *Session) stop(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	s.transition(StateStopped)
	close(s.done)
}

// Snapshot 会话只读视图
type Snapshot struct {
	ID              string    `json:"id"`
	Role            Role      `json:"role"`
	State           State     `json:"state"`
	Status          string    `json:"status"`
	USBReady        bool      `json:"usb_ready"`
	NetworkReady    bool      `json:"network_ready"`
	RejectionReason uint8     `json:"rejection_reason"`
	Timeouts        Timeouts  `json:"timeouts"`
	Link            *LinkInfo `json:"link,omitempty"`
	StartedAt       time.Time `json:"started_at"`
	StopReason      string    `json:"stop_reason,omitempty"`
}

// Snapshot 返回当前状态快照
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		ID:              s.ID(),
		Role:            s.role,
		State:           s.State(),
		Status:          s.Status(),
		USBReady:        s.gate.USBReady(),
		NetworkReady:    s.gate.NetworkReady(),
		RejectionReason: uint8(s.RejectionReason()),
		Timeouts:        s.timeouts,
		Link:            s.Link(),
		StartedAt:       s.started,
		StopReason:      Reason(s.Err()),
	}
}
