package session

import "sync"

// Registry 活跃会话登记表，可限制同时活跃的会话数
type Registry struct {
	mu       sync.RWMutex
	limit    int
	sessions map[string]Session
	order    []string
}

// NewRegistry 创建登记表，limit <= 0 表示不限
func NewRegistry(limit int) *Registry {
	return &Registry{
		limit:    limit,
		sessions: make(map[string]Session),
	}
}

// Acquire 登记会话，超过上限返回 ErrLimitReached
func (r *Registry) Acquire(s Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[s.ID()]; ok {
		return ErrDuplicateID
	}
	if r.limit > 0 && len(r.sessions) >= r.limit {
		return ErrLimitReached
	}
	r.sessions[s.ID()] = s
	r.order = append(r.order, s.ID())
	return nil
}

// Release 移除会话，重复调用无副作用
func (r *Registry) Release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return
	}
	delete(r.sessions, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Latest 最近登记且仍活跃的会话
func (r *Registry) Latest() (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.order) == 0 {
		return nil, false
	}
	return r.sessions[r.order[len(r.order)-1]], true
}
