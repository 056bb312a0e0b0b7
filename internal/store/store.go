// 包 store 提供单向数据流的 store 与 SQLite 快照持久化：
// - Store：按资源类型组合多个 reducer，串行归约 dispatch 的动作并通知订阅者
// - SQLite：保存/恢复 Substate 中的文章与归档分页信息
package store

import (
	"context"
	"sync"

	"go-rest-posts/internal/handler"
	"go-rest-posts/internal/metrics"
)

// InitAction 在创建 store 时分发一次，用于补齐持久化状态的缺失字段。
const InitAction = "@@INIT"

// Reducer 为单个状态切片的归约函数。
type Reducer func(handler.Substate, handler.Action) handler.Substate

// State 为 store 的完整状态：切片名 → Substate。
type State map[string]handler.Substate

// Store 不要求 reducer 自身加锁：所有归约都在 mu 保护下串行进行。
type Store struct {
	mu       sync.Mutex
	state    State
	reducers map[string]Reducer

	subMu  sync.Mutex
	nextID int
	subs   map[int]func()

	metrics *metrics.Metrics
}

// New 创建 store；initial 可来自快照（可能缺少 _initialized 标记）。
func New(reducers map[string]Reducer, initial State, m *metrics.Metrics) *Store {
	st := make(State, len(reducers))
	for name := range reducers {
		st[name] = initial[name]
	}
	s := &Store{state: st, reducers: reducers, subs: make(map[int]func()), metrics: m}
	s.Dispatch(handler.Action{Type: InitAction})
	return s
}

// Dispatch 将动作交给每个 reducer 归约，完成后通知订阅者。
func (s *Store) Dispatch(a handler.Action) {
	s.mu.Lock()
	next := make(State, len(s.state))
	for name, r := range s.reducers {
		next[name] = r(s.state[name], a)
	}
	s.state = next
	s.mu.Unlock()
	s.metrics.ObserveAction(a.Type)

	s.subMu.Lock()
	listeners := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.subMu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// GetState 返回当前状态（State 值，各 Substate 不会被原地修改）。
func (s *Store) GetState() any { return s.Snapshot() }

// Snapshot 返回当前状态的类型化视图。
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Substate 返回指定切片。
func (s *Store) Substate(name string) handler.Substate {
	return s.Snapshot()[name]
}

// Subscribe 注册状态变化监听，返回取消函数。
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// Run 在当前 store 上执行 thunk。
func (s *Store) Run(ctx context.Context, t handler.Thunk) (string, error) {
	return t(ctx, s.Dispatch, s.GetState)
}

// Selector 返回从完整状态中取出某切片的函数，供 FetchMore 与绑定层使用。
func Selector(name string) func(state any) handler.Substate {
	return func(state any) handler.Substate {
		if st, ok := state.(State); ok {
			return st[name]
		}
		return handler.Substate{}
	}
}
