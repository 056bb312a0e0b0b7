// 包 handler 连接 REST 资源集合与单向数据流 store：
// - 为资源类型派生动作名（Vocabulary）
// - 六个动作创建器发起请求并分发 start/success/error（Thunk）
// - Reduce 将动作归约为规范化的 Substate
// - 一组只读访问器（accessors.go）供 UI 层读取
package handler

import (
	"fmt"
	"strings"
	"sync"

	"go-rest-posts/internal/fetch"
	"go-rest-posts/internal/metrics"
	"go-rest-posts/internal/model"
)

// Options 为 Handler 构造参数。
type Options struct {
	URL     string          // 资源集合地址，如 https://example.com/wp-json/wp/v2/posts
	Query   model.Params    // 每个请求都携带的默认查询参数
	Nonce   string          // 认证 nonce，写入 _wpnonce
	Type    string          // 资源类型，用于派生动作名
	Actions map[Kind]string // 动作名覆盖

	// FetchOptions 为默认请求选项；为 nil 时携带凭据（include）。
	FetchOptions *fetch.RequestOptions

	// SwallowErrors 为 true 时，请求失败只记录到 store，不返回给调用方。
	SwallowErrors bool

	Doer    fetch.Doer // 为 nil 时使用默认 fetch.Client
	TempIDs TempIDs    // 为 nil 时使用 Counter
	Metrics *metrics.Metrics
}

// Handler 持有某资源类型的全部请求与归约逻辑。
type Handler struct {
	url       string
	typ       string
	vocab     *Vocabulary
	transport *fetch.Transport
	swallow   bool
	tempIDs   TempIDs

	mu       sync.RWMutex
	archives map[string]Query
}

// New 创建 Handler；资源类型为空或动作名冲突时返回错误。
func New(opts Options) (*Handler, error) {
	vocab, err := NewVocabulary(opts.Type, opts.Actions)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(opts.URL) == "" {
		return nil, ErrMissingURL
	}
	doer := opts.Doer
	if doer == nil {
		cl, err := fetch.New(fetch.Options{})
		if err != nil {
			return nil, fmt.Errorf("http client: %w", err)
		}
		doer = cl
	}
	defaults := fetch.DefaultOptions()
	if opts.FetchOptions != nil {
		defaults = *opts.FetchOptions
	}
	ids := opts.TempIDs
	if ids == nil {
		ids = &Counter{}
	}
	return &Handler{
		url:       strings.TrimRight(opts.URL, "/"),
		typ:       opts.Type,
		vocab:     vocab,
		transport: fetch.NewTransport(doer, opts.Query, opts.Nonce, defaults, opts.Metrics),
		swallow:   opts.SwallowErrors,
		tempIDs:   ids,
		archives:  make(map[string]Query),
	}, nil
}

// RegisterArchive 注册归档查询；重复注册覆盖旧查询。
func (h *Handler) RegisterArchive(key string, q Query) {
	if q == nil {
		q = Literal{}
	}
	h.mu.Lock()
	h.archives[key] = q
	h.mu.Unlock()
}

// Archives 返回已注册的归档键。
func (h *Handler) Archives() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, len(h.archives))
	for k := range h.archives {
		out = append(out, k)
	}
	return out
}

func (h *Handler) archive(key string) (Query, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	q, ok := h.archives[key]
	return q, ok
}

// Vocabulary 返回动作名集合。
func (h *Handler) Vocabulary() *Vocabulary { return h.vocab }

// Type 返回资源类型名。
func (h *Handler) Type() string { return h.typ }
