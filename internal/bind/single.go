package bind

import (
	"context"

	"go-rest-posts/internal/handler"
	"go-rest-posts/internal/model"
)

// SingleView 为单条资源的只读视图。Post 为 nil 表示尚未加载。
type SingleView struct {
	ID      model.ID
	Post    *model.Post
	Loading bool
	Saving  bool
}

// Single 绑定一条资源。
type Single struct {
	binding
	id      model.ID
	context string
}

// NewSingle 创建单条绑定；reqContext 为空时读取使用 view。
func NewSingle(s Store, h *handler.Handler, sel Selector, id model.ID, reqContext string) *Single {
	return &Single{binding: binding{store: s, h: h, sel: sel}, id: id, context: reqContext}
}

func (s *Single) View() SingleView {
	sub := s.substate()
	v := SingleView{
		ID:      s.id,
		Loading: handler.IsPostLoading(sub, s.id),
		Saving:  handler.IsPostSaving(sub, s.id),
	}
	if p, ok := handler.GetSingle(sub, s.id); ok {
		v.Post = &p
	}
	return v
}

func (s *Single) Load(ctx context.Context) error {
	return s.run(ctx, s.h.FetchSingle(s.id, s.context))
}

// Update 以当前 id 写回给定字段。
func (s *Single) Update(ctx context.Context, fields map[string]any) error {
	post := model.NewPost(fields)
	post.ID = s.id
	return s.run(ctx, s.h.UpdateSingle(post))
}

func (s *Single) Watch(ctx context.Context, fn func(SingleView)) (stop func()) {
	v := s.View()
	return s.watch(ctx, v.Post == nil && !v.Loading, s.Load, func() { fn(s.View()) })
}
