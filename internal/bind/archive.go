package bind

import (
	"context"

	"go-rest-posts/internal/handler"
	"go-rest-posts/internal/model"
)

// ArchiveView 为累计归档的只读视图。Posts 为 nil 表示尚未加载。
type ArchiveView struct {
	Key         string
	Posts       []*model.Post
	Loading     bool
	LoadingMore bool
	HasMore     bool
}

// Archive 绑定一个累计式归档（无限滚动）。
type Archive struct {
	binding
	key string
}

func NewArchive(s Store, h *handler.Handler, sel Selector, key string) *Archive {
	return &Archive{binding: binding{store: s, h: h, sel: sel}, key: key}
}

func (a *Archive) View() ArchiveView {
	sub := a.substate()
	return ArchiveView{
		Key:         a.key,
		Posts:       handler.GetArchive(sub, a.key),
		Loading:     handler.IsArchiveLoading(sub, a.key),
		LoadingMore: handler.IsLoadingMore(sub, a.key),
		HasMore:     handler.HasMore(sub, a.key),
	}
}

func (a *Archive) Load(ctx context.Context) error {
	return a.run(ctx, a.h.FetchArchive(a.key))
}

// LoadMore 追加下一页；page > 0 时请求指定页。
func (a *Archive) LoadMore(ctx context.Context, page int) error {
	return a.run(ctx, a.h.FetchMore(a.sel, a.key, page))
}

// Watch 订阅视图变化；尚未加载且未在加载时自动发起 Load。
func (a *Archive) Watch(ctx context.Context, fn func(ArchiveView)) (stop func()) {
	v := a.View()
	return a.watch(ctx, v.Posts == nil && !v.Loading, a.Load, func() { fn(a.View()) })
}

// PagedView 为分页归档某一页的只读视图。
type PagedView struct {
	Key         string
	Page        int
	TotalPages  int
	Posts       []*model.Post
	Loading     bool
	LoadingMore bool
	HasMore     bool
}

// PagedArchive 绑定归档的某一页（翻页式）。
type PagedArchive struct {
	binding
	key  string
	page int
}

func NewPagedArchive(s Store, h *handler.Handler, sel Selector, key string, page int) *PagedArchive {
	if page <= 0 {
		page = 1
	}
	return &PagedArchive{binding: binding{store: s, h: h, sel: sel}, key: key, page: page}
}

func (p *PagedArchive) View() PagedView {
	sub := p.substate()
	total := handler.GetTotalPages(sub, p.key)
	return PagedView{
		Key:         p.key,
		Page:        p.page,
		TotalPages:  total,
		Posts:       handler.GetArchivePage(sub, p.key, p.page),
		Loading:     handler.IsArchiveLoading(sub, p.key),
		LoadingMore: handler.IsLoadingMore(sub, p.key),
		// 总页数未知时视为还有更多
		HasMore: total == 0 || p.page < total,
	}
}

// Load 加载当前页：第 1 页走归档请求，其余页走追加请求。
func (p *PagedArchive) Load(ctx context.Context) error {
	if p.page <= 1 {
		return p.run(ctx, p.h.FetchArchive(p.key))
	}
	return p.run(ctx, p.h.FetchMore(p.sel, p.key, p.page))
}

func (p *PagedArchive) LoadMore(ctx context.Context, page int) error {
	return p.run(ctx, p.h.FetchMore(p.sel, p.key, page))
}

func (p *PagedArchive) Watch(ctx context.Context, fn func(PagedView)) (stop func()) {
	v := p.View()
	return p.watch(ctx, v.Posts == nil && !v.Loading && !v.LoadingMore, p.Load, func() { fn(p.View()) })
}
