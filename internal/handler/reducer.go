package handler

import (
	"go-rest-posts/internal/model"
)

// Reduce 为纯函数：根据动作返回新的 Substate，从不修改入参共享的 map/切片。
//
// 不属于本 handler 的动作原样返回；若入参尚未初始化（例如来自旧版本的持久化
// 数据），先以默认值补齐缺失字段。
func (h *Handler) Reduce(s Substate, a Action) Substate {
	if !s.Initialized {
		s = s.backfill()
	}
	kind, ok := h.vocab.Kind(a.Type)
	if !ok {
		return s
	}

	switch kind {
	case ArchiveStart:
		s.LoadingArchive = s.LoadingArchive.With(a.Key)

	case ArchiveSuccess:
		ids := idsOf(a.Posts)
		s.LoadingArchive = s.LoadingArchive.Without(a.Key)
		s.Archives = withArchive(s.Archives, a.Key, ids)
		s.ArchivesByPage = withPage(s.ArchivesByPage, a.Key, a.Page, ids)
		s.ArchivePages = withPageInfo(s.ArchivePages, a.Key, PageInfo{Current: a.Page, Total: a.Total})
		s.Posts = MergePosts(s.Posts, a.Posts)

	case ArchiveError:
		s.LoadingArchive = s.LoadingArchive.Without(a.Key)

	case ArchiveMoreStart:
		s.LoadingMore = s.LoadingMore.With(a.Key)

	case ArchiveMoreSuccess:
		ids := idsOf(a.Posts)
		current := s.Archives[a.Key]
		joined := make([]model.ID, 0, len(current)+len(ids))
		joined = append(joined, current...)
		joined = append(joined, ids...)
		page := a.Page
		if prev, ok := s.ArchivePages[a.Key]; ok && prev.Current > page {
			page = prev.Current
		}
		s.LoadingMore = s.LoadingMore.Without(a.Key)
		s.Archives = withArchive(s.Archives, a.Key, joined)
		s.ArchivesByPage = withPage(s.ArchivesByPage, a.Key, a.Page, ids)
		s.ArchivePages = withPageInfo(s.ArchivePages, a.Key, PageInfo{Current: page, Total: a.Total})
		s.Posts = MergePosts(s.Posts, a.Posts)

	case ArchiveMoreError:
		s.LoadingMore = s.LoadingMore.Without(a.Key)

	case GetStart:
		s.LoadingPost = s.LoadingPost.With(a.Key)

	case GetSuccess:
		s.LoadingPost = s.LoadingPost.Without(a.Key)
		s.Posts = mergeOne(s.Posts, a.Post)

	case GetError:
		s.LoadingPost = s.LoadingPost.Without(a.Key)

	case CreateStart, UpdateStart:
		s.Saving = s.Saving.With(a.Key)

	case CreateSuccess, UpdateSuccess:
		s.Saving = s.Saving.Without(a.Key)
		s.Posts = mergeOne(s.Posts, a.Post)

	case CreateError, UpdateError:
		s.Saving = s.Saving.Without(a.Key)

	case DeleteStart:
		s.Deleting = s.Deleting.With(a.Key)

	case DeleteSuccess:
		s.Deleting = s.Deleting.Without(a.Key)
		s.Posts = withoutPost(s.Posts, model.ID(a.Key))

	case DeleteError:
		s.Deleting = s.Deleting.Without(a.Key)
	}
	return s
}

func withArchive(m map[string][]model.ID, key string, ids []model.ID) map[string][]model.ID {
	out := make(map[string][]model.ID, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	out[key] = ids
	return out
}

func withPage(m map[string]map[int][]model.ID, key string, page int, ids []model.ID) map[string]map[int][]model.ID {
	out := make(map[string]map[int][]model.ID, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	pages := make(map[int][]model.ID, len(m[key])+1)
	for p, v := range m[key] {
		pages[p] = v
	}
	pages[page] = ids
	out[key] = pages
	return out
}

func withPageInfo(m map[string]PageInfo, key string, info PageInfo) map[string]PageInfo {
	out := make(map[string]PageInfo, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	out[key] = info
	return out
}

func mergeOne(posts []model.Post, p *model.Post) []model.Post {
	if p == nil {
		return posts
	}
	return MergePosts(posts, []model.Post{*p})
}

func withoutPost(posts []model.Post, id model.ID) []model.Post {
	out := make([]model.Post, 0, len(posts))
	for _, p := range posts {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}
