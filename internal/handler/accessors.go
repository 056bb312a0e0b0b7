package handler

import (
	"go-rest-posts/internal/model"
)

// 以下访问器只读 Substate，不产生副作用。
//
// GetArchive/GetArchivePage 按位置返回结果：尚未出现在 Posts 中的 id 对应位置为
// nil（表示“仍在加载或已被删除”），调用方可用 Compact 去掉空位。
// 返回 nil 切片表示该归档/页尚未加载；已加载但为空时返回长度为 0 的切片。

func IsArchiveLoading(s Substate, key string) bool { return s.LoadingArchive.Has(key) }

func IsLoadingMore(s Substate, key string) bool { return s.LoadingMore.Has(key) }

func IsPostLoading(s Substate, id model.ID) bool { return s.LoadingPost.Has(string(id)) }

func IsPostSaving(s Substate, id model.ID) bool { return s.Saving.Has(string(id)) }

func IsPostDeleting(s Substate, id model.ID) bool { return s.Deleting.Has(string(id)) }

// IsPostCreating 判断是否有创建请求进行中（Saving 中存在临时 id）。
func IsPostCreating(s Substate) bool {
	for _, k := range s.Saving {
		if IsTemp(k) {
			return true
		}
	}
	return false
}

// GetArchive 返回归档的累计结果。
func GetArchive(s Substate, key string) []*model.Post {
	ids, ok := s.Archives[key]
	if !ok {
		return nil
	}
	return resolve(s.Posts, ids)
}

// GetArchivePage 返回归档某一页的结果。
func GetArchivePage(s Substate, key string, page int) []*model.Post {
	ids, ok := s.ArchivesByPage[key][page]
	if !ok {
		return nil
	}
	return resolve(s.Posts, ids)
}

// HasMore 比较当前页与总页数；未知归档视为“还有更多”。
func HasMore(s Substate, key string) bool {
	info, ok := s.ArchivePages[key]
	if !ok {
		return true
	}
	total := info.Total
	if total == 0 {
		total = 1
	}
	return info.Current < total
}

// GetTotalPages 返回归档总页数，未知时为 0。
func GetTotalPages(s Substate, key string) int {
	return s.ArchivePages[key].Total
}

// GetSingle 按 id 查找资源。
func GetSingle(s Substate, id model.ID) (model.Post, bool) {
	for _, p := range s.Posts {
		if p.ID == id {
			return p, true
		}
	}
	return model.Post{}, false
}

// Compact 去掉未解析的空位。
func Compact(in []*model.Post) []model.Post {
	out := make([]model.Post, 0, len(in))
	for _, p := range in {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}

func resolve(posts []model.Post, ids []model.ID) []*model.Post {
	byID := make(map[model.ID]int, len(posts))
	for i, p := range posts {
		byID[p.ID] = i
	}
	out := make([]*model.Post, len(ids))
	for i, id := range ids {
		if j, ok := byID[id]; ok {
			p := posts[j]
			out[i] = &p
		}
	}
	return out
}
