package handler

import (
	"go-rest-posts/internal/model"
)

// PageInfo 记录归档的分页进度。
type PageInfo struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// KeySet 为进行中请求的键集合。所有方法都返回新值，不修改接收者。
type KeySet []string

func (s KeySet) Has(key string) bool {
	for _, k := range s {
		if k == key {
			return true
		}
	}
	return false
}

// With 加入 key；已存在时原样返回。
func (s KeySet) With(key string) KeySet {
	if s.Has(key) {
		return s
	}
	out := make(KeySet, 0, len(s)+1)
	out = append(out, s...)
	return append(out, key)
}

// Without 移除 key；不存在时原样返回。
func (s KeySet) Without(key string) KeySet {
	if !s.Has(key) {
		return s
	}
	out := make(KeySet, 0, len(s))
	for _, k := range s {
		if k != key {
			out = append(out, k)
		}
	}
	return out
}

// Substate 为某资源类型在 store 中的状态切片，只能由 Reduce 产生新值。
//
// Archives 保存累计的 id 序列，ArchivesByPage 按页独立保存；二者只引用 id，
// 内容统一存放在 Posts 中（按 id 唯一）。
type Substate struct {
	Initialized    bool                          `json:"_initialized"`
	Archives       map[string][]model.ID         `json:"archives"`
	ArchivesByPage map[string]map[int][]model.ID `json:"archivesByPage"`
	ArchivePages   map[string]PageInfo           `json:"archivePages"`
	Posts          []model.Post                  `json:"posts"`
	LoadingArchive KeySet                        `json:"loadingArchive"`
	LoadingMore    KeySet                        `json:"loadingMore"`
	LoadingPost    KeySet                        `json:"loadingPost"`
	Saving         KeySet                        `json:"saving"`
	Deleting       KeySet                        `json:"deleting"`
}

// DefaultSubstate 返回初始状态。
func DefaultSubstate() Substate {
	return Substate{
		Initialized:    true,
		Archives:       map[string][]model.ID{},
		ArchivesByPage: map[string]map[int][]model.ID{},
		ArchivePages:   map[string]PageInfo{},
		Posts:          []model.Post{},
		LoadingArchive: KeySet{},
		LoadingMore:    KeySet{},
		LoadingPost:    KeySet{},
		Saving:         KeySet{},
		Deleting:       KeySet{},
	}
}

// backfill 以默认值补齐缺失字段，已有字段保持不变。
func (s Substate) backfill() Substate {
	d := DefaultSubstate()
	if s.Archives != nil {
		d.Archives = s.Archives
	}
	if s.ArchivesByPage != nil {
		d.ArchivesByPage = s.ArchivesByPage
	}
	if s.ArchivePages != nil {
		d.ArchivePages = s.ArchivePages
	}
	if s.Posts != nil {
		d.Posts = s.Posts
	}
	if s.LoadingArchive != nil {
		d.LoadingArchive = s.LoadingArchive
	}
	if s.LoadingMore != nil {
		d.LoadingMore = s.LoadingMore
	}
	if s.LoadingPost != nil {
		d.LoadingPost = s.LoadingPost
	}
	if s.Saving != nil {
		d.Saving = s.Saving
	}
	if s.Deleting != nil {
		d.Deleting = s.Deleting
	}
	return d
}

// MergePosts 按 id 合并：next 中的记录替换 existing 中的同 id 记录（后到者为准）。
func MergePosts(existing, next []model.Post) []model.Post {
	incoming := make(map[model.ID]int, len(next))
	for i, p := range next {
		incoming[p.ID] = i
	}
	out := make([]model.Post, 0, len(existing)+len(next))
	for _, p := range existing {
		if _, replaced := incoming[p.ID]; !replaced {
			out = append(out, p)
		}
	}
	for i, p := range next {
		// next 内部重复时只保留最后一条
		if incoming[p.ID] == i {
			out = append(out, p)
		}
	}
	return out
}

func idsOf(posts []model.Post) []model.ID {
	ids := make([]model.ID, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}
