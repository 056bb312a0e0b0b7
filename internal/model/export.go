package model

import "time"

// Stats 为导出时的统计信息。
type Stats struct {
	PostsTotal    int       `json:"posts_total"`
	ArchivesTotal int       `json:"archives_total"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ArchiveExport 描述一个归档的导出结构：累计 id 序列与分页进度。
type ArchiveExport struct {
	Key     string  `json:"key"`
	IDs     []ID    `json:"ids"`
	Current int     `json:"current_page"`
	Total   int     `json:"total_pages"`
	Items   []Entry `json:"items"`
}

// Entry 为导出的单条摘要（HTML 已转为纯文本）。
type Entry struct {
	ID      ID     `json:"id"`
	Title   string `json:"title"`
	Excerpt string `json:"excerpt,omitempty"`
	Link    string `json:"link,omitempty"`
	Missing bool   `json:"missing,omitempty"`
}

// Export 为 data.json 顶层结构。
type Export struct {
	Type     string          `json:"type"`
	Stats    Stats           `json:"stats"`
	Archives []ArchiveExport `json:"archives"`
	Posts    []Post          `json:"posts"`
}
