// 包 export 负责导出：将某资源类型的 Substate 写为 data.json。
package export

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"go-rest-posts/internal/handler"
	"go-rest-posts/internal/model"
	"go-rest-posts/internal/store"
)

// 全局文章数上限，超出部分不导出
const maxExportPosts = 150

// Build 由 Substate 生成导出结构；归档按键名排序，条目按归档中的位置排列。
func Build(typ string, sub handler.Substate, now time.Time) model.Export {
	keys := make([]string, 0, len(sub.Archives))
	for k := range sub.Archives {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	archives := make([]model.ArchiveExport, 0, len(keys))
	for _, k := range keys {
		ids := sub.Archives[k]
		resolved := handler.GetArchive(sub, k)
		items := make([]model.Entry, 0, len(ids))
		for i, p := range resolved {
			if p == nil {
				// 空位：仍在加载或已被删除
				items = append(items, model.Entry{ID: ids[i], Missing: true})
				continue
			}
			items = append(items, entryOf(*p))
		}
		info := sub.ArchivePages[k]
		archives = append(archives, model.ArchiveExport{
			Key:     k,
			IDs:     append([]model.ID(nil), ids...),
			Current: info.Current,
			Total:   info.Total,
			Items:   items,
		})
	}

	posts := make([]model.Post, 0, len(sub.Posts))
	for _, p := range sub.Posts {
		if handler.IsTemp(string(p.ID)) {
			continue
		}
		posts = append(posts, p)
	}
	if len(posts) > maxExportPosts {
		posts = posts[:maxExportPosts]
	}
	return model.Export{
		Type: typ,
		Stats: model.Stats{
			PostsTotal:    len(posts),
			ArchivesTotal: len(archives),
			UpdatedAt:     now,
		},
		Archives: archives,
		Posts:    posts,
	}
}

// ToJSON 将 Substate 写入 JSON 文件（带缩进格式）。
func ToJSON(typ string, sub handler.Substate, path string) error {
	return write(Build(typ, sub, time.Now()), path)
}

// FromSQLite 读取库中快照与统计后导出。
func FromSQLite(ctx context.Context, s *store.SQLite, typ, path string) error {
	sub, err := s.Load(ctx, typ)
	if err != nil {
		return fmt.Errorf("load %s: %w", typ, err)
	}
	stats, err := s.Stats(ctx, typ)
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	out := Build(typ, sub, stats.UpdatedAt)
	// posts_total 以导出数量为准，避免与上限不符
	if stats.PostsTotal > len(out.Posts) {
		stats.PostsTotal = len(out.Posts)
	}
	out.Stats = stats
	return write(out, path)
}

func write(out model.Export, path string) error {
	b, err := model.Codec.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json to %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// PlainText 将 HTML 片段转为单行纯文本；解析失败时原样返回。
func PlainText(html string) string {
	if !strings.ContainsAny(html, "<&") {
		return strings.Join(strings.Fields(html), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func entryOf(p model.Post) model.Entry {
	e := model.Entry{
		ID:      p.ID,
		Title:   PlainText(p.Rendered("title")),
		Excerpt: PlainText(p.Rendered("excerpt")),
	}
	if link, ok := p.Field("link").(string); ok {
		e.Link = link
	}
	return e
}
