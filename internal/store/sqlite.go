package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"go-rest-posts/internal/handler"
	"go-rest-posts/internal/model"
)

// SQLite 封装 *sql.DB，基于 modernc.org/sqlite（纯 Go 实现）。
// 只持久化内容与分页进度；进行中集合属于进程内状态，不落库。
type SQLite struct {
	db *sql.DB
}

// OpenSQLite 打开 SQLite 数据库并执行自动迁移。
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

// Reset 清空全部快照数据（不删除数据库文件）。
func (s *SQLite) Reset(ctx context.Context) error {
	for _, table := range []string{"archive_pages", "archives", "posts"} {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	return nil
}

// migrate 执行建表语句，保持幂等。
func (s *SQLite) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS posts (
            type TEXT NOT NULL,
            id TEXT NOT NULL,
            data TEXT NOT NULL,
            updated_at TIMESTAMP,
            PRIMARY KEY (type, id)
        );`,
		`CREATE TABLE IF NOT EXISTS archives (
            type TEXT NOT NULL,
            key TEXT NOT NULL,
            ids TEXT NOT NULL,
            current INTEGER NOT NULL DEFAULT 0,
            total INTEGER NOT NULL DEFAULT 0,
            updated_at TIMESTAMP,
            PRIMARY KEY (type, key)
        );`,
		`CREATE TABLE IF NOT EXISTS archive_pages (
            type TEXT NOT NULL,
            key TEXT NOT NULL,
            page INTEGER NOT NULL,
            ids TEXT NOT NULL,
            PRIMARY KEY (type, key, page)
        );`,
	}
	for _, q := range stmts {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("exec migrate: %w", err)
		}
	}
	return nil
}

// UpsertPost 插入或更新单条文章（type+id 唯一）。
func (s *SQLite) UpsertPost(ctx context.Context, typ string, p model.Post) error {
	if p.ID == "" {
		return errors.New("post.id required")
	}
	data, err := model.Codec.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode post %s: %w", p.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO posts(type, id, data, updated_at) VALUES(?,?,?,?)
        ON CONFLICT(type, id) DO UPDATE SET data=excluded.data, updated_at=excluded.updated_at`,
		typ, string(p.ID), string(data), time.Now())
	if err != nil {
		return fmt.Errorf("upsert post %s: %w", p.ID, err)
	}
	return nil
}

// Save 以事务整体替换某资源类型的快照。临时 id 的记录不会被保存。
func (s *SQLite) Save(ctx context.Context, typ string, sub handler.Substate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"archive_pages", "archives", "posts"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE type = ?`, typ); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	now := time.Now()
	for _, p := range sub.Posts {
		if p.ID == "" || handler.IsTemp(string(p.ID)) {
			continue
		}
		data, err := model.Codec.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode post %s: %w", p.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO posts(type, id, data, updated_at) VALUES(?,?,?,?)`,
			typ, string(p.ID), string(data), now); err != nil {
			return fmt.Errorf("insert post %s: %w", p.ID, err)
		}
	}
	for key, ids := range sub.Archives {
		enc, err := model.Codec.Marshal(ids)
		if err != nil {
			return fmt.Errorf("encode archive %s: %w", key, err)
		}
		info := sub.ArchivePages[key]
		if _, err := tx.ExecContext(ctx, `INSERT INTO archives(type, key, ids, current, total, updated_at) VALUES(?,?,?,?,?,?)`,
			typ, key, string(enc), info.Current, info.Total, now); err != nil {
			return fmt.Errorf("insert archive %s: %w", key, err)
		}
	}
	for key, pages := range sub.ArchivesByPage {
		for page, ids := range pages {
			enc, err := model.Codec.Marshal(ids)
			if err != nil {
				return fmt.Errorf("encode archive %s page %d: %w", key, page, err)
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO archive_pages(type, key, page, ids) VALUES(?,?,?,?)`,
				typ, key, page, string(enc)); err != nil {
				return fmt.Errorf("insert archive %s page %d: %w", key, page, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Load 恢复快照。返回的 Substate 未标记初始化，交给 reducer 补齐其余字段。
func (s *SQLite) Load(ctx context.Context, typ string) (handler.Substate, error) {
	var sub handler.Substate
	posts, err := s.ListPosts(ctx, typ)
	if err != nil {
		return sub, err
	}
	sub.Posts = posts

	rows, err := s.db.QueryContext(ctx, `SELECT key, ids, current, total FROM archives WHERE type = ?`, typ)
	if err != nil {
		return sub, fmt.Errorf("query archives: %w", err)
	}
	defer rows.Close()
	sub.Archives = map[string][]model.ID{}
	sub.ArchivePages = map[string]handler.PageInfo{}
	for rows.Next() {
		var key, ids string
		var info handler.PageInfo
		if err := rows.Scan(&key, &ids, &info.Current, &info.Total); err != nil {
			return sub, fmt.Errorf("scan archives: %w", err)
		}
		var list []model.ID
		if err := model.Codec.Unmarshal([]byte(ids), &list); err != nil {
			return sub, fmt.Errorf("decode archive %s: %w", key, err)
		}
		if list == nil {
			list = []model.ID{}
		}
		sub.Archives[key] = list
		if info.Current > 0 || info.Total > 0 {
			sub.ArchivePages[key] = info
		}
	}
	if err := rows.Err(); err != nil {
		return sub, fmt.Errorf("iterate archives: %w", err)
	}

	pageRows, err := s.db.QueryContext(ctx, `SELECT key, page, ids FROM archive_pages WHERE type = ?`, typ)
	if err != nil {
		return sub, fmt.Errorf("query archive pages: %w", err)
	}
	defer pageRows.Close()
	sub.ArchivesByPage = map[string]map[int][]model.ID{}
	for pageRows.Next() {
		var key, ids string
		var page int
		if err := pageRows.Scan(&key, &page, &ids); err != nil {
			return sub, fmt.Errorf("scan archive pages: %w", err)
		}
		var list []model.ID
		if err := model.Codec.Unmarshal([]byte(ids), &list); err != nil {
			return sub, fmt.Errorf("decode archive %s page %d: %w", key, page, err)
		}
		if sub.ArchivesByPage[key] == nil {
			sub.ArchivesByPage[key] = map[int][]model.ID{}
		}
		sub.ArchivesByPage[key][page] = list
	}
	if err := pageRows.Err(); err != nil {
		return sub, fmt.Errorf("iterate archive pages: %w", err)
	}
	return sub, nil
}

// ListPosts 返回某资源类型的全部文章，按 id 排序。
func (s *SQLite) ListPosts(ctx context.Context, typ string) ([]model.Post, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM posts WHERE type = ? ORDER BY id`, typ)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()
	out := []model.Post{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan posts: %w", err)
		}
		var p model.Post
		if err := model.Codec.Unmarshal([]byte(data), &p); err != nil {
			return nil, fmt.Errorf("decode post: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return out, nil
}

// Stats 统计某资源类型的文章数与归档数。
func (s *SQLite) Stats(ctx context.Context, typ string) (model.Stats, error) {
	var st model.Stats
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM posts WHERE type = ?`, typ).Scan(&st.PostsTotal); err != nil {
		return st, fmt.Errorf("count posts: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM archives WHERE type = ?`, typ).Scan(&st.ArchivesTotal); err != nil {
		return st, fmt.Errorf("count archives: %w", err)
	}
	st.UpdatedAt = time.Now()
	return st, nil
}
