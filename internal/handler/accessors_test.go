package handler_test

import (
	"testing"

	"go-rest-posts/internal/handler"
	"go-rest-posts/internal/model"
)

func TestHasMore(t *testing.T) {
	s := handler.DefaultSubstate()
	if !handler.HasMore(s, "x") {
		t.Fatalf("unknown archive should have more")
	}
	s.ArchivePages = map[string]handler.PageInfo{"x": {Current: 1, Total: 3}}
	if !handler.HasMore(s, "x") {
		t.Fatalf("1/3 should have more")
	}
	s.ArchivePages["x"] = handler.PageInfo{Current: 3, Total: 3}
	if handler.HasMore(s, "x") {
		t.Fatalf("3/3 should be exhausted")
	}
	s.ArchivePages["x"] = handler.PageInfo{Current: 1}
	if handler.HasMore(s, "x") {
		t.Fatalf("missing total counts as a single page")
	}
	if handler.GetTotalPages(s, "nope") != 0 {
		t.Fatalf("unknown total should be 0")
	}
}

func TestGetArchive_PositionalWithHoles(t *testing.T) {
	s := handler.DefaultSubstate()
	s.Posts = []model.Post{post("3", "c"), post("1", "a")}
	s.Archives = map[string][]model.ID{"a": {"1", "2", "3"}, "empty": {}}

	got := handler.GetArchive(s, "a")
	if len(got) != 3 || got[0].ID != "1" || got[1] != nil || got[2].ID != "3" {
		t.Fatalf("positional resolution = %+v", got)
	}
	if c := handler.Compact(got); len(c) != 2 || c[1].ID != "3" {
		t.Fatalf("compact = %+v", c)
	}
	if got := handler.GetArchive(s, "missing"); got != nil {
		t.Fatalf("unknown archive should be nil, got %+v", got)
	}
	if got := handler.GetArchive(s, "empty"); got == nil || len(got) != 0 {
		t.Fatalf("loaded empty archive should be a non-nil empty slice")
	}
	got[0] = nil
	if handler.GetArchive(s, "a")[0] == nil {
		t.Fatalf("results must not alias the substate")
	}
}

func TestGetArchivePage(t *testing.T) {
	s := handler.DefaultSubstate()
	s.Posts = []model.Post{post("1", "a"), post("2", "b")}
	s.ArchivesByPage = map[string]map[int][]model.ID{"a": {2: {"2"}}}
	if got := handler.GetArchivePage(s, "a", 2); len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("page 2 = %+v", got)
	}
	if handler.GetArchivePage(s, "a", 1) != nil || handler.GetArchivePage(s, "b", 1) != nil {
		t.Fatalf("unknown page should be nil")
	}
}

func TestPredicates(t *testing.T) {
	s := handler.DefaultSubstate()
	s.LoadingMore = handler.KeySet{"a"}
	s.LoadingPost = handler.KeySet{"7"}
	s.Deleting = handler.KeySet{"9"}
	s.Saving = handler.KeySet{"8"}
	if !handler.IsLoadingMore(s, "a") || handler.IsLoadingMore(s, "b") {
		t.Fatalf("loading more")
	}
	if !handler.IsPostLoading(s, "7") || !handler.IsPostDeleting(s, "9") || !handler.IsPostSaving(s, "8") {
		t.Fatalf("post predicates")
	}
	if handler.IsPostCreating(s) {
		t.Fatalf("no temp id in saving")
	}
}

func TestTempIDs(t *testing.T) {
	c := &handler.Counter{}
	if a, b := c.Next(), c.Next(); a != "_tmp_0" || b != "_tmp_1" {
		t.Fatalf("counter = %q %q", a, b)
	}
	u := handler.UUIDs{}.Next()
	if !handler.IsTemp(u) || len(u) != len("_tmp_")+36 {
		t.Fatalf("uuid temp id = %q", u)
	}
}
