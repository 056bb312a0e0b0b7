package store_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"go-rest-posts/internal/handler"
	"go-rest-posts/internal/model"
	"go-rest-posts/internal/store"
)

func newPostsHandler(t *testing.T, typ string) *handler.Handler {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-WP-TotalPages", "2")
		if r.URL.Query().Get("page") == "2" {
			_, _ = w.Write([]byte(`[{"id":3}]`))
			return
		}
		_, _ = w.Write([]byte(`[{"id":1},{"id":2}]`))
	}))
	t.Cleanup(srv.Close)
	h, err := handler.New(handler.Options{URL: srv.URL, Type: typ})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return h
}

func TestStore_InitBackfillsInitialState(t *testing.T) {
	h := newPostsHandler(t, "posts")
	initial := store.State{"posts": {Posts: []model.Post{{ID: "1"}}}}
	st := store.New(map[string]store.Reducer{"posts": h.Reduce}, initial, nil)

	sub := st.Substate("posts")
	if !sub.Initialized || sub.Archives == nil || sub.LoadingArchive == nil {
		t.Fatalf("substate not backfilled: %+v", sub)
	}
	if len(sub.Posts) != 1 {
		t.Fatalf("persisted posts lost: %+v", sub.Posts)
	}
}

func TestStore_RunThunkAndSubscribe(t *testing.T) {
	h := newPostsHandler(t, "posts")
	h.RegisterArchive("latest", handler.Literal{})
	st := store.New(map[string]store.Reducer{"posts": h.Reduce}, nil, nil)

	var notified int32
	unsubscribe := st.Subscribe(func() { atomic.AddInt32(&notified, 1) })
	ctx := context.Background()
	if _, err := st.Run(ctx, h.FetchArchive("latest")); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if _, err := st.Run(ctx, h.FetchMore(store.Selector("posts"), "latest", 0)); err != nil {
		t.Fatalf("fetch more: %v", err)
	}
	unsubscribe()
	st.Dispatch(handler.Action{Type: "IGNORED"})

	if n := atomic.LoadInt32(&notified); n != 4 {
		t.Fatalf("notifications = %d, want 4 (two start/success pairs)", n)
	}
	sub := st.Substate("posts")
	if got := handler.Compact(handler.GetArchive(sub, "latest")); len(got) != 3 {
		t.Fatalf("archive = %+v", got)
	}
	if handler.HasMore(sub, "latest") {
		t.Fatalf("archive should be exhausted")
	}
}

func TestStore_SeparateSlicesIgnoreEachOther(t *testing.T) {
	posts := newPostsHandler(t, "posts")
	pages := newPostsHandler(t, "pages")
	posts.RegisterArchive("a", handler.Literal{})
	st := store.New(map[string]store.Reducer{"posts": posts.Reduce, "pages": pages.Reduce}, nil, nil)

	if _, err := st.Run(context.Background(), posts.FetchArchive("a")); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(st.Substate("pages").Posts) != 0 {
		t.Fatalf("pages slice must ignore posts actions")
	}
	if len(st.Substate("posts").Posts) != 2 {
		t.Fatalf("posts slice not updated")
	}
}

func TestStore_ConcurrentDispatch(t *testing.T) {
	h := newPostsHandler(t, "posts")
	st := store.New(map[string]store.Reducer{"posts": h.Reduce}, nil, nil)
	start := h.Vocabulary().Type(handler.GetStart)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			st.Dispatch(handler.Action{Type: start, Key: string(rune('a' + i%26))})
		}(i)
	}
	wg.Wait()
	if n := len(st.Substate("posts").LoadingPost); n != 26 {
		t.Fatalf("loading set size = %d, want 26", n)
	}
}
