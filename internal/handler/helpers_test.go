package handler_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"go-rest-posts/internal/handler"
	"go-rest-posts/internal/model"
)

// recorder 模拟 store：记录所有动作并用 handler 归约。
type recorder struct {
	mu      sync.Mutex
	h       *handler.Handler
	state   handler.Substate
	actions []handler.Action
}

func newRecorder(h *handler.Handler) *recorder {
	return &recorder{h: h, state: handler.DefaultSubstate()}
}

func (r *recorder) dispatch(a handler.Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, a)
	r.state = r.h.Reduce(r.state, a)
}

func (r *recorder) getState() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.actions))
	for i, a := range r.actions {
		out[i] = a.Type
	}
	return out
}

func substateOf(state any) handler.Substate { return state.(handler.Substate) }

// fakeAPI 为 WordPress 风格的文章接口：6 篇文章，每页 2 篇。
type fakeAPI struct {
	mu       sync.Mutex
	requests []*http.Request
	bodies   []string
}

func (f *fakeAPI) last() (*http.Request, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1], f.bodies[len(f.bodies)-1]
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, r)
	f.bodies = append(f.bodies, string(b))
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if r.URL.Query().Get("fail") != "" {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"code":"boom","message":"exploded"}`))
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/posts")
	switch {
	case rest == "" && r.Method == http.MethodGet:
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page <= 0 {
			page = 1
		}
		w.Header().Set("X-WP-TotalPages", "3")
		first := (page-1)*2 + 1
		fmt.Fprintf(w, `[{"id":%d,"title":{"rendered":"Post %d"}},{"id":%d,"title":{"rendered":"Post %d"}}]`, first, first, first+1, first+1)
	case rest == "" && r.Method == http.MethodPost && r.URL.Query().Get("noid") != "":
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"title":"no id"}`))
	case rest == "" && r.Method == http.MethodPost:
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(strings.Replace(string(b), "{", `{"id":100,`, 1)))
	case rest == "/99":
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"rest_post_invalid_id","message":"Invalid post ID."}`))
	case r.Method == http.MethodGet:
		id := strings.TrimPrefix(rest, "/")
		fmt.Fprintf(w, `{"id":%s,"title":{"rendered":"Post %s"},"context":%q}`, id, id, r.URL.Query().Get("context"))
	case r.Method == http.MethodPut:
		_, _ = w.Write(b)
	case rest == "/204" && r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodDelete:
		id := strings.TrimPrefix(rest, "/")
		fmt.Fprintf(w, `{"deleted":true,"previous":{"id":%s}}`, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		_, _ = w.Write([]byte(`{}`))
	}
}

func newHandler(t *testing.T, mutate func(*handler.Options)) (*handler.Handler, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	opts := handler.Options{
		URL:   srv.URL + "/posts",
		Type:  "posts",
		Nonce: "abc123",
		Query: model.Params{"per_page": 2},
	}
	if mutate != nil {
		mutate(&opts)
	}
	h, err := handler.New(opts)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return h, api
}

func post(id string, title string) model.Post {
	return model.Post{ID: model.ID(id), Fields: map[string]any{"title": title}}
}
