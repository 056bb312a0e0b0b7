package fetch_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-rest-posts/internal/fetch"
	"go-rest-posts/internal/model"
)

func newTransport(t *testing.T, h http.HandlerFunc, base model.Params, defaults fetch.RequestOptions) (*fetch.Transport, string) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cl, err := fetch.New(fetch.Options{Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return fetch.NewTransport(cl, base, "n0nce", defaults, nil), srv.URL
}

func TestTransport_MergesParamsAndHeaders(t *testing.T) {
	var gotQuery, gotA, gotB, gotMethod, gotBody string
	tr, url := newTransport(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotA = r.Header.Get("X-A")
		gotB = r.Header.Get("X-B")
		gotMethod = r.Method
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = w.Write([]byte(`{"id":1}`))
	}, model.Params{"per_page": 10, "status": "publish"}, fetch.RequestOptions{
		Credentials: fetch.CredentialsInclude,
		Header:      map[string]string{"X-A": "default-a", "X-B": "default-b"},
	})

	_, err := tr.Fetch(context.Background(), url+"/posts", model.Params{"status": "draft"}, fetch.RequestOptions{
		Method: http.MethodPut,
		Header: map[string]string{"X-B": "call-b"},
		Body:   []byte(`{"title":"t"}`),
	})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotQuery != "_wpnonce=n0nce&per_page=10&status=draft" {
		t.Fatalf("query = %q", gotQuery)
	}
	if gotA != "default-a" || gotB != "call-b" {
		t.Fatalf("headers a=%q b=%q", gotA, gotB)
	}
	if gotMethod != http.MethodPut || gotBody != `{"title":"t"}` {
		t.Fatalf("method=%s body=%s", gotMethod, gotBody)
	}
}

func TestTransport_TotalPagesOnCollection(t *testing.T) {
	tr, url := newTransport(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(fetch.TotalPagesHeader, "7")
		_, _ = w.Write([]byte(`[{"id":1},{"id":2}]`))
	}, nil, fetch.DefaultOptions())

	p, err := tr.Fetch(context.Background(), url, nil, fetch.RequestOptions{})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !p.HasTotal || p.TotalPages != 7 {
		t.Fatalf("total pages = %d (has=%v), want 7", p.TotalPages, p.HasTotal)
	}
	posts, err := p.Posts()
	if err != nil || len(posts) != 2 || posts[1].ID != "2" {
		t.Fatalf("posts = %+v err=%v", posts, err)
	}
}

func TestTransport_TotalPagesIgnoredOnObject(t *testing.T) {
	tr, url := newTransport(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(fetch.TotalPagesHeader, "7")
		_, _ = w.Write([]byte(`{"id":1}`))
	}, nil, fetch.DefaultOptions())

	p, err := tr.Fetch(context.Background(), url, nil, fetch.RequestOptions{})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if p.HasTotal {
		t.Fatalf("object payload should not carry total pages")
	}
}

func TestTransport_RemoteError(t *testing.T) {
	tr, url := newTransport(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"code":"rest_forbidden","message":"Sorry, you are not allowed to do that."}`))
	}, nil, fetch.DefaultOptions())

	_, err := tr.Fetch(context.Background(), url, nil, fetch.RequestOptions{})
	var re *fetch.RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("want RemoteError, got %T %v", err, err)
	}
	if re.Status != 403 || re.Code != "rest_forbidden" || re.Message == "" || re.Data == nil {
		t.Fatalf("unexpected remote error: %+v", re)
	}
}

func TestTransport_RemoteErrorDefaults(t *testing.T) {
	tr, url := newTransport(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	}, nil, fetch.DefaultOptions())

	_, err := tr.Fetch(context.Background(), url, nil, fetch.RequestOptions{})
	var re *fetch.RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("want RemoteError, got %T %v", err, err)
	}
	if re.Code != fetch.UnknownCode || re.Message != "Unknown server error" || re.Data != nil {
		t.Fatalf("defaults not applied: %+v", re)
	}
}

func TestTransport_DecodeError(t *testing.T) {
	tr, url := newTransport(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1},`))
	}, nil, fetch.DefaultOptions())

	_, err := tr.Fetch(context.Background(), url, nil, fetch.RequestOptions{})
	var de *fetch.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("want DecodeError, got %T %v", err, err)
	}
	var re *fetch.RemoteError
	if errors.As(err, &re) {
		t.Fatalf("decode failure must not be a RemoteError")
	}
}

func TestTransport_NoContent(t *testing.T) {
	tr, url := newTransport(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, nil, fetch.DefaultOptions())

	p, err := tr.Fetch(context.Background(), url, nil, fetch.RequestOptions{Method: http.MethodDelete})
	if err != nil || p.Status != http.StatusNoContent {
		t.Fatalf("204 should succeed: %v", err)
	}
	var de *fetch.DecodeError
	if _, err := p.Post(); !errors.As(err, &de) {
		t.Fatalf("empty body should not decode as a post: %v", err)
	}
}

func TestTransport_EmptyBodyOn200(t *testing.T) {
	tr, url := newTransport(t, func(w http.ResponseWriter, r *http.Request) {}, nil, fetch.DefaultOptions())
	_, err := tr.Fetch(context.Background(), url, nil, fetch.RequestOptions{})
	var de *fetch.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("want DecodeError, got %v", err)
	}
}

func TestTransport_BodyTooLarge(t *testing.T) {
	tr, url := newTransport(t, func(w http.ResponseWriter, r *http.Request) {
		chunk := make([]byte, 1<<20)
		for i := range chunk {
			chunk[i] = ' '
		}
		_, _ = w.Write([]byte("["))
		for i := 0; i < 17; i++ {
			_, _ = w.Write(chunk)
		}
		_, _ = w.Write([]byte("]"))
	}, nil, fetch.DefaultOptions())

	_, err := tr.Fetch(context.Background(), url, nil, fetch.RequestOptions{})
	if !errors.Is(err, fetch.ErrBodyTooLarge) {
		t.Fatalf("want ErrBodyTooLarge, got %v", err)
	}
}

func TestMergeOptions_Precedence(t *testing.T) {
	d := fetch.RequestOptions{Credentials: "include", Header: map[string]string{"A": "1", "B": "2"}}
	c := fetch.RequestOptions{Method: "POST", Header: map[string]string{"B": "3"}}
	got := fetch.MergeOptions(d, c)
	if got.Method != "POST" || got.Credentials != "include" {
		t.Fatalf("merge = %+v", got)
	}
	if got.Header["A"] != "1" || got.Header["B"] != "3" {
		t.Fatalf("headers = %+v", got.Header)
	}
	if d.Header["B"] != "2" {
		t.Fatalf("defaults mutated")
	}
}
