package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go-rest-posts/internal/config"
	"go-rest-posts/internal/handler"
)

func write(t *testing.T, body string) string {
	t.Helper()
	f := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(f, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return f
}

func TestConfig_DefaultsAndValidate(t *testing.T) {
	c, err := config.Load(write(t, "API:\n  url: https://example.com/wp-json/wp/v2/posts\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Database.Type != "sqlite" || c.Database.DSN != "./posts.db" {
		t.Fatalf("defaults not applied: %+v", c.Database)
	}
	if c.LogFormat == "" || c.LogLocale == "" || c.LogColor == "" {
		t.Fatalf("log defaults missing")
	}
	if time.Duration(c.Timeout) != 25*time.Second {
		t.Fatalf("timeout = %v", time.Duration(c.Timeout))
	}
	if c.API.Type != "posts" || c.API.Credentials != "include" || c.API.TempID != "counter" || c.API.Context != "view" {
		t.Fatalf("api defaults = %+v", c.API)
	}
	if c.API.Rethrow == nil || !*c.API.Rethrow {
		t.Fatalf("rethrow should default to true")
	}

	bad := []string{
		"API: {}\n",
		"API:\n  url: u\n  credentials: sometimes\n",
		"API:\n  url: u\n  temp_id: random\n",
		"API:\n  url: u\n  actions:\n    bogus: X\n",
		"API:\n  url: u\nARCHIVES:\n  - key: a\n  - key: a\n",
		"API:\n  url: u\nDATABASE:\n  type: mysql\n",
		"API:\n  url: u\nTIMEOUT: soon\n",
	}
	for _, body := range bad {
		if _, err := config.Load(write(t, body)); err == nil {
			t.Errorf("expect error for %q", body)
		}
	}
}

func TestConfig_HandlerOptions(t *testing.T) {
	c, err := config.Load(write(t, `
API:
  url: https://example.com/wp-json/wp/v2/pages
  type: pages
  nonce: abc
  rethrow: false
  temp_id: uuid
  headers:
    X-Test: "1"
  query:
    per_page: 5
  actions:
    archiveStart: PAGES_LOADING
ARCHIVES:
  - key: latest
    query:
      orderby: date
  - key: all
TIMEOUT: 3s
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if time.Duration(c.Timeout) != 3*time.Second {
		t.Fatalf("timeout = %v", time.Duration(c.Timeout))
	}
	opts := c.HandlerOptions()
	if !opts.SwallowErrors || opts.Nonce != "abc" || opts.Type != "pages" {
		t.Fatalf("options = %+v", opts)
	}
	if _, ok := opts.TempIDs.(handler.UUIDs); !ok {
		t.Fatalf("temp ids = %T", opts.TempIDs)
	}
	if opts.FetchOptions.Header["X-Test"] != "1" || opts.Query["per_page"] != 5 {
		t.Fatalf("defaults = %+v %+v", opts.FetchOptions, opts.Query)
	}

	h, err := handler.New(opts)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if got := h.Vocabulary().Type(handler.ArchiveStart); got != "PAGES_LOADING" {
		t.Fatalf("override = %s", got)
	}
	if got := h.Vocabulary().Type(handler.ArchiveSuccess); got != "QUERY_PAGES" {
		t.Fatalf("derived = %s", got)
	}
	c.RegisterArchives(h)
	if got := h.Archives(); len(got) != 2 {
		t.Fatalf("archives = %v", got)
	}
}
