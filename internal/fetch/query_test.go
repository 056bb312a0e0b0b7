package fetch_test

import (
	"testing"

	"go-rest-posts/internal/fetch"
	"go-rest-posts/internal/model"
)

func TestEncodeQuery(t *testing.T) {
	cases := []struct {
		name string
		in   model.Params
		want string
	}{
		{"empty", nil, ""},
		{"sorted scalars", model.Params{"page": 2, "order": "asc", "sticky": true}, "order=asc&page=2&sticky=true"},
		{"nil skipped", model.Params{"a": nil, "b": "x"}, "b=x"},
		{"spaces", model.Params{"search": "hello world"}, "search=hello%20world"},
		{"list", model.Params{"include": []int{3, 4}}, "include%5B0%5D=3&include%5B1%5D=4"},
		{"nested", model.Params{"meta": map[string]any{"k": "v"}}, "meta%5Bk%5D=v"},
	}
	for _, c := range cases {
		if got := fetch.EncodeQuery(c.in); got != c.want {
			t.Errorf("%s: got %q want %q", c.name, got, c.want)
		}
	}
}
