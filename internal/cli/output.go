package cli

import (
	"fmt"
	"io"

	"go-rest-posts/internal/export"
	"go-rest-posts/internal/model"
)

// printPosts 按位置输出归档；空位输出为 (missing)。
func printPosts(w io.Writer, format string, posts []*model.Post) error {
	if format == "json" {
		out := make([]any, len(posts))
		for i, p := range posts {
			if p != nil {
				out[i] = *p
			}
		}
		return printJSON(w, out)
	}
	for _, p := range posts {
		if p == nil {
			fmt.Fprintln(w, "-\t(missing)")
			continue
		}
		fmt.Fprintf(w, "%s\t%s\n", p.ID, export.PlainText(p.Rendered("title")))
	}
	return nil
}

func printPost(w io.Writer, format string, p model.Post) error {
	if format == "json" {
		return printJSON(w, p)
	}
	fmt.Fprintf(w, "id:      %s\n", p.ID)
	fmt.Fprintf(w, "title:   %s\n", export.PlainText(p.Rendered("title")))
	if link, ok := p.Field("link").(string); ok {
		fmt.Fprintf(w, "link:    %s\n", link)
	}
	if s, ok := p.Field("status").(string); ok {
		fmt.Fprintf(w, "status:  %s\n", s)
	}
	if ex := export.PlainText(p.Rendered("excerpt")); ex != "" {
		fmt.Fprintf(w, "excerpt: %s\n", ex)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	b, err := model.Codec.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// parseFields 解析 --data 中的 JSON 对象。
func parseFields(data string) (map[string]any, error) {
	var fields map[string]any
	if err := model.Codec.UnmarshalFromString(data, &fields); err != nil {
		return nil, fmt.Errorf("invalid --data JSON: %w", err)
	}
	if fields == nil {
		return nil, fmt.Errorf("invalid --data JSON: not an object")
	}
	return fields, nil
}
