package fetch

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"go-rest-posts/internal/model"
)

// EncodeQuery 将参数编码为查询串：键排序保证稳定输出；
// 嵌套值使用方括号写法（a[0]=x、a[b]=y），nil 值被跳过。
func EncodeQuery(p model.Params) string {
	var parts []string
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = appendValue(parts, k, p[k])
	}
	return strings.Join(parts, "&")
}

func appendValue(parts []string, key string, v any) []string {
	switch t := v.(type) {
	case nil:
		return parts
	case model.Params:
		return appendMap(parts, key, t)
	case map[string]any:
		return appendMap(parts, key, t)
	case map[string]string:
		m := make(map[string]any, len(t))
		for k, s := range t {
			m[k] = s
		}
		return appendMap(parts, key, m)
	case []any:
		for i, item := range t {
			parts = appendValue(parts, key+"["+strconv.Itoa(i)+"]", item)
		}
		return parts
	case []string:
		for i, item := range t {
			parts = appendValue(parts, key+"["+strconv.Itoa(i)+"]", item)
		}
		return parts
	case []int:
		for i, item := range t {
			parts = appendValue(parts, key+"["+strconv.Itoa(i)+"]", item)
		}
		return parts
	}
	return append(parts, escape(key)+"="+escape(scalar(v)))
}

func appendMap(parts []string, key string, m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = appendValue(parts, key+"["+k+"]", m[k])
	}
	return parts
}

func scalar(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case model.ID:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

// escape 使用 RFC 3986 风格的百分号编码（空格为 %20）。
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
