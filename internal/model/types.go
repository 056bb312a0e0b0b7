// 包 model 定义资源（文章）与查询参数的数据模型，以及统一的 JSON 编解码器。
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// Codec 为全局 JSON 编解码器（与标准库行为兼容）。
var Codec = jsoniter.ConfigCompatibleWithStandardLibrary

// ID 为资源标识。服务端的数字 id 与客户端临时 id（_tmp_N）统一用字符串表示。
type ID string

// Params 为查询参数集合，值可以是标量、切片或嵌套 map。
type Params map[string]any

// Clone 返回浅拷贝，便于在调用点覆盖个别键而不影响注册的原始参数。
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Page 读取 page 参数，缺失或非法时返回 0。
func (p Params) Page() int {
	switch v := p["page"].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		n, _ := strconv.Atoi(v.String())
		return n
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(v))
		return n
	}
	return 0
}

// Post 为一条资源记录：id 单独保存，其余字段原样保留。
type Post struct {
	ID     ID
	Fields map[string]any
}

// NewPost 以字段集合构造 Post，字段中的 id 会被提取出来。
func NewPost(fields map[string]any) Post {
	p := Post{Fields: make(map[string]any, len(fields))}
	for k, v := range fields {
		if k == "id" {
			p.ID = idOf(v)
			continue
		}
		p.Fields[k] = v
	}
	return p
}

// Field 返回指定字段的原始值。
func (p Post) Field(name string) any {
	if name == "id" {
		return p.ID
	}
	return p.Fields[name]
}

// Rendered 读取字符串字段；兼容 WordPress 风格的 {"rendered": "..."} 结构。
func (p Post) Rendered(name string) string {
	switch v := p.Fields[name].(type) {
	case string:
		return v
	case map[string]any:
		if s, ok := v["rendered"].(string); ok {
			return s
		}
		if s, ok := v["raw"].(string); ok {
			return s
		}
	}
	return ""
}

// With 返回设置了某个字段后的副本。
func (p Post) With(name string, value any) Post {
	out := Post{ID: p.ID, Fields: make(map[string]any, len(p.Fields)+1)}
	for k, v := range p.Fields {
		out.Fields[k] = v
	}
	if name == "id" {
		out.ID = idOf(value)
		return out
	}
	out.Fields[name] = value
	return out
}

// MarshalJSON 将 id 写回字段集合；纯数字 id 按数字输出，与服务端格式保持一致。
func (p Post) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(p.Fields)+1)
	for k, v := range p.Fields {
		m[k] = v
	}
	if p.ID != "" {
		// 仅规范形式的整数（无前导零、无正号）按数字输出
		if n, err := strconv.ParseInt(string(p.ID), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(p.ID) {
			m["id"] = n
		} else {
			m["id"] = string(p.ID)
		}
	}
	return Codec.Marshal(m)
}

// UnmarshalJSON 解析任意 JSON 对象，数字保持为 json.Number 以免精度丢失。
func (p *Post) UnmarshalJSON(b []byte) error {
	dec := Codec.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return fmt.Errorf("decode post: %w", err)
	}
	if m == nil {
		return fmt.Errorf("decode post: not an object")
	}
	*p = NewPost(m)
	return nil
}

func idOf(v any) ID {
	switch t := v.(type) {
	case nil:
		return ""
	case ID:
		return t
	case string:
		return ID(t)
	case json.Number:
		return ID(t.String())
	case float64:
		return ID(strconv.FormatFloat(t, 'f', -1, 64))
	case int:
		return ID(strconv.Itoa(t))
	case int64:
		return ID(strconv.FormatInt(t, 10))
	default:
		return ID(fmt.Sprint(t))
	}
}
