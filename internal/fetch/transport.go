package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go-rest-posts/internal/logx"
	"go-rest-posts/internal/metrics"
	"go-rest-posts/internal/model"
)

// TotalPagesHeader 为集合响应中携带总页数的响应头。
const TotalPagesHeader = "X-WP-TotalPages"

// NonceParam 为认证 nonce 在查询串中的字段名。
const NonceParam = "_wpnonce"

const maxBody = 16 << 20

// Doer 为底层 HTTP 调用原语，*Client 实现了该接口。
type Doer interface {
	Do(ctx context.Context, r Request) (*http.Response, error)
}

var errEmptyBody = errors.New("empty body")

// Payload 为归一化后的成功响应。
type Payload struct {
	Status     int
	Header     http.Header
	Body       []byte
	TotalPages int
	HasTotal   bool
}

// Posts 将响应体解码为资源列表。
func (p *Payload) Posts() ([]model.Post, error) {
	if len(bytes.TrimSpace(p.Body)) == 0 {
		return nil, &DecodeError{Status: p.Status, Err: errEmptyBody}
	}
	var out []model.Post
	if err := model.Codec.Unmarshal(p.Body, &out); err != nil {
		return nil, &DecodeError{Status: p.Status, Err: err}
	}
	return out, nil
}

// Post 将响应体解码为单个资源。
func (p *Payload) Post() (model.Post, error) {
	if len(bytes.TrimSpace(p.Body)) == 0 {
		return model.Post{}, &DecodeError{Status: p.Status, Err: errEmptyBody}
	}
	var out model.Post
	if err := model.Codec.Unmarshal(p.Body, &out); err != nil {
		return model.Post{}, &DecodeError{Status: p.Status, Err: err}
	}
	return out, nil
}

// Transport 持有实例级默认查询参数与默认请求选项。
type Transport struct {
	doer     Doer
	base     model.Params
	defaults RequestOptions
	metrics  *metrics.Metrics
}

// NewTransport 创建 Transport；nonce 非空时写入默认参数的 _wpnonce 字段。
func NewTransport(doer Doer, base model.Params, nonce string, defaults RequestOptions, m *metrics.Metrics) *Transport {
	q := base.Clone()
	if nonce != "" {
		q[NonceParam] = nonce
	}
	return &Transport{doer: doer, base: q, defaults: defaults, metrics: m}
}

// Fetch 合并参数与选项后发起请求，并将响应归一化为 Payload 或类型化错误。
func (t *Transport) Fetch(ctx context.Context, rawURL string, query model.Params, opts RequestOptions) (*Payload, error) {
	args := MergeParams(t.base, query)
	o := MergeOptions(t.defaults, opts)

	full := rawURL
	if qs := EncodeQuery(args); qs != "" {
		sep := "?"
		if strings.Contains(rawURL, "?") {
			sep = "&"
		}
		full = rawURL + sep + qs
	}
	header := make(http.Header, len(o.Header))
	for k, v := range o.Header {
		header.Set(k, v)
	}
	method := o.Method
	if method == "" {
		method = http.MethodGet
	}

	start := time.Now()
	logx.Debugf("请求：%s %s", method, full)
	resp, err := t.doer.Do(ctx, Request{
		Method:      method,
		URL:         full,
		Header:      header,
		Body:        o.Body,
		Credentials: o.Credentials,
	})
	if err != nil {
		t.metrics.ObserveRequest(method, "network_error", time.Since(start).Seconds())
		return nil, fmt.Errorf("%s %s: %w", method, rawURL, err)
	}
	defer resp.Body.Close()
	t.metrics.ObserveRequest(method, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())
	return parseResponse(resp)
}

// parseResponse 读取并校验响应体：
// - 2xx：必须为合法 JSON；数组响应附带总页数
// - 非 2xx：尽量解码错误体，返回 RemoteError
func parseResponse(resp *http.Response) (*Payload, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxBody {
		return nil, &DecodeError{Status: resp.StatusCode, Err: fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, maxBody)}
	}
	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	valid := model.Codec.Valid(body)
	if ok && resp.StatusCode == http.StatusNoContent && len(bytes.TrimSpace(body)) == 0 {
		// 204 无响应体：请求成功，但 Posts/Post 无法解码
		return &Payload{Status: resp.StatusCode, Header: resp.Header, Body: body}, nil
	}

	if !ok {
		rerr := &RemoteError{
			Status:  resp.StatusCode,
			Code:    UnknownCode,
			Message: "Unknown server error",
			Header:  resp.Header,
		}
		if valid {
			var data map[string]any
			if model.Codec.Unmarshal(body, &data) == nil && data != nil {
				rerr.Data = data
				if m, _ := data["message"].(string); m != "" {
					rerr.Message = m
				}
				if c, _ := data["code"].(string); c != "" {
					rerr.Code = c
				}
			}
		}
		return nil, rerr
	}
	if !valid {
		return nil, &DecodeError{Status: resp.StatusCode, Err: errors.New("malformed JSON body")}
	}

	p := &Payload{Status: resp.StatusCode, Header: resp.Header, Body: body}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if v := resp.Header.Get(TotalPagesHeader); v != "" {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				p.TotalPages = n
				p.HasTotal = true
			}
		}
	}
	return p, nil
}
