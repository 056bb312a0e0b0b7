// 包 fetch 封装 REST 访问：
// - Client：带代理/超时/网络层重试的 HTTP 客户端
// - Transport：默认参数与选项的分层合并、查询串编码、响应归一化
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"
)

// 凭据策略，对应请求是否携带 cookie。
const (
	CredentialsInclude    = "include"
	CredentialsSameOrigin = "same-origin"
	CredentialsOmit       = "omit"
)

// Client 为 HTTP 客户端。重试仅针对连接类错误，HTTP 状态码不会触发重试。
type Client struct {
	http  *http.Client // 携带 cookie jar
	bare  *http.Client // 不携带 cookie
	retry int
}

// Options 为客户端构造参数。
type Options struct {
	ProxyHTTP  string
	ProxyHTTPS string
	Timeout    time.Duration
	Retry      int
}

// Request 为一次原始 HTTP 调用的描述。
type Request struct {
	Method      string
	URL         string
	Header      http.Header
	Body        []byte
	Credentials string
}

// New 创建客户端，支持 http/https 代理与基础超时配置。
func New(opts Options) (*Client, error) {
	transport := &http.Transport{
		Proxy: func(req *http.Request) (*url.URL, error) {
			if req.URL.Scheme == "https" && opts.ProxyHTTPS != "" {
				return url.Parse(opts.ProxyHTTPS)
			}
			if req.URL.Scheme == "http" && opts.ProxyHTTP != "" {
				return url.Parse(opts.ProxyHTTP)
			}
			return http.ProxyFromEnvironment(req)
		},
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.Retry < 0 {
		opts.Retry = 0
	}
	return &Client{
		http:  &http.Client{Transport: transport, Jar: jar, Timeout: opts.Timeout},
		bare:  &http.Client{Transport: transport, Timeout: opts.Timeout},
		retry: opts.Retry,
	}, nil
}

// Do 发起请求；仅在网络错误时按线性回退重试。返回任意状态码的响应，由调用方负责关闭 Body。
func (c *Client) Do(ctx context.Context, r Request) (*http.Response, error) {
	hc := c.http
	if strings.EqualFold(r.Credentials, CredentialsOmit) {
		hc = c.bare
	}
	var lastErr error
	attempts := c.retry + 1
	for i := 0; i < attempts; i++ {
		var body *bytes.Reader
		if r.Body != nil {
			body = bytes.NewReader(r.Body)
		}
		method := r.Method
		if method == "" {
			method = http.MethodGet
		}
		var req *http.Request
		var reqErr error
		if body != nil {
			req, reqErr = http.NewRequestWithContext(ctx, method, r.URL, body)
		} else {
			req, reqErr = http.NewRequestWithContext(ctx, method, r.URL, nil)
		}
		if reqErr != nil {
			return nil, fmt.Errorf("new request: %w", reqErr)
		}
		for k, vs := range r.Header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		if req.Header.Get("Accept") == "" {
			req.Header.Set("Accept", "application/json")
		}
		// 支持环境变量覆盖 UA（POSTS_UA）
		ua := os.Getenv("POSTS_UA")
		if ua == "" {
			ua = "go-rest-posts/1.0"
		}
		req.Header.Set("User-Agent", ua)
		resp, err := hc.Do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return nil, err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(i+1) * 300 * time.Millisecond):
		}
	}
	return nil, lastErr
}
