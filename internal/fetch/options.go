package fetch

import (
	"go-rest-posts/internal/model"
)

// RequestOptions 为单次请求的选项。
type RequestOptions struct {
	Method      string
	Header      map[string]string
	Body        []byte
	Credentials string
}

// DefaultOptions 为未配置时使用的默认选项：携带凭据。
func DefaultOptions() RequestOptions {
	return RequestOptions{Credentials: CredentialsInclude}
}

// MergeOptions 合并选项，优先级：call > defaults。
// Header 按键逐个合并而不是整体替换；空字段不会覆盖默认值。
func MergeOptions(defaults, call RequestOptions) RequestOptions {
	out := defaults
	if call.Method != "" {
		out.Method = call.Method
	}
	if call.Body != nil {
		out.Body = call.Body
	}
	if call.Credentials != "" {
		out.Credentials = call.Credentials
	}
	out.Header = make(map[string]string, len(defaults.Header)+len(call.Header))
	for k, v := range defaults.Header {
		out.Header[k] = v
	}
	for k, v := range call.Header {
		out.Header[k] = v
	}
	return out
}

// MergeParams 合并查询参数，优先级：call > base。
func MergeParams(base, call model.Params) model.Params {
	out := make(model.Params, len(base)+len(call))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range call {
		out[k] = v
	}
	return out
}
