package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrBodyTooLarge 表示响应体超过读取上限。
var ErrBodyTooLarge = errors.New("response body too large")

// UnknownCode 为服务端错误体缺少 code 字段时的占位值。
const UnknownCode = "__unknown"

// RemoteError 表示服务端返回了非 2xx 状态。
type RemoteError struct {
	Status  int
	Code    string
	Message string
	Header  http.Header
	Data    map[string]any // 解码后的错误体；无法解码时为 nil
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error: status=%d code=%s: %s", e.Status, e.Code, e.Message)
}

// DecodeError 表示响应体不是合法 JSON，或无法解码为期望的结构。
type DecodeError struct {
	Status int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response (status=%d): %v", e.Status, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
