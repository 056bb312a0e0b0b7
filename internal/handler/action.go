package handler

import (
	"context"

	"go-rest-posts/internal/model"
)

// Action 为分发到 store 的事件。Type 决定其种类，其余字段按种类取用：
//   - 归档类：Key 为归档键，Page/Total 为页码与总页数，Posts 为结果
//   - 单条类：Key 为资源 id（创建时为临时 id），Post 为数据
//   - Error 类：Err 为失败原因
type Action struct {
	Type  string
	Key   string
	Page  int
	Total int
	Posts []model.Post
	Post  *model.Post
	Err   error
}

// Dispatch 将动作交给 store 归约。
type Dispatch func(Action)

// GetState 返回完整的 store 状态。
type GetState func() any

// Thunk 为延迟执行的请求单元：先分发 start，等待 Transport，再分发 success/error。
// 返回值：归档类为归档键，单条类为资源 id（创建时为服务端分配的 id）。
type Thunk func(ctx context.Context, dispatch Dispatch, getState GetState) (string, error)
