// 包 bind 为界面层提供订阅式绑定：视图只经由 handler 的访问器计算，
// 动作只经由 handler 的动作创建器发起。
package bind

import (
	"context"

	"go-rest-posts/internal/handler"
	"go-rest-posts/internal/logx"
)

// Store 为绑定所需的 store 能力，*store.Store 满足该接口。
type Store interface {
	Dispatch(handler.Action)
	GetState() any
	Subscribe(fn func()) (unsubscribe func())
}

// Selector 从完整状态中取出该 handler 的切片。
type Selector func(state any) handler.Substate

type binding struct {
	store Store
	h     *handler.Handler
	sel   Selector
}

func (b binding) substate() handler.Substate { return b.sel(b.store.GetState()) }

func (b binding) run(ctx context.Context, t handler.Thunk) error {
	_, err := t(ctx, b.store.Dispatch, b.store.GetState)
	return err
}

// watch 订阅 store，每次分发后回调 onChange；needLoad 为 true 时在后台发起首次加载。
// 返回的 stop 取消订阅并取消尚未完成的加载。
func (b binding) watch(ctx context.Context, needLoad bool, load func(context.Context) error, onChange func()) (stop func()) {
	unsubscribe := b.store.Subscribe(onChange)
	ctx, cancel := context.WithCancel(ctx)
	onChange()
	if needLoad {
		go func() {
			if err := load(ctx); err != nil && ctx.Err() == nil {
				logx.Warnf("[%s] 自动加载失败：%v", b.h.Type(), err)
			}
		}()
	}
	return func() {
		cancel()
		unsubscribe()
	}
}
