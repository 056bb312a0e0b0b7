package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"go-rest-posts/internal/fetch"
	"go-rest-posts/internal/logx"
	"go-rest-posts/internal/model"
)

// DefaultContext 为单条读取的默认 context 参数。
const DefaultContext = "view"

var jsonHeader = map[string]string{"Content-Type": "application/json"}

// FetchArchive 拉取已注册归档（按查询中的 page，缺省第 1 页），结果替换累计序列。
func (h *Handler) FetchArchive(key string) Thunk {
	return func(ctx context.Context, dispatch Dispatch, getState GetState) (string, error) {
		q, ok := h.archive(key)
		if !ok {
			return "", &UnknownArchiveError{Key: key}
		}
		dispatch(Action{Type: h.vocab.Type(ArchiveStart), Key: key})

		args := q.resolve(stateOf(getState))
		page := args.Page()
		if page <= 0 {
			page = 1
		}
		payload, err := h.transport.Fetch(ctx, h.url, args, fetch.RequestOptions{})
		var posts []model.Post
		if err == nil {
			posts, err = payload.Posts()
		}
		if err != nil {
			return h.fail(dispatch, Action{Type: h.vocab.Type(ArchiveError), Key: key, Page: page}, err)
		}
		total := totalOf(payload)
		logx.Debugf("[%s] 归档 %s 第 %d 页：%d 条，共 %d 页", h.typ, key, page, len(posts), total)
		dispatch(Action{Type: h.vocab.Type(ArchiveSuccess), Key: key, Posts: posts, Page: page, Total: total})
		return key, nil
	}
}

// FetchMore 拉取归档的下一页并追加到累计序列。
// page <= 0 时使用当前页 + 1（尚无记录时视当前页为 1，即请求第 2 页）。
func (h *Handler) FetchMore(getSubstate func(state any) Substate, key string, page int) Thunk {
	return func(ctx context.Context, dispatch Dispatch, getState GetState) (string, error) {
		q, ok := h.archive(key)
		if !ok {
			return "", &UnknownArchiveError{Key: key}
		}
		state := stateOf(getState)
		next := page
		if next <= 0 {
			var sub Substate
			if getSubstate != nil {
				sub = getSubstate(state)
			}
			current := sub.ArchivePages[key].Current
			if current <= 0 {
				current = 1
			}
			next = current + 1
		}
		dispatch(Action{Type: h.vocab.Type(ArchiveMoreStart), Key: key, Page: next})

		args := q.resolve(state)
		args["page"] = next
		payload, err := h.transport.Fetch(ctx, h.url, args, fetch.RequestOptions{})
		var posts []model.Post
		if err == nil {
			posts, err = payload.Posts()
		}
		if err != nil {
			return h.fail(dispatch, Action{Type: h.vocab.Type(ArchiveMoreError), Key: key, Page: next}, err)
		}
		total := totalOf(payload)
		logx.Debugf("[%s] 归档 %s 追加第 %d 页：%d 条，共 %d 页", h.typ, key, next, len(posts), total)
		dispatch(Action{Type: h.vocab.Type(ArchiveMoreSuccess), Key: key, Page: next, Posts: posts, Total: total})
		return key, nil
	}
}

// FetchSingle 读取单条资源；reqContext 为空时使用 view。
func (h *Handler) FetchSingle(id model.ID, reqContext string) Thunk {
	if reqContext == "" {
		reqContext = DefaultContext
	}
	return func(ctx context.Context, dispatch Dispatch, _ GetState) (string, error) {
		key := string(id)
		dispatch(Action{Type: h.vocab.Type(GetStart), Key: key})

		payload, err := h.transport.Fetch(ctx, h.itemURL(id), model.Params{"context": reqContext}, fetch.RequestOptions{})
		var post model.Post
		if err == nil {
			post, err = payload.Post()
		}
		if err != nil {
			return h.fail(dispatch, Action{Type: h.vocab.Type(GetError), Key: key}, err)
		}
		dispatch(Action{Type: h.vocab.Type(GetSuccess), Key: key, Post: &post})
		return key, nil
	}
}

// UpdateSingle 以 PUT 写回资源；数据必须带 id，否则在任何分发之前返回 ErrMissingID。
func (h *Handler) UpdateSingle(post model.Post) Thunk {
	return func(ctx context.Context, dispatch Dispatch, _ GetState) (string, error) {
		if post.ID == "" {
			return "", ErrMissingID
		}
		key := string(post.ID)
		body, err := model.Codec.Marshal(post)
		if err != nil {
			return "", fmt.Errorf("encode post %s: %w", key, err)
		}
		data := post
		dispatch(Action{Type: h.vocab.Type(UpdateStart), Key: key, Post: &data})

		payload, err := h.transport.Fetch(ctx, h.itemURL(post.ID), model.Params{"context": "edit"}, fetch.RequestOptions{
			Method: http.MethodPut,
			Header: jsonHeader,
			Body:   body,
		})
		var saved model.Post
		if err == nil {
			saved, err = payload.Post()
		}
		if err != nil {
			return h.fail(dispatch, Action{Type: h.vocab.Type(UpdateError), Key: key}, err)
		}
		dispatch(Action{Type: h.vocab.Type(UpdateSuccess), Key: key, Post: &saved})
		return key, nil
	}
}

// CreateSingle 以 POST 创建资源。请求期间以临时 id 记录在 Saving 中，成功后返回服务端分配的 id。
func (h *Handler) CreateSingle(post model.Post) Thunk {
	return func(ctx context.Context, dispatch Dispatch, _ GetState) (string, error) {
		body, err := model.Codec.Marshal(post)
		if err != nil {
			return "", fmt.Errorf("encode new post: %w", err)
		}
		tmp := h.tempIDs.Next()
		data := post
		dispatch(Action{Type: h.vocab.Type(CreateStart), Key: tmp, Post: &data})

		payload, err := h.transport.Fetch(ctx, h.url, model.Params{"context": "edit"}, fetch.RequestOptions{
			Method: http.MethodPost,
			Header: jsonHeader,
			Body:   body,
		})
		var created model.Post
		if err == nil {
			created, err = payload.Post()
		}
		if err == nil && created.ID == "" {
			err = &fetch.DecodeError{Status: payload.Status, Err: errors.New("created resource has no id")}
		}
		if err != nil {
			return h.fail(dispatch, Action{Type: h.vocab.Type(CreateError), Key: tmp}, err)
		}
		logx.Debugf("[%s] 创建完成：%s -> %s", h.typ, tmp, created.ID)
		dispatch(Action{Type: h.vocab.Type(CreateSuccess), Key: tmp, Post: &created})
		return string(created.ID), nil
	}
}

// DeleteSingle 以 DELETE 删除资源，不带请求体。
func (h *Handler) DeleteSingle(id model.ID) Thunk {
	return func(ctx context.Context, dispatch Dispatch, _ GetState) (string, error) {
		key := string(id)
		dispatch(Action{Type: h.vocab.Type(DeleteStart), Key: key})

		payload, err := h.transport.Fetch(ctx, h.itemURL(id), model.Params{}, fetch.RequestOptions{Method: http.MethodDelete})
		if err != nil {
			return h.fail(dispatch, Action{Type: h.vocab.Type(DeleteError), Key: key}, err)
		}
		done := Action{Type: h.vocab.Type(DeleteSuccess), Key: key}
		// 删除接口的响应体形态不一（被删除的记录或 {deleted, previous}），能解码时附带
		if post, err := payload.Post(); err == nil {
			done.Post = &post
		}
		dispatch(done)
		return key, nil
	}
}

// fail 先分发 error 动作，再根据配置决定是否把错误返回给调用方。
func (h *Handler) fail(dispatch Dispatch, a Action, err error) (string, error) {
	a.Err = err
	dispatch(a)
	logx.Warnf("[%s] %s 失败：key=%s 错误=%v", h.typ, a.Type, a.Key, err)
	if h.swallow {
		return "", nil
	}
	return "", err
}

func (h *Handler) itemURL(id model.ID) string {
	return h.url + "/" + url.PathEscape(string(id))
}

func stateOf(getState GetState) any {
	if getState == nil {
		return nil
	}
	return getState()
}

func totalOf(p *fetch.Payload) int {
	if p.HasTotal && p.TotalPages > 0 {
		return p.TotalPages
	}
	return 1
}
