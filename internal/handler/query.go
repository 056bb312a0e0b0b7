package handler

import "go-rest-posts/internal/model"

// Query 为归档的查询定义：Literal（固定参数）或 Derived（由 store 状态计算）。
type Query interface {
	resolve(state any) model.Params
}

// Literal 为固定查询参数。
type Literal model.Params

func (q Literal) resolve(any) model.Params { return model.Params(q).Clone() }

// Derived 在每次请求时以当前 store 状态计算参数。
type Derived func(state any) model.Params

func (q Derived) resolve(state any) model.Params {
	p := q(state)
	if p == nil {
		return model.Params{}
	}
	return p.Clone()
}
