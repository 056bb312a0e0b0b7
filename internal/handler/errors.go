package handler

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyType 资源类型为空，无法派生动作名。
	ErrEmptyType = errors.New("handler: resource type is required")

	// ErrVocabularyCollision 覆盖后出现重复或空的动作名。
	ErrVocabularyCollision = errors.New("handler: action types must be distinct and non-empty")

	// ErrMissingID 更新时数据缺少 id。
	ErrMissingID = errors.New("handler: post does not have an id")

	// ErrMissingURL 未配置资源 URL。
	ErrMissingURL = errors.New("handler: url is required")
)

// UnknownArchiveError 表示请求了未注册的归档。
type UnknownArchiveError struct {
	Key string
}

func (e *UnknownArchiveError) Error() string {
	return fmt.Sprintf("handler: invalid archive id: %s", e.Key)
}
