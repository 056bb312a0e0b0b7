package handler

import (
	"fmt"
	"strings"
)

// Kind 为动作种类的封闭枚举：6 类操作 × start/success/error 三个阶段。
type Kind int

const (
	ArchiveStart Kind = iota
	ArchiveSuccess
	ArchiveError
	ArchiveMoreStart
	ArchiveMoreSuccess
	ArchiveMoreError
	GetStart
	GetSuccess
	GetError
	UpdateStart
	UpdateSuccess
	UpdateError
	CreateStart
	CreateSuccess
	CreateError
	DeleteStart
	DeleteSuccess
	DeleteError

	numKinds
)

var kindNames = [numKinds]string{
	ArchiveStart:       "archiveStart",
	ArchiveSuccess:     "archiveSuccess",
	ArchiveError:       "archiveError",
	ArchiveMoreStart:   "archiveMoreStart",
	ArchiveMoreSuccess: "archiveMoreSuccess",
	ArchiveMoreError:   "archiveMoreError",
	GetStart:           "getStart",
	GetSuccess:         "getSuccess",
	GetError:           "getError",
	UpdateStart:        "updateStart",
	UpdateSuccess:      "updateSuccess",
	UpdateError:        "updateError",
	CreateStart:        "createStart",
	CreateSuccess:      "createSuccess",
	CreateError:        "createError",
	DeleteStart:        "deleteStart",
	DeleteSuccess:      "deleteSuccess",
	DeleteError:        "deleteError",
}

// 默认动作名模板，%s 为大写的资源类型。
var kindTemplates = [numKinds]string{
	ArchiveStart:       "QUERY_%s_REQUEST",
	ArchiveSuccess:     "QUERY_%s",
	ArchiveError:       "QUERY_%s_ERROR",
	ArchiveMoreStart:   "QUERY_%s_MORE_REQUEST",
	ArchiveMoreSuccess: "QUERY_%s_MORE",
	ArchiveMoreError:   "QUERY_%s_MORE_ERROR",
	GetStart:           "LOAD_%s_REQUEST",
	GetSuccess:         "LOAD_%s",
	GetError:           "LOAD_%s_ERROR",
	UpdateStart:        "UPDATE_%s_REQUEST",
	UpdateSuccess:      "UPDATE_%s",
	UpdateError:        "UPDATE_%s_ERROR",
	CreateStart:        "CREATE_%s_REQUEST",
	CreateSuccess:      "CREATE_%s",
	CreateError:        "CREATE_%s_ERROR",
	DeleteStart:        "DELETE_%s_REQUEST",
	DeleteSuccess:      "DELETE_%s",
	DeleteError:        "DELETE_%s_ERROR",
}

// Kinds 返回全部动作种类（按声明顺序）。
func Kinds() []Kind {
	out := make([]Kind, 0, numKinds)
	for k := Kind(0); k < numKinds; k++ {
		out = append(out, k)
	}
	return out
}

func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind 将覆盖配置中的名称（如 archiveStart）解析为 Kind。
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown action kind %q", name)
}

// Vocabulary 为某资源类型派生出的动作名集合，保证单射。
type Vocabulary struct {
	types  [numKinds]string
	byType map[string]Kind
}

// NewVocabulary 根据资源类型派生 18 个动作名，overrides 可逐个替换。
func NewVocabulary(resourceType string, overrides map[Kind]string) (*Vocabulary, error) {
	upper := strings.ToUpper(strings.TrimSpace(resourceType))
	if upper == "" {
		return nil, ErrEmptyType
	}
	v := &Vocabulary{byType: make(map[string]Kind, numKinds)}
	for k := Kind(0); k < numKinds; k++ {
		v.types[k] = fmt.Sprintf(kindTemplates[k], upper)
	}
	for k, name := range overrides {
		if k < 0 || k >= numKinds {
			return nil, fmt.Errorf("override for %v: %w", k, ErrVocabularyCollision)
		}
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("empty override for %s: %w", k, ErrVocabularyCollision)
		}
		v.types[k] = name
	}
	for k := Kind(0); k < numKinds; k++ {
		if prev, dup := v.byType[v.types[k]]; dup {
			return nil, fmt.Errorf("%s and %s both map to %q: %w", prev, k, v.types[k], ErrVocabularyCollision)
		}
		v.byType[v.types[k]] = k
	}
	return v, nil
}

// Type 返回 Kind 对应的动作名。
func (v *Vocabulary) Type(k Kind) string { return v.types[k] }

// Kind 将动作名解析回 Kind；属于其它资源类型或其它 handler 的动作返回 false。
func (v *Vocabulary) Kind(actionType string) (Kind, bool) {
	k, ok := v.byType[actionType]
	return k, ok
}

// Map 返回 覆盖名 → 动作名 的映射（actions 命令输出）。
func (v *Vocabulary) Map() map[string]string {
	out := make(map[string]string, numKinds)
	for k := Kind(0); k < numKinds; k++ {
		out[kindNames[k]] = v.types[k]
	}
	return out
}
