package handler

import (
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// TempPrefix 为客户端临时 id 的前缀。
const TempPrefix = "_tmp_"

// TempIDs 生成创建请求的临时 id。
type TempIDs interface {
	Next() string
}

// Counter 为实例内单调递增的计数器：_tmp_0、_tmp_1 ...
type Counter struct {
	mu   sync.Mutex
	next int
}

func (c *Counter) Next() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := TempPrefix + strconv.Itoa(c.next)
	c.next++
	return id
}

// UUIDs 生成 _tmp_<uuid>，适合多个 handler 实例共享同一 store 的场景。
type UUIDs struct{}

func (UUIDs) Next() string { return TempPrefix + uuid.NewString() }

// IsTemp 判断 id 是否为临时 id。
func IsTemp(id string) bool { return strings.HasPrefix(id, TempPrefix) }
