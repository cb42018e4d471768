// Package service 实现业务逻辑层
package service

import (
	"sync"
	"time"
)

// idGen 生成毫秒时间戳 ID, 同毫秒内递增保证唯一
type idGen struct {
	mu   sync.Mutex
	last int64
}

func (g *idGen) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := time.Now().UnixMilli()
	if now <= g.last {
		now = g.last + 1
	}
	g.last = now
	return now
}

var ids = &idGen{}

// NewID 返回一个新的毫秒时间戳 ID
func NewID() int64 {
	return ids.Next()
}
