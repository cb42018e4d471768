// Package limiter provides token bucket rate limiting keyed by request path.
// Package limiter 提供按请求路径划分的令牌桶限流
package limiter

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juju/ratelimit"
)

type Face interface {
	Key(c *gin.Context) string
	GetBucket(key string) (*ratelimit.Bucket, bool)
	AddBuckets(rules ...BucketRule) Face
}

type Limiter struct {
	limiterBuckets map[string]*ratelimit.Bucket
}

// BucketRule bucket configuration rule
// BucketRule 令牌桶配置规则
type BucketRule struct {
	// Key bucket key // 桶标识
	Key string
	// FillInterval token fill interval // 令牌填充间隔
	FillInterval time.Duration
	// Capacity bucket capacity // 桶容量
	Capacity int64
	// Quantum tokens added per interval // 每次填充的令牌数
	Quantum int64
}
