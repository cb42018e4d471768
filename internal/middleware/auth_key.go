package middleware

import (
	"github.com/Global-Edge-English/anki-connect/pkg/app"
	"github.com/Global-Edge-English/anki-connect/pkg/code"

	"github.com/gin-gonic/gin"
)

// AuthKeyWithConfig API key 认证中间件（使用注入的配置）
// 空 key 表示不启用认证
func AuthKeyWithConfig(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {

		if apiKey == "" {
			c.Next()
			return
		}

		response := app.NewResponse(c)

		var key string

		if s, exist := c.GetQuery("key"); exist {
			key = s
		} else if s = c.GetHeader("X-Api-Key"); len(s) != 0 {
			key = s
		} else if s = c.GetHeader("Authorization"); len(s) != 0 {
			key = s
		}

		if key != apiKey {
			response.ToResponse(code.ErrorInvalidAPIKey)
			c.Abort()
			return
		}
		c.Next()
	}
}
