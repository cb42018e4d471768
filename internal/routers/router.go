// Package routers 装配 HTTP 路由
package routers

import (
	"net/http"
	"time"

	"github.com/Global-Edge-English/anki-connect/global"
	"github.com/Global-Edge-English/anki-connect/internal/action"
	"github.com/Global-Edge-English/anki-connect/internal/app"
	"github.com/Global-Edge-English/anki-connect/internal/middleware"
	"github.com/Global-Edge-English/anki-connect/pkg/limiter"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

var methodLimiters = limiter.NewMethodLimiter().AddBuckets(
	limiter.BucketRule{
		Key:          "/",
		FillInterval: time.Second,
		Capacity:     200,
		Quantum:      200,
	},
)

// NewRouter 创建主路由, 根路径即 RPC 入口
func NewRouter(appContainer *app.App, uni *ut.UniversalTranslator) *gin.Engine {

	cfg := appContainer.Config()

	r := gin.New()

	r.Use(middleware.AppInfo())
	if cfg.Tracer.Enabled {
		r.Use(middleware.TraceMiddleware(cfg.Tracer.Header))
	}
	r.Use(middleware.RateLimiter(methodLimiters))
	r.Use(middleware.ContextTimeout(time.Duration(cfg.App.DefaultContextTimeout) * time.Second))
	r.Use(middleware.LangWithTranslator(uni))
	r.Use(middleware.AccessLogWithLogger(appContainer.Logger()))
	r.Use(middleware.RecoveryWithLogger(appContainer.Logger()))
	r.Use(middleware.AuthKeyWithConfig(cfg.Security.ApiKey))

	r.POST("/", rpcHandler(appContainer))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":   global.Version,
			"gitTag":    global.GitTag,
			"buildTime": global.BuildTime,
		})
	})

	r.NoRoute(middleware.NoFound())

	return r
}

// rpcHandler 解析 RPC 请求并按协议版本整形响应
func rpcHandler(appContainer *app.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req action.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if req.Version == 0 {
			req.Version = action.DefaultVersion
		}

		result, err := appContainer.Actions.Dispatch(c.Request.Context(), &req)

		// 旧版协议返回裸结果, 错误单独包装
		if req.Version <= action.DefaultVersion {
			if err != nil {
				c.JSON(http.StatusOK, gin.H{"error": action.ErrorString(err)})
				return
			}
			c.JSON(http.StatusOK, result)
			return
		}

		envelope := action.Envelope{Result: result}
		if err != nil {
			msg := action.ErrorString(err)
			envelope.Error = &msg
			envelope.Result = nil
		}
		c.JSON(http.StatusOK, envelope)
	}
}
