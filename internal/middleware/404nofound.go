package middleware

import (
	"github.com/Global-Edge-English/anki-connect/pkg/app"
	"github.com/Global-Edge-English/anki-connect/pkg/code"

	"github.com/gin-gonic/gin"
)

// NoFound 404 handler
// NoFound 404 处理
func NoFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		response := app.NewResponse(c)
		response.ToResponse(code.ErrorNotFoundAPI)
		c.Abort()
	}
}
