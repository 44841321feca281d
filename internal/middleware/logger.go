// Package middleware 包含了 Gin 框架使用的中间件。
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"know-law-go/pkg/log"
)

// RequestLogger 记录每个 HTTP 请求的方法、路径、状态码与耗时。
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		if query != "" {
			path = path + "?" + query
		}
		log.Infow("request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", latency.String(),
			"clientIP", c.ClientIP(),
		)
	}
}
