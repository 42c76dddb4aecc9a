package middleware

import (
	"runtime/debug"

	"postboard/internal/apperr"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recovery 捕获 panic，记录堆栈并返回统一的 500 响应
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				zap.L().Error("panic recovered",
					zap.Any("error", r),
					zap.String("path", c.Request.URL.Path),
					zap.String("request_id", c.GetString(RequestIDKey)),
					zap.String("stack", string(debug.Stack())))

				apperr.HandleError(c, apperr.New(apperr.KindServer, "internal server error"))
			}
		}()
		c.Next()
	}
}
