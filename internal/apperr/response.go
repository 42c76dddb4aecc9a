package apperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse 错误响应结构
type ErrorResponse struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// 错误类别与 HTTP 状态码映射
var statusMap = map[Kind]int{
	KindValidation:         http.StatusBadRequest,
	KindUnauthorized:       http.StatusUnauthorized,
	KindInvalidCredentials: http.StatusUnauthorized,
	KindForbidden:          http.StatusForbidden,
	KindNotFound:           http.StatusNotFound,
	KindConflict:           http.StatusConflict,
	KindServer:             http.StatusInternalServerError,
}

// Status returns the HTTP status for a kind.
func Status(kind Kind) int {
	if status, ok := statusMap[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// HandleError 统一处理错误响应，内部原因只写日志
func HandleError(c *gin.Context, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = Server("internal server error", err)
	}

	status := Status(appErr.Kind)
	if status >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Error(err))
	}

	message := appErr.Message
	if appErr.Kind == KindServer && message == "" {
		message = "internal server error"
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Kind:    appErr.Kind,
		Message: message,
	})
}
