package handlers

import (
	"postboard/internal/apperr"
	"postboard/internal/middleware"
	"postboard/internal/services"
	"postboard/internal/utils"

	"github.com/gin-gonic/gin"
)

// bindJSON 解析请求体，格式错误时写入 400
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		apperr.HandleError(c, apperr.Validation("invalid request body"))
		return false
	}
	return true
}

// postID 解析路径中的帖子 ID
func postID(c *gin.Context) (uint, bool) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		apperr.HandleError(c, apperr.Validation("invalid post id"))
		return 0, false
	}
	return id, true
}

// currentUser 取认证中间件写入的身份
func currentUser(c *gin.Context) (*services.Identity, bool) {
	identity := middleware.CurrentIdentity(c)
	if identity == nil {
		apperr.HandleError(c, apperr.New(apperr.KindUnauthorized, "authentication required"))
		return nil, false
	}
	return identity, true
}
