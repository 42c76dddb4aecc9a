package middleware

import (
	"strings"

	"postboard/internal/apperr"
	"postboard/internal/services"

	"github.com/gin-gonic/gin"
)

// IdentityKey 认证通过后身份信息在 gin.Context 中的键
const IdentityKey = "identity"

// AuthRequired 校验 Authorization: Bearer <token>，失败返回 401
func AuthRequired(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			apperr.HandleError(c, apperr.New(apperr.KindUnauthorized, "authentication required"))
			return
		}

		identity, err := auth.Authenticate(token)
		if err != nil {
			apperr.HandleError(c, err)
			return
		}

		c.Set(IdentityKey, identity)
		c.Next()
	}
}

// CurrentIdentity 读取当前请求的身份，未认证时返回 nil
func CurrentIdentity(c *gin.Context) *services.Identity {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return nil
	}
	identity, _ := v.(*services.Identity)
	return identity
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
