package middleware

import (
	"net/http"
	"strings"

	"VidHub/internal/auth"

	"github.com/gin-gonic/gin"
)

// ContextPrincipalKey 认证通过后，auth.Principal 存在context的这个key下
const ContextPrincipalKey = "principal"

// 流程：1、从http请求中取出"Authorization"字段 2、验证"Bearer [token]" 3、通过TokenManager验证token有效性 4、若成功，把Principal放入context
func AuthMiddleware(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 拿到http协议请求头中的Authorization字段
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			// 立刻调用c.Abort()，阻止后续的任何处理器（包括其他中间件和最终的handler）被执行
			abortUnauthorized(c, "请求未包含授权令牌")
			return
		}
		principal, ok := parseBearer(tokens, authHeader)
		if !ok {
			abortUnauthorized(c, "无效的授权令牌")
			return
		}
		c.Set(ContextPrincipalKey, principal)
		// 放行，继续处理请求
		c.Next()
	}
}

// OptionalAuth 有合法token就放入Principal，没有或不合法都按匿名用户放行
func OptionalAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if principal, ok := parseBearer(tokens, c.GetHeader("Authorization")); ok {
			c.Set(ContextPrincipalKey, principal)
		}
		c.Next()
	}
}

// CurrentPrincipal 取出当前用户，匿名时ok为false
func CurrentPrincipal(c *gin.Context) (auth.Principal, bool) {
	v, exists := c.Get(ContextPrincipalKey)
	if !exists {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}

// 通常Token的格式是 "Bearer [token]"
func parseBearer(tokens *auth.TokenManager, header string) (auth.Principal, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return auth.Principal{}, false
	}
	claims, err := tokens.Parse(parts[1])
	if err != nil {
		return auth.Principal{}, false
	}
	return claims.Principal(), true
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": message})
}
