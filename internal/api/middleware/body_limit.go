package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"staffdesk/pkg/response"
)

// BodyLimit 请求体大小限制中间件（需容纳 2MB 照片与表单字段）
// 声明的 Content-Length 超限时直接拒绝；未声明长度的请求在读取时由 MaxBytesReader 截断，
// 由 handler 在绑定失败时识别 *http.MaxBytesError 返回 413
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "Request body too large.")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()
	}
}
