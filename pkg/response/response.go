package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	Code     int                 `json:"code"`
	Message  string              `json:"message"`
	Data     interface{}         `json:"data,omitempty"`
	Details  string              `json:"details,omitempty"`
	Errors   map[string][]string `json:"errors,omitempty"`
	Input    interface{}         `json:"input,omitempty"`
	Redirect string              `json:"redirect,omitempty"`
}

// ── 成功响应 ──

// OK 200 成功响应
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Ack 变更类操作的确认响应：仅携带提示信息与跳转目标，不返回实体
func Ack(c *gin.Context, httpStatus int, message, redirect string) {
	c.JSON(httpStatus, Response{
		Code:     0,
		Message:  message,
		Redirect: redirect,
	})
}

// ── 错误响应 ──

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, code int, message string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
	})
}

// ErrorWithDetails 带详情的错误响应
func ErrorWithDetails(c *gin.Context, httpStatus int, code int, message, details string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// ValidationFailed 422 字段校验失败，回显提交的输入
func ValidationFailed(c *gin.Context, fields map[string][]string, input interface{}) {
	c.JSON(http.StatusUnprocessableEntity, Response{
		Code:    10001,
		Message: "The given data was invalid.",
		Errors:  fields,
		Input:   input,
	})
}

// ── 常见快捷方式 ──

// BadRequest 400
func BadRequest(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

// NotFound 404
func NotFound(c *gin.Context, code int, message string) {
	Error(c, http.StatusNotFound, code, message)
}

// Conflict 409
func Conflict(c *gin.Context, code int, message string) {
	Error(c, http.StatusConflict, code, message)
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, 50000, "Internal server error.")
}
