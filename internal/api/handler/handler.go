package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"staffdesk/internal/service"
	apperrors "staffdesk/pkg/errors"
	"staffdesk/pkg/response"
)

// 列表路由，变更成功后作为默认跳转目标
const (
	departmentsRoute = "/api/v1/departments"
	employeesRoute   = "/api/v1/employees"
	trashedRoute     = "/api/v1/employees/trashed"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Department *DepartmentHandler
	Employee   *EmployeeHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Department: NewDepartmentHandler(svc.Department),
		Employee:   NewEmployeeHandler(svc.Employee, svc.Department),
		Export:     NewExportHandler(svc.Export),
	}
}

// redirectBack 跳转回来源页面（同源 Referer 的路径部分），否则回到 fallback
func redirectBack(c *gin.Context, fallback string) string {
	ref := c.GetHeader("Referer")
	if ref == "" {
		return fallback
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Host != "" && u.Host != c.Request.Host) || u.Path == "" {
		return fallback
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}

// writeValidationError 字段校验失败时写入 422 并返回 true
func writeValidationError(c *gin.Context, err error, input interface{}) bool {
	ve, ok := apperrors.AsValidation(err)
	if !ok {
		return false
	}
	response.ValidationFailed(c, ve.Fields, input)
	return true
}

// writeBindError 请求体绑定失败：超出大小上限时 413，其余 400
func writeBindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "Request body too large.")
		return
	}
	response.BadRequest(c, 10002, "Malformed request body.")
}
