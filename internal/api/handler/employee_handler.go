package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"staffdesk/internal/dto"
	"staffdesk/internal/service"
	apperrors "staffdesk/pkg/errors"
	"staffdesk/pkg/response"
)

// EmployeeHandler 员工模块 HTTP 处理器
type EmployeeHandler struct {
	empSvc  service.EmployeeService
	deptSvc service.DepartmentService
}

// NewEmployeeHandler 创建 EmployeeHandler
func NewEmployeeHandler(empSvc service.EmployeeService, deptSvc service.DepartmentService) *EmployeeHandler {
	return &EmployeeHandler{empSvc: empSvc, deptSvc: deptSvc}
}

// ListEmployees 员工列表页：筛选后的员工、全部部门与部门总数
// GET /api/v1/employees?search=&department_filter=
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	var req dto.EmployeeListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10002, "Malformed query string.")
		return
	}

	ctx := c.Request.Context()
	employees, err := h.empSvc.List(ctx, &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	depts, err := h.deptSvc.List(ctx)
	if err != nil {
		response.InternalError(c)
		return
	}
	count, err := h.deptSvc.Count(ctx)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, dto.EmployeeListResponse{
		Employees:         employees,
		Departments:       depts,
		ActiveDepartments: count,
	})
}

// ListTrashed 回收站列表
// GET /api/v1/employees/trashed
func (h *EmployeeHandler) ListTrashed(c *gin.Context) {
	employees, err := h.empSvc.ListTrashed(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": employees})
}

// GetEmployee 获取员工详情
// GET /api/v1/employees/:id
func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	emp, err := h.empSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}

	response.OK(c, emp)
}

// GetPhoto 输出员工照片
// GET /api/v1/employees/:id/photo
func (h *EmployeeHandler) GetPhoto(c *gin.Context) {
	rc, contentType, err := h.empSvc.OpenPhoto(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Cache-Control", "private, max-age=300")
	c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
}

// CreateEmployee 创建员工（multipart 表单可附带 photo）
// POST /api/v1/employees
func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	var req dto.EmployeeRequest
	if err := c.ShouldBind(&req); err != nil {
		writeBindError(c, err)
		return
	}

	photo, closePhoto, err := photoFromRequest(c)
	if err != nil {
		h.handleEmployeeError(c, err, req)
		return
	}
	defer closePhoto()

	if _, err := h.empSvc.Create(c.Request.Context(), &req, photo); err != nil {
		h.handleEmployeeError(c, err, req)
		return
	}

	response.Ack(c, http.StatusCreated, "Employee added successfully.", redirectBack(c, employeesRoute))
}

// UpdateEmployee 更新员工
// PUT /api/v1/employees/:id
func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	var req dto.EmployeeRequest
	if err := c.ShouldBind(&req); err != nil {
		writeBindError(c, err)
		return
	}

	photo, closePhoto, err := photoFromRequest(c)
	if err != nil {
		h.handleEmployeeError(c, err, req)
		return
	}
	defer closePhoto()

	if _, err := h.empSvc.Update(c.Request.Context(), c.Param("id"), &req, photo); err != nil {
		h.handleEmployeeError(c, err, req)
		return
	}

	response.Ack(c, http.StatusOK, "Employee updated successfully.", redirectBack(c, employeesRoute))
}

// DeleteEmployee 软删除（移入回收站）
// DELETE /api/v1/employees/:id
func (h *EmployeeHandler) DeleteEmployee(c *gin.Context) {
	if _, err := h.empSvc.SoftDelete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleEmployeeError(c, err)
		return
	}

	response.Ack(c, http.StatusOK, "Employee deleted successfully.", redirectBack(c, employeesRoute))
}

// RestoreEmployee 从回收站恢复
// POST /api/v1/employees/:id/restore
func (h *EmployeeHandler) RestoreEmployee(c *gin.Context) {
	if _, err := h.empSvc.Restore(c.Request.Context(), c.Param("id")); err != nil {
		h.handleEmployeeError(c, err)
		return
	}

	response.Ack(c, http.StatusOK, "Employee restored successfully.", redirectBack(c, trashedRoute))
}

// ForceDeleteEmployee 永久删除（同时删除照片）
// DELETE /api/v1/employees/:id/force
func (h *EmployeeHandler) ForceDeleteEmployee(c *gin.Context) {
	if err := h.empSvc.ForceDelete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleEmployeeError(c, err)
		return
	}

	response.Ack(c, http.StatusOK, "Employee permanently deleted successfully.", redirectBack(c, trashedRoute))
}

// photoFromRequest 提取 multipart 中的 photo 文件；非 multipart 或未上传时返回 nil
func photoFromRequest(c *gin.Context) (*dto.PhotoUpload, func(), error) {
	noop := func() {}
	if c.ContentType() != binding.MIMEMultipartPOSTForm {
		return nil, noop, nil
	}

	fh, err := c.FormFile("photo")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, noop, nil
		}
		return nil, noop, photoUploadFailed()
	}

	f, err := fh.Open()
	if err != nil {
		return nil, noop, photoUploadFailed()
	}

	return &dto.PhotoUpload{
		Filename: fh.Filename,
		Size:     fh.Size,
		Content:  f,
	}, func() { _ = f.Close() }, nil
}

func photoUploadFailed() error {
	ve := apperrors.NewValidationError()
	ve.Add("photo", "The photo failed to upload.")
	return ve
}

// handleEmployeeError 统一处理员工模块业务错误，input 为校验失败时回显的请求
func (h *EmployeeHandler) handleEmployeeError(c *gin.Context, err error, input ...interface{}) {
	if len(input) > 0 && writeValidationError(c, err, input[0]) {
		return
	}
	switch {
	case errors.Is(err, service.ErrPhotoNotFound):
		response.NotFound(c, 14003, "Photo not found.")
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 14001, "Employee not found.")
	case errors.Is(err, service.ErrEmployeeDepartmentMissing):
		response.NotFound(c, 14002, "The selected department does not exist.")
	case errors.Is(err, apperrors.ErrStorage):
		response.Error(c, http.StatusInternalServerError, 15001, "The photo could not be stored.")
	default:
		response.InternalError(c)
	}
}
