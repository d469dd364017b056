package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"staffdesk/internal/dto"
	"staffdesk/internal/service"
	"staffdesk/pkg/response"
)

// DepartmentHandler 部门模块 HTTP 处理器
type DepartmentHandler struct {
	deptSvc service.DepartmentService
}

// NewDepartmentHandler 创建 DepartmentHandler
func NewDepartmentHandler(deptSvc service.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{deptSvc: deptSvc}
}

// ListDepartments 获取部门列表
// GET /api/v1/departments
func (h *DepartmentHandler) ListDepartments(c *gin.Context) {
	depts, err := h.deptSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": depts})
}

// GetDepartment 获取部门详情
// GET /api/v1/departments/:id
func (h *DepartmentHandler) GetDepartment(c *gin.Context) {
	dept, err := h.deptSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleDepartmentError(c, err)
		return
	}

	response.OK(c, dept)
}

// CreateDepartment 创建部门
// POST /api/v1/departments
func (h *DepartmentHandler) CreateDepartment(c *gin.Context) {
	var req dto.DepartmentRequest
	if err := c.ShouldBind(&req); err != nil {
		writeBindError(c, err)
		return
	}

	if _, err := h.deptSvc.Create(c.Request.Context(), &req); err != nil {
		h.handleDepartmentError(c, err, req)
		return
	}

	response.Ack(c, http.StatusCreated, "Department added successfully.", redirectBack(c, departmentsRoute))
}

// UpdateDepartment 更新部门
// PUT /api/v1/departments/:id
func (h *DepartmentHandler) UpdateDepartment(c *gin.Context) {
	var req dto.DepartmentRequest
	if err := c.ShouldBind(&req); err != nil {
		writeBindError(c, err)
		return
	}

	if _, err := h.deptSvc.Update(c.Request.Context(), c.Param("id"), &req); err != nil {
		h.handleDepartmentError(c, err, req)
		return
	}

	response.Ack(c, http.StatusOK, "Department updated successfully.", redirectBack(c, departmentsRoute))
}

// DeleteDepartment 删除部门
// DELETE /api/v1/departments/:id
func (h *DepartmentHandler) DeleteDepartment(c *gin.Context) {
	if err := h.deptSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleDepartmentError(c, err)
		return
	}

	response.Ack(c, http.StatusOK, "Department deleted successfully.", redirectBack(c, departmentsRoute))
}

// handleDepartmentError 统一处理部门模块业务错误，input 为校验失败时回显的请求
func (h *DepartmentHandler) handleDepartmentError(c *gin.Context, err error, input ...interface{}) {
	if len(input) > 0 && writeValidationError(c, err, input[0]) {
		return
	}
	switch {
	case errors.Is(err, service.ErrDepartmentNotFound):
		response.NotFound(c, 13001, "Department not found.")
	case errors.Is(err, service.ErrDepartmentInUse):
		response.Conflict(c, 13003, "Department still has employees and cannot be deleted.")
	default:
		response.InternalError(c)
	}
}
