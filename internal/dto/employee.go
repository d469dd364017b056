package dto

import (
	"bytes"
	"encoding/json"
	"io"
)

// ── 员工模块 DTO ──

// EmployeeRequest 创建/更新员工请求
// Salary 保留原始文本，由 service 层解析为整数以给出字段级错误
type EmployeeRequest struct {
	Name         string        `form:"name"          json:"name"          validate:"required,max=255"`
	Email        string        `form:"email"         json:"email"         validate:"required,email,max=255"`
	Position     string        `form:"position"      json:"position"      validate:"required,max=255"`
	Salary       NumericString `form:"salary"        json:"salary"        validate:"required,integer"`
	DepartmentID string        `form:"department_id" json:"department_id" validate:"required"`
}

// NumericString 数值型表单字段：JSON 中可为数字或字符串，统一保留原始文本
type NumericString string

// UnmarshalJSON 字符串取其内容，null 视为空，其余字面量（数字、布尔等）原样保留交给校验
func (n *NumericString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*n = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumericString(s)
	default:
		*n = NumericString(data)
	}
	return nil
}

// PhotoUpload 随请求上传的照片
type PhotoUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// EmployeeListRequest 员工列表/导出查询参数
type EmployeeListRequest struct {
	Search           string `form:"search"`
	DepartmentFilter string `form:"department_filter"`
}

// ExportRequest 导出参数
type ExportRequest struct {
	EmployeeListRequest
	Format string `form:"format"`
}

// EmployeeResponse 员工信息响应
type EmployeeResponse struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Email        string           `json:"email"`
	Position     string           `json:"position"`
	Salary       int64            `json:"salary"`
	DepartmentID string           `json:"department_id"`
	Department   *DepartmentBrief `json:"department,omitempty"`
	HasPhoto     bool             `json:"has_photo"`
	Status       string           `json:"status"`
	CreatedAt    string           `json:"created_at"`
	DeletedAt    *string          `json:"deleted_at,omitempty"`
}

// EmployeeListResponse 员工列表页数据：员工、全部部门与部门总数
type EmployeeListResponse struct {
	Employees         []EmployeeResponse   `json:"employees"`
	Departments       []DepartmentResponse `json:"departments"`
	ActiveDepartments int64                `json:"active_departments"`
}
