package dto

// ── 部门模块 DTO ──

// DepartmentRequest 创建/更新部门请求（表单或 JSON）
type DepartmentRequest struct {
	DepartmentName string `form:"department_name" json:"department_name" validate:"required,max=255"`
	Description    string `form:"description"     json:"description"     validate:"omitempty,max=1000"`
	Goal           string `form:"goal"            json:"goal"            validate:"omitempty,max=1000"`
}

// DepartmentResponse 部门信息响应
type DepartmentResponse struct {
	ID             string  `json:"id"`
	DepartmentName string  `json:"department_name"`
	Description    *string `json:"description"`
	Goal           *string `json:"goal"`
	EmployeeCount  int64   `json:"employee_count"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

// DepartmentBrief 部门简要信息（嵌入员工响应）
type DepartmentBrief struct {
	ID             string `json:"id"`
	DepartmentName string `json:"department_name"`
}
