package model

import "time"

// Employee 员工表 — 对应 employees
//
// DeletedAt 为普通可空列而非 gorm.DeletedAt：
// 查询范围由 repository.Scope 显式指定，不依赖 GORM 的隐式作用域。
// Email 的唯一约束为 lower(email) 表达式索引，见迁移 000003。
type Employee struct {
	EmployeeID   string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"employee_id"`
	Name         string     `gorm:"type:varchar(255);not null"                     json:"name"`
	Email        string     `gorm:"type:varchar(255);not null"                     json:"email"`
	Position     string     `gorm:"type:varchar(255);not null"                     json:"position"`
	Salary       int64      `gorm:"not null"                                       json:"salary"`
	DepartmentID string     `gorm:"type:uuid;not null;index"                       json:"department_id"`
	Photo        *string    `gorm:"type:varchar(512)"                              json:"photo"`
	DeletedAt    *time.Time `gorm:"index"                                          json:"deleted_at"`
	BaseModel

	// 关联
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
}

// TableName 指定表名
func (Employee) TableName() string { return "employees" }

// Status 根据删除标记返回记录状态
func (e *Employee) Status() RecordStatus {
	if e.DeletedAt != nil {
		return StatusTrashed
	}
	return StatusActive
}

// HasPhoto 是否关联了照片
func (e *Employee) HasPhoto() bool {
	return e.Photo != nil && *e.Photo != ""
}
