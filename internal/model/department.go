package model

// Department 部门表 — 对应 departments
type Department struct {
	DepartmentID   string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"department_id"`
	DepartmentName string  `gorm:"type:varchar(255);not null"                     json:"department_name"`
	Description    *string `gorm:"type:varchar(1000)"                             json:"description"`
	Goal           *string `gorm:"type:varchar(1000)"                             json:"goal"`
	BaseModel
}

// TableName 指定表名
func (Department) TableName() string { return "departments" }
