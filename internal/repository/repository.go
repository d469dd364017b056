package repository

import "gorm.io/gorm"

// Scope 软删除实体的查询范围，调用方必须显式指定
type Scope int

const (
	// ScopeActive 仅未删除记录
	ScopeActive Scope = iota
	// ScopeTrashed 仅已软删除记录
	ScopeTrashed
	// ScopeAll 包含已软删除记录
	ScopeAll
)

// apply 为查询追加 deleted_at 条件
func (s Scope) apply(db *gorm.DB, table string) *gorm.DB {
	switch s {
	case ScopeActive:
		return db.Where(table + ".deleted_at IS NULL")
	case ScopeTrashed:
		return db.Where(table + ".deleted_at IS NOT NULL")
	default:
		return db
	}
}

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Department DepartmentRepository
	Employee   EmployeeRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Department: NewDepartmentRepo(db),
		Employee:   NewEmployeeRepo(db),
	}
}
