package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"staffdesk/internal/model"
)

// EmployeeFilter 员工列表筛选条件
type EmployeeFilter struct {
	Search       string // 姓名或邮箱子串，不区分大小写
	DepartmentID string
}

// EmployeeRepository 员工数据访问接口
type EmployeeRepository interface {
	Create(ctx context.Context, emp *model.Employee) error
	GetByID(ctx context.Context, id string, scope Scope) (*model.Employee, error)
	// GetByEmail 在全部未清除记录中查找（含软删除），不区分大小写
	GetByEmail(ctx context.Context, email string) (*model.Employee, error)
	List(ctx context.Context, filter EmployeeFilter, scope Scope) ([]model.Employee, error)
	Update(ctx context.Context, emp *model.Employee) error
	SetDeletedAt(ctx context.Context, id string, deletedAt *time.Time) error
	// ForceDelete 在事务内删除记录并执行 afterDelete；afterDelete 失败则回滚
	ForceDelete(ctx context.Context, id string, afterDelete func() error) error
}

// employeeRepo EmployeeRepository 的 GORM 实现
type employeeRepo struct {
	db *gorm.DB
}

// NewEmployeeRepo 创建 EmployeeRepository 实例
func NewEmployeeRepo(db *gorm.DB) EmployeeRepository {
	return &employeeRepo{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *employeeRepo) Create(ctx context.Context, emp *model.Employee) error {
	return r.db.WithContext(ctx).Omit("Department").Create(emp).Error
}

func (r *employeeRepo) GetByID(ctx context.Context, id string, scope Scope) (*model.Employee, error) {
	var emp model.Employee
	q := r.db.WithContext(ctx).
		Preload("Department").
		Where("employee_id = ?", id)
	if err := scope.apply(q, "employees").First(&emp).Error; err != nil {
		return nil, err
	}
	return &emp, nil
}

func (r *employeeRepo) GetByEmail(ctx context.Context, email string) (*model.Employee, error) {
	var emp model.Employee
	err := r.db.WithContext(ctx).
		Where("lower(email) = lower(?)", email).
		First(&emp).Error
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

func (r *employeeRepo) List(ctx context.Context, filter EmployeeFilter, scope Scope) ([]model.Employee, error) {
	var employees []model.Employee

	q := r.db.WithContext(ctx).Model(&model.Employee{}).Preload("Department")
	q = scope.apply(q, "employees")

	if filter.Search != "" {
		pattern := "%" + likeEscaper.Replace(filter.Search) + "%"
		q = q.Where("(employees.name ILIKE ? OR employees.email ILIKE ?)", pattern, pattern)
	}
	if filter.DepartmentID != "" {
		q = q.Where("employees.department_id = ?", filter.DepartmentID)
	}

	if scope == ScopeTrashed {
		q = q.Order("employees.deleted_at DESC")
	} else {
		q = q.Order("employees.created_at DESC")
	}

	err := q.Find(&employees).Error
	return employees, err
}

// Update 只覆盖可编辑字段
func (r *employeeRepo) Update(ctx context.Context, emp *model.Employee) error {
	result := r.db.WithContext(ctx).
		Model(emp).
		Select("name", "email", "position", "salary", "department_id", "photo", "updated_at").
		Where("deleted_at IS NULL").
		Updates(emp)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *employeeRepo) SetDeletedAt(ctx context.Context, id string, deletedAt *time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.Employee{}).
		Where("employee_id = ?", id).
		Update("deleted_at", deletedAt)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *employeeRepo) ForceDelete(ctx context.Context, id string, afterDelete func() error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("employee_id = ?", id).Delete(&model.Employee{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if afterDelete != nil {
			return afterDelete()
		}
		return nil
	})
}
