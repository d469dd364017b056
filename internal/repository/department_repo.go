package repository

import (
	"context"

	"gorm.io/gorm"

	"staffdesk/internal/model"
)

// DepartmentRepository 部门数据访问接口
type DepartmentRepository interface {
	Create(ctx context.Context, dept *model.Department) error
	GetByID(ctx context.Context, id string) (*model.Department, error)
	List(ctx context.Context) ([]model.Department, error)
	Update(ctx context.Context, dept *model.Department) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	// CountEmployees 统计引用该部门的员工数
	CountEmployees(ctx context.Context, departmentID string, scope Scope) (int64, error)
	// BatchCountEmployees 批量统计在职员工数，避免 N+1
	BatchCountEmployees(ctx context.Context, departmentIDs []string) (map[string]int64, error)
}

// departmentRepo DepartmentRepository 的 GORM 实现
type departmentRepo struct {
	db *gorm.DB
}

// NewDepartmentRepo 创建 DepartmentRepository 实例
func NewDepartmentRepo(db *gorm.DB) DepartmentRepository {
	return &departmentRepo{db: db}
}

func (r *departmentRepo) Create(ctx context.Context, dept *model.Department) error {
	return r.db.WithContext(ctx).Create(dept).Error
}

func (r *departmentRepo) GetByID(ctx context.Context, id string) (*model.Department, error) {
	var dept model.Department
	err := r.db.WithContext(ctx).
		Where("department_id = ?", id).
		First(&dept).Error
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepo) List(ctx context.Context) ([]model.Department, error) {
	var depts []model.Department
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&depts).Error
	return depts, err
}

// Update 只覆盖可编辑的三个字段
func (r *departmentRepo) Update(ctx context.Context, dept *model.Department) error {
	result := r.db.WithContext(ctx).
		Model(dept).
		Select("department_name", "description", "goal", "updated_at").
		Updates(dept)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *departmentRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("department_id = ?", id).
		Delete(&model.Department{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *departmentRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Department{}).Count(&count).Error
	return count, err
}

func (r *departmentRepo) CountEmployees(ctx context.Context, departmentID string, scope Scope) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).
		Model(&model.Employee{}).
		Where("department_id = ?", departmentID)
	err := scope.apply(q, "employees").Count(&count).Error
	return count, err
}

func (r *departmentRepo) BatchCountEmployees(ctx context.Context, departmentIDs []string) (map[string]int64, error) {
	result := make(map[string]int64, len(departmentIDs))
	if len(departmentIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		DepartmentID string
		Count        int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Employee{}).
		Select("department_id, COUNT(*) AS count").
		Where("department_id IN ? AND deleted_at IS NULL", departmentIDs).
		Group("department_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.DepartmentID] = row.Count
	}
	return result, nil
}
