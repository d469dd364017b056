package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"staffdesk/internal/dto"
	"staffdesk/internal/model"
	"staffdesk/internal/repository"
	apperrors "staffdesk/pkg/errors"
)

// ── 部门模块业务错误 ──

var (
	ErrDepartmentNotFound = fmt.Errorf("%w: 部门不存在", apperrors.ErrNotFound)
	ErrDepartmentInUse    = fmt.Errorf("%w: 部门下存在员工，无法删除", apperrors.ErrReference)
)

// DepartmentService 部门业务接口
type DepartmentService interface {
	List(ctx context.Context) ([]dto.DepartmentResponse, error)
	GetByID(ctx context.Context, id string) (*dto.DepartmentResponse, error)
	Create(ctx context.Context, req *dto.DepartmentRequest) (*dto.DepartmentResponse, error)
	Update(ctx context.Context, id string, req *dto.DepartmentRequest) (*dto.DepartmentResponse, error)
	// Delete 硬删除；仍有员工（含回收站）引用时返回 ErrDepartmentInUse
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type departmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDepartmentService 创建 DepartmentService 实例
func NewDepartmentService(repo *repository.Repository, logger *zap.Logger) DepartmentService {
	return &departmentService{repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *departmentService) List(ctx context.Context) ([]dto.DepartmentResponse, error) {
	depts, err := s.repo.Department.List(ctx)
	if err != nil {
		s.logger.Error("列出部门失败", zap.Error(err))
		return nil, err
	}

	deptIDs := make([]string, 0, len(depts))
	for _, d := range depts {
		deptIDs = append(deptIDs, d.DepartmentID)
	}
	countMap, err := s.repo.Department.BatchCountEmployees(ctx, deptIDs)
	if err != nil {
		s.logger.Warn("批量查询员工数失败，回退为0", zap.Error(err))
		countMap = make(map[string]int64)
	}

	result := make([]dto.DepartmentResponse, 0, len(depts))
	for i := range depts {
		result = append(result, toDepartmentResponse(&depts[i], countMap[depts[i].DepartmentID]))
	}
	return result, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *departmentService) GetByID(ctx context.Context, id string) (*dto.DepartmentResponse, error) {
	dept, err := s.findDepartment(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, dept), nil
}

// ────────────────────── Create ──────────────────────

func (s *departmentService) Create(ctx context.Context, req *dto.DepartmentRequest) (*dto.DepartmentResponse, error) {
	normalizeDepartmentRequest(req)
	if ve := validateStruct(req); ve.HasErrors() {
		return nil, ve
	}

	dept := &model.Department{}
	applyDepartmentInput(dept, req)

	if err := s.repo.Department.Create(ctx, dept); err != nil {
		s.logger.Error("创建部门失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("部门已创建", zap.String("department_id", dept.DepartmentID))
	resp := toDepartmentResponse(dept, 0)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *departmentService) Update(ctx context.Context, id string, req *dto.DepartmentRequest) (*dto.DepartmentResponse, error) {
	dept, err := s.findDepartment(ctx, id)
	if err != nil {
		return nil, err
	}

	normalizeDepartmentRequest(req)
	if ve := validateStruct(req); ve.HasErrors() {
		return nil, ve
	}

	applyDepartmentInput(dept, req)

	if err := s.repo.Department.Update(ctx, dept); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		s.logger.Error("更新部门失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.detail(ctx, dept), nil
}

// ────────────────────── Delete ──────────────────────

func (s *departmentService) Delete(ctx context.Context, id string) error {
	dept, err := s.findDepartment(ctx, id)
	if err != nil {
		return err
	}

	// 回收站中的员工仍持有外键，同样阻止删除
	count, err := s.repo.Department.CountEmployees(ctx, dept.DepartmentID, repository.ScopeAll)
	if err != nil {
		s.logger.Error("查询部门员工数失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrDepartmentInUse
	}

	if err := s.repo.Department.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrDepartmentNotFound
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return ErrDepartmentInUse
		}
		s.logger.Error("删除部门失败", zap.String("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("部门已删除", zap.String("department_id", id))
	return nil
}

// ────────────────────── Count ──────────────────────

func (s *departmentService) Count(ctx context.Context) (int64, error) {
	count, err := s.repo.Department.Count(ctx)
	if err != nil {
		s.logger.Error("统计部门数失败", zap.Error(err))
		return 0, err
	}
	return count, nil
}

// ── 内部辅助方法 ──

func (s *departmentService) findDepartment(ctx context.Context, id string) (*model.Department, error) {
	if !isUUID(id) {
		return nil, ErrDepartmentNotFound
	}
	dept, err := s.repo.Department.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		s.logger.Error("查询部门失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return dept, nil
}

func (s *departmentService) detail(ctx context.Context, dept *model.Department) *dto.DepartmentResponse {
	count, err := s.repo.Department.CountEmployees(ctx, dept.DepartmentID, repository.ScopeActive)
	if err != nil {
		s.logger.Warn("查询部门员工数失败", zap.String("id", dept.DepartmentID), zap.Error(err))
	}
	resp := toDepartmentResponse(dept, count)
	return &resp
}

func normalizeDepartmentRequest(req *dto.DepartmentRequest) {
	req.DepartmentName = strings.TrimSpace(req.DepartmentName)
	req.Description = strings.TrimSpace(req.Description)
	req.Goal = strings.TrimSpace(req.Goal)
}

// applyDepartmentInput 显式映射可编辑字段
func applyDepartmentInput(dept *model.Department, req *dto.DepartmentRequest) {
	dept.DepartmentName = req.DepartmentName
	dept.Description = optionalString(req.Description)
	dept.Goal = optionalString(req.Goal)
}

func toDepartmentResponse(dept *model.Department, employeeCount int64) dto.DepartmentResponse {
	return dto.DepartmentResponse{
		ID:             dept.DepartmentID,
		DepartmentName: dept.DepartmentName,
		Description:    dept.Description,
		Goal:           dept.Goal,
		EmployeeCount:  employeeCount,
		CreatedAt:      dept.CreatedAt.Format(dto.TimeLayout),
		UpdatedAt:      dept.UpdatedAt.Format(dto.TimeLayout),
	}
}
