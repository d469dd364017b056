package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"staffdesk/internal/dto"
	"staffdesk/internal/model"
	"staffdesk/internal/repository"
	apperrors "staffdesk/pkg/errors"
	"staffdesk/pkg/storage"
)

// ── 员工模块业务错误 ──

var (
	ErrEmployeeNotFound          = fmt.Errorf("%w: 员工不存在", apperrors.ErrNotFound)
	ErrPhotoNotFound             = fmt.Errorf("%w: 照片不存在", apperrors.ErrNotFound)
	ErrEmployeeDepartmentMissing = fmt.Errorf("%w: 所选部门不存在", apperrors.ErrReference)
	ErrPhotoStorage              = fmt.Errorf("%w: 照片存储失败", apperrors.ErrStorage)
)

const emailTakenMessage = "The email has already been taken."

// EmployeeService 员工业务接口
//
// 软删除语义：
//   - SoftDelete 对已在回收站的记录为幂等空操作
//   - Restore / ForceDelete 通过包含回收站的查询定位记录
//   - ForceDelete 同时删除照片文件，文件删除失败时记录删除回滚
type EmployeeService interface {
	List(ctx context.Context, req *dto.EmployeeListRequest) ([]dto.EmployeeResponse, error)
	ListTrashed(ctx context.Context) ([]dto.EmployeeResponse, error)
	GetByID(ctx context.Context, id string) (*dto.EmployeeResponse, error)
	Create(ctx context.Context, req *dto.EmployeeRequest, photo *dto.PhotoUpload) (*dto.EmployeeResponse, error)
	Update(ctx context.Context, id string, req *dto.EmployeeRequest, photo *dto.PhotoUpload) (*dto.EmployeeResponse, error)
	SoftDelete(ctx context.Context, id string) (*dto.EmployeeResponse, error)
	Restore(ctx context.Context, id string) (*dto.EmployeeResponse, error)
	ForceDelete(ctx context.Context, id string) error
	// OpenPhoto 返回照片内容与 MIME，调用方负责关闭
	OpenPhoto(ctx context.Context, id string) (io.ReadCloser, string, error)
}

type employeeService struct {
	repo    *repository.Repository
	storage storage.Storage
	logger  *zap.Logger
	now     func() time.Time
}

// NewEmployeeService 创建 EmployeeService 实例
func NewEmployeeService(repo *repository.Repository, store storage.Storage, logger *zap.Logger) EmployeeService {
	return &employeeService{
		repo:    repo,
		storage: store,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ────────────────────── List ──────────────────────

func (s *employeeService) List(ctx context.Context, req *dto.EmployeeListRequest) ([]dto.EmployeeResponse, error) {
	employees, err := listEmployees(ctx, s.repo, req)
	if err != nil {
		s.logger.Error("列出员工失败", zap.Error(err))
		return nil, err
	}
	return toEmployeeResponses(employees), nil
}

func (s *employeeService) ListTrashed(ctx context.Context) ([]dto.EmployeeResponse, error) {
	employees, err := s.repo.Employee.List(ctx, repository.EmployeeFilter{}, repository.ScopeTrashed)
	if err != nil {
		s.logger.Error("列出回收站员工失败", zap.Error(err))
		return nil, err
	}
	return toEmployeeResponses(employees), nil
}

// listEmployees 列表与导出共用的筛选逻辑
func listEmployees(ctx context.Context, repo *repository.Repository, req *dto.EmployeeListRequest) ([]model.Employee, error) {
	filter := repository.EmployeeFilter{}
	if req != nil {
		filter.Search = strings.TrimSpace(req.Search)
		filter.DepartmentID = strings.TrimSpace(req.DepartmentFilter)
	}
	// 非法的部门 ID 不可能匹配任何记录
	if filter.DepartmentID != "" && !isUUID(filter.DepartmentID) {
		return []model.Employee{}, nil
	}
	return repo.Employee.List(ctx, filter, repository.ScopeActive)
}

// ────────────────────── GetByID ──────────────────────

func (s *employeeService) GetByID(ctx context.Context, id string) (*dto.EmployeeResponse, error) {
	emp, err := s.findEmployee(ctx, id, repository.ScopeActive)
	if err != nil {
		return nil, err
	}
	resp := toEmployeeResponse(emp)
	return &resp, nil
}

// ────────────────────── Create ──────────────────────

func (s *employeeService) Create(ctx context.Context, req *dto.EmployeeRequest, photo *dto.PhotoUpload) (*dto.EmployeeResponse, error) {
	salary, prepared, err := s.validateEmployee(ctx, req, photo, "")
	if err != nil {
		return nil, err
	}

	dept, err := s.resolveDepartment(ctx, req.DepartmentID)
	if err != nil {
		return nil, err
	}

	emp := &model.Employee{}
	applyEmployeeInput(emp, req, salary)

	// 先写照片，记录写入失败时清理
	if prepared != nil {
		key, err := s.storePhoto(ctx, prepared)
		if err != nil {
			return nil, err
		}
		emp.Photo = &key
	}

	if err := s.repo.Employee.Create(ctx, emp); err != nil {
		if emp.HasPhoto() {
			s.discardPhoto(ctx, *emp.Photo)
		}
		return nil, s.mapWriteError(err, "创建员工失败")
	}

	emp.Department = dept
	s.logger.Info("员工已创建", zap.String("employee_id", emp.EmployeeID))
	resp := toEmployeeResponse(emp)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *employeeService) Update(ctx context.Context, id string, req *dto.EmployeeRequest, photo *dto.PhotoUpload) (*dto.EmployeeResponse, error) {
	emp, err := s.findEmployee(ctx, id, repository.ScopeActive)
	if err != nil {
		return nil, err
	}

	salary, prepared, err := s.validateEmployee(ctx, req, photo, emp.EmployeeID)
	if err != nil {
		return nil, err
	}

	dept, err := s.resolveDepartment(ctx, req.DepartmentID)
	if err != nil {
		return nil, err
	}

	oldPhoto := emp.Photo
	applyEmployeeInput(emp, req, salary)

	var newKey string
	if prepared != nil {
		newKey, err = s.storePhoto(ctx, prepared)
		if err != nil {
			return nil, err
		}
		emp.Photo = &newKey
	}

	emp.Department = nil
	if err := s.repo.Employee.Update(ctx, emp); err != nil {
		if newKey != "" {
			s.discardPhoto(ctx, newKey)
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, s.mapWriteError(err, "更新员工失败")
	}

	// 新照片已落盘且记录已更新，才删除旧照片
	if newKey != "" && oldPhoto != nil && *oldPhoto != "" {
		if err := s.storage.Delete(ctx, *oldPhoto); err != nil {
			s.logger.Warn("删除旧照片失败，文件将成为孤儿",
				zap.String("employee_id", id), zap.String("photo", *oldPhoto), zap.Error(err))
		}
	}

	emp.Department = dept
	resp := toEmployeeResponse(emp)
	return &resp, nil
}

// ────────────────────── SoftDelete / Restore ──────────────────────

func (s *employeeService) SoftDelete(ctx context.Context, id string) (*dto.EmployeeResponse, error) {
	emp, err := s.findEmployee(ctx, id, repository.ScopeAll)
	if err != nil {
		return nil, err
	}

	if emp.Status() == model.StatusActive {
		now := s.now()
		if err := s.repo.Employee.SetDeletedAt(ctx, emp.EmployeeID, &now); err != nil {
			return nil, s.mapLookupError(err, id, "软删除员工失败")
		}
		emp.DeletedAt = &now
		s.logger.Info("员工已移入回收站", zap.String("employee_id", id))
	}

	resp := toEmployeeResponse(emp)
	return &resp, nil
}

func (s *employeeService) Restore(ctx context.Context, id string) (*dto.EmployeeResponse, error) {
	emp, err := s.findEmployee(ctx, id, repository.ScopeAll)
	if err != nil {
		return nil, err
	}

	if emp.Status() == model.StatusTrashed {
		if err := s.repo.Employee.SetDeletedAt(ctx, emp.EmployeeID, nil); err != nil {
			return nil, s.mapLookupError(err, id, "恢复员工失败")
		}
		emp.DeletedAt = nil
		s.logger.Info("员工已恢复", zap.String("employee_id", id))
	}

	resp := toEmployeeResponse(emp)
	return &resp, nil
}

// ────────────────────── ForceDelete ──────────────────────

func (s *employeeService) ForceDelete(ctx context.Context, id string) error {
	emp, err := s.findEmployee(ctx, id, repository.ScopeAll)
	if err != nil {
		return err
	}

	err = s.repo.Employee.ForceDelete(ctx, emp.EmployeeID, func() error {
		if !emp.HasPhoto() {
			return nil
		}
		if err := s.storage.Delete(ctx, *emp.Photo); err != nil {
			return fmt.Errorf("%w: %v", ErrPhotoStorage, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrStorage) {
			s.logger.Error("删除照片失败，已回滚", zap.String("employee_id", id), zap.Error(err))
			return err
		}
		return s.mapLookupError(err, id, "永久删除员工失败")
	}

	s.logger.Info("员工已永久删除", zap.String("employee_id", id))
	return nil
}

// ────────────────────── OpenPhoto ──────────────────────

func (s *employeeService) OpenPhoto(ctx context.Context, id string) (io.ReadCloser, string, error) {
	emp, err := s.findEmployee(ctx, id, repository.ScopeActive)
	if err != nil {
		return nil, "", err
	}
	if !emp.HasPhoto() {
		return nil, "", ErrPhotoNotFound
	}

	rc, err := s.storage.Open(ctx, *emp.Photo)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, "", ErrPhotoNotFound
		}
		s.logger.Error("读取照片失败", zap.String("employee_id", id), zap.Error(err))
		return nil, "", fmt.Errorf("%w: %v", ErrPhotoStorage, err)
	}
	return rc, photoContentType(*emp.Photo), nil
}

// ── 内部辅助方法 ──

// validateEmployee 汇总字段校验、照片校验与邮箱唯一性（excludeID 为更新时的自身 ID）
func (s *employeeService) validateEmployee(ctx context.Context, req *dto.EmployeeRequest, photo *dto.PhotoUpload, excludeID string) (int64, *preparedPhoto, error) {
	normalizeEmployeeRequest(req)
	ve := validateStruct(req)

	var salary int64
	if _, bad := ve.Fields["salary"]; !bad {
		salary, _ = strconv.ParseInt(string(req.Salary), 10, 64)
		if salary < 0 {
			ve.Add("salary", "The salary field must be at least 0.")
		}
	}

	var prepared *preparedPhoto
	if photo != nil {
		var photoErrs *apperrors.ValidationError
		prepared, photoErrs = preparePhoto(photo)
		ve.Merge(photoErrs)
	}

	if _, bad := ve.Fields["email"]; !bad {
		existing, err := s.repo.Employee.GetByEmail(ctx, req.Email)
		switch {
		case err == nil && existing.EmployeeID != excludeID:
			ve.Add("email", emailTakenMessage)
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			s.logger.Error("查询邮箱失败", zap.Error(err))
			return 0, nil, err
		}
	}

	if ve.HasErrors() {
		return 0, nil, ve
	}
	return salary, prepared, nil
}

func (s *employeeService) resolveDepartment(ctx context.Context, id string) (*model.Department, error) {
	if !isUUID(id) {
		return nil, ErrEmployeeDepartmentMissing
	}
	dept, err := s.repo.Department.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeDepartmentMissing
		}
		s.logger.Error("查询部门失败", zap.String("department_id", id), zap.Error(err))
		return nil, err
	}
	return dept, nil
}

func (s *employeeService) findEmployee(ctx context.Context, id string, scope repository.Scope) (*model.Employee, error) {
	if !isUUID(id) {
		return nil, ErrEmployeeNotFound
	}
	emp, err := s.repo.Employee.GetByID(ctx, id, scope)
	if err != nil {
		return nil, s.mapLookupError(err, id, "查询员工失败")
	}
	return emp, nil
}

func (s *employeeService) storePhoto(ctx context.Context, p *preparedPhoto) (string, error) {
	key := p.newKey()
	if err := s.storage.Put(ctx, key, bytes.NewReader(p.data), int64(len(p.data)), p.contentType); err != nil {
		s.logger.Error("写入照片失败", zap.String("photo", key), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrPhotoStorage, err)
	}
	s.logger.Debug("照片已写入", zap.String("photo", key), zap.Stringer("content", p))
	return key, nil
}

// discardPhoto 清理因记录写入失败而未被引用的照片
func (s *employeeService) discardPhoto(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Warn("清理未引用照片失败", zap.String("photo", key), zap.Error(err))
	}
}

func (s *employeeService) mapLookupError(err error, id, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrEmployeeNotFound
	}
	s.logger.Error(msg, zap.String("id", id), zap.Error(err))
	return err
}

// mapWriteError 将存储层约束冲突映射为业务错误（并发写入时唯一索引/外键兜底）
func (s *employeeService) mapWriteError(err error, msg string) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		ve := apperrors.NewValidationError()
		ve.Add("email", emailTakenMessage)
		return ve
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrEmployeeDepartmentMissing
	}
	s.logger.Error(msg, zap.Error(err))
	return err
}

func normalizeEmployeeRequest(req *dto.EmployeeRequest) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Position = strings.TrimSpace(req.Position)
	req.Salary = dto.NumericString(strings.TrimSpace(string(req.Salary)))
	req.DepartmentID = strings.TrimSpace(req.DepartmentID)
}

// applyEmployeeInput 显式映射可编辑字段，photo 由调用方单独处理
func applyEmployeeInput(emp *model.Employee, req *dto.EmployeeRequest, salary int64) {
	emp.Name = req.Name
	emp.Email = req.Email
	emp.Position = req.Position
	emp.Salary = salary
	emp.DepartmentID = req.DepartmentID
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

func toEmployeeResponse(emp *model.Employee) dto.EmployeeResponse {
	resp := dto.EmployeeResponse{
		ID:           emp.EmployeeID,
		Name:         emp.Name,
		Email:        emp.Email,
		Position:     emp.Position,
		Salary:       emp.Salary,
		DepartmentID: emp.DepartmentID,
		HasPhoto:     emp.HasPhoto(),
		Status:       string(emp.Status()),
		CreatedAt:    emp.CreatedAt.Format(dto.TimeLayout),
	}
	if emp.Department != nil {
		resp.Department = &dto.DepartmentBrief{
			ID:             emp.Department.DepartmentID,
			DepartmentName: emp.Department.DepartmentName,
		}
	}
	if emp.DeletedAt != nil {
		deletedAt := emp.DeletedAt.Format(dto.TimeLayout)
		resp.DeletedAt = &deletedAt
	}
	return resp
}

func toEmployeeResponses(employees []model.Employee) []dto.EmployeeResponse {
	result := make([]dto.EmployeeResponse, 0, len(employees))
	for i := range employees {
		result = append(result, toEmployeeResponse(&employees[i]))
	}
	return result
}
