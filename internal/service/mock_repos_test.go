package service

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"staffdesk/internal/model"
	"staffdesk/internal/repository"
	"staffdesk/pkg/storage"
)

// mockClock 单调递增的时间源，保证 created_at 排序稳定
type mockClock struct {
	t time.Time
}

func newMockClock() *mockClock {
	return &mockClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *mockClock) next() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

// ── Mock DepartmentRepository ──

type mockDeptRepo struct {
	depts     map[string]*model.Department
	employees *mockEmployeeRepo
	clock     *mockClock
}

func newMockDeptRepo(clock *mockClock) *mockDeptRepo {
	return &mockDeptRepo{depts: make(map[string]*model.Department), clock: clock}
}

func (m *mockDeptRepo) Create(_ context.Context, dept *model.Department) error {
	if dept.DepartmentID == "" {
		dept.DepartmentID = uuid.NewString()
	}
	now := m.clock.next()
	dept.CreatedAt, dept.UpdatedAt = now, now
	cp := *dept
	m.depts[dept.DepartmentID] = &cp
	return nil
}

func (m *mockDeptRepo) GetByID(_ context.Context, id string) (*model.Department, error) {
	if d, ok := m.depts[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) List(_ context.Context) ([]model.Department, error) {
	result := make([]model.Department, 0, len(m.depts))
	for _, d := range m.depts {
		result = append(result, *d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *mockDeptRepo) Update(_ context.Context, dept *model.Department) error {
	stored, ok := m.depts[dept.DepartmentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	dept.UpdatedAt = m.clock.next()
	stored.DepartmentName = dept.DepartmentName
	stored.Description = dept.Description
	stored.Goal = dept.Goal
	stored.UpdatedAt = dept.UpdatedAt
	return nil
}

func (m *mockDeptRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.depts[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	// 与数据库 ON DELETE RESTRICT 一致
	if m.employees != nil {
		for _, e := range m.employees.employees {
			if e.DepartmentID == id {
				return gorm.ErrForeignKeyViolated
			}
		}
	}
	delete(m.depts, id)
	return nil
}

func (m *mockDeptRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.depts)), nil
}

func (m *mockDeptRepo) CountEmployees(_ context.Context, departmentID string, scope repository.Scope) (int64, error) {
	var n int64
	if m.employees == nil {
		return 0, nil
	}
	for _, e := range m.employees.employees {
		if e.DepartmentID == departmentID && scopeMatches(scope, e) {
			n++
		}
	}
	return n, nil
}

func (m *mockDeptRepo) BatchCountEmployees(ctx context.Context, departmentIDs []string) (map[string]int64, error) {
	result := make(map[string]int64, len(departmentIDs))
	for _, id := range departmentIDs {
		n, _ := m.CountEmployees(ctx, id, repository.ScopeActive)
		if n > 0 {
			result[id] = n
		}
	}
	return result, nil
}

// ── Mock EmployeeRepository ──

type mockEmployeeRepo struct {
	employees map[string]*model.Employee
	depts     *mockDeptRepo
	clock     *mockClock

	// 故障注入
	updateErr error
}

func newMockEmployeeRepo(depts *mockDeptRepo, clock *mockClock) *mockEmployeeRepo {
	m := &mockEmployeeRepo{employees: make(map[string]*model.Employee), depts: depts, clock: clock}
	depts.employees = m
	return m
}

func scopeMatches(scope repository.Scope, e *model.Employee) bool {
	switch scope {
	case repository.ScopeActive:
		return e.DeletedAt == nil
	case repository.ScopeTrashed:
		return e.DeletedAt != nil
	default:
		return true
	}
}

func (m *mockEmployeeRepo) withDepartment(e *model.Employee) model.Employee {
	cp := *e
	cp.Department = nil
	if d, ok := m.depts.depts[e.DepartmentID]; ok {
		dc := *d
		cp.Department = &dc
	}
	return cp
}

func (m *mockEmployeeRepo) Create(_ context.Context, emp *model.Employee) error {
	for _, e := range m.employees {
		if strings.EqualFold(e.Email, emp.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	if _, ok := m.depts.depts[emp.DepartmentID]; !ok {
		return gorm.ErrForeignKeyViolated
	}
	if emp.EmployeeID == "" {
		emp.EmployeeID = uuid.NewString()
	}
	now := m.clock.next()
	emp.CreatedAt, emp.UpdatedAt = now, now
	cp := *emp
	cp.Department = nil
	m.employees[emp.EmployeeID] = &cp
	return nil
}

func (m *mockEmployeeRepo) GetByID(_ context.Context, id string, scope repository.Scope) (*model.Employee, error) {
	e, ok := m.employees[id]
	if !ok || !scopeMatches(scope, e) {
		return nil, gorm.ErrRecordNotFound
	}
	cp := m.withDepartment(e)
	return &cp, nil
}

func (m *mockEmployeeRepo) GetByEmail(_ context.Context, email string) (*model.Employee, error) {
	for _, e := range m.employees {
		if strings.EqualFold(e.Email, email) {
			cp := *e
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepo) List(_ context.Context, filter repository.EmployeeFilter, scope repository.Scope) ([]model.Employee, error) {
	search := strings.ToLower(filter.Search)
	result := make([]model.Employee, 0)
	for _, e := range m.employees {
		if !scopeMatches(scope, e) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(e.Name), search) &&
			!strings.Contains(strings.ToLower(e.Email), search) {
			continue
		}
		if filter.DepartmentID != "" && e.DepartmentID != filter.DepartmentID {
			continue
		}
		result = append(result, m.withDepartment(e))
	}
	sort.Slice(result, func(i, j int) bool {
		if scope == repository.ScopeTrashed {
			return result[i].DeletedAt.After(*result[j].DeletedAt)
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *mockEmployeeRepo) Update(_ context.Context, emp *model.Employee) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	stored, ok := m.employees[emp.EmployeeID]
	if !ok || stored.DeletedAt != nil {
		return gorm.ErrRecordNotFound
	}
	for _, e := range m.employees {
		if e.EmployeeID != emp.EmployeeID && strings.EqualFold(e.Email, emp.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	if _, ok := m.depts.depts[emp.DepartmentID]; !ok {
		return gorm.ErrForeignKeyViolated
	}
	emp.UpdatedAt = m.clock.next()
	stored.Name = emp.Name
	stored.Email = emp.Email
	stored.Position = emp.Position
	stored.Salary = emp.Salary
	stored.DepartmentID = emp.DepartmentID
	stored.Photo = emp.Photo
	stored.UpdatedAt = emp.UpdatedAt
	return nil
}

func (m *mockEmployeeRepo) SetDeletedAt(_ context.Context, id string, deletedAt *time.Time) error {
	e, ok := m.employees[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.DeletedAt = deletedAt
	return nil
}

func (m *mockEmployeeRepo) ForceDelete(_ context.Context, id string, afterDelete func() error) error {
	e, ok := m.employees[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.employees, id)
	if afterDelete != nil {
		if err := afterDelete(); err != nil {
			// 回滚
			m.employees[id] = e
			return err
		}
	}
	return nil
}

// ── 内存照片存储 ──

type memStorage struct {
	objects map[string][]byte

	putErr    error
	deleteErr error
}

func newMemStorage() *memStorage {
	return &memStorage{objects: make(map[string][]byte)}
}

func (m *memStorage) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if m.putErr != nil {
		return m.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

func (m *memStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.objects, key)
	return nil
}

// ── 测试环境 ──

type testEnv struct {
	repo      *repository.Repository
	depts     *mockDeptRepo
	employees *mockEmployeeRepo
	store     *memStorage
	clock     *mockClock
}

func newTestEnv() *testEnv {
	clock := newMockClock()
	depts := newMockDeptRepo(clock)
	employees := newMockEmployeeRepo(depts, clock)
	return &testEnv{
		repo:      &repository.Repository{Department: depts, Employee: employees},
		depts:     depts,
		employees: employees,
		store:     newMemStorage(),
		clock:     clock,
	}
}

func (e *testEnv) seedDepartment(name string) *model.Department {
	d := &model.Department{DepartmentName: name}
	_ = e.depts.Create(context.Background(), d)
	return d
}

func (e *testEnv) seedEmployee(name, email, deptID string, salary int64) *model.Employee {
	emp := &model.Employee{
		Name:         name,
		Email:        email,
		Position:     "Engineer",
		Salary:       salary,
		DepartmentID: deptID,
	}
	_ = e.employees.Create(context.Background(), emp)
	return emp
}
