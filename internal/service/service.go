package service

import (
	"go.uber.org/zap"

	"staffdesk/config"
	"staffdesk/internal/repository"
	"staffdesk/pkg/storage"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Department DepartmentService
	Employee   EmployeeService
	Export     ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	store storage.Storage,
	logger *zap.Logger,
) *Service {
	return &Service{
		Department: NewDepartmentService(repo, logger),
		Employee:   NewEmployeeService(repo, store, logger),
		Export:     NewExportService(repo, cfg.Export.Location(), logger),
	}
}
