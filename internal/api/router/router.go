package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"staffdesk/config"
	"staffdesk/internal/api/handler"
	"staffdesk/internal/api/middleware"
	"staffdesk/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时导出限流降级为放行
func Setup(cfg *config.Config, h *handler.Handler, db *gorm.DB, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.MaxMultipartMemory = cfg.Server.MaxBodyBytes

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		if db != nil {
			if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "db": "down"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 避免 typed nil 进入接口
	var limiter middleware.RateLimiter
	if rdb != nil {
		limiter = rdb
	}
	exportLimit := middleware.RateLimit(limiter, cfg.Export.RateLimit, cfg.Export.RateWindow, logger)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 部门模块
		departments := v1.Group("/departments")
		{
			departments.GET("", h.Department.ListDepartments)
			departments.GET("/:id", h.Department.GetDepartment)
			departments.POST("", h.Department.CreateDepartment)
			departments.PUT("/:id", h.Department.UpdateDepartment)
			departments.DELETE("/:id", h.Department.DeleteDepartment)
		}

		// 员工模块（静态路由需先于 /:id 注册）
		employees := v1.Group("/employees")
		{
			employees.GET("", h.Employee.ListEmployees)
			employees.POST("", h.Employee.CreateEmployee)
			employees.GET("/trashed", h.Employee.ListTrashed)
			employees.GET("/export", exportLimit, h.Export.ExportEmployees)
			employees.GET("/:id", h.Employee.GetEmployee)
			employees.GET("/:id/photo", h.Employee.GetPhoto)
			employees.PUT("/:id", h.Employee.UpdateEmployee)
			employees.DELETE("/:id", h.Employee.DeleteEmployee)
			employees.POST("/:id/restore", h.Employee.RestoreEmployee)
			employees.DELETE("/:id/force", h.Employee.ForceDeleteEmployee)
		}
	}

	return r
}
