package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"staffdesk/internal/dto"
	"staffdesk/internal/service"
	"staffdesk/pkg/response"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportEmployees 按列表筛选条件导出员工
// GET /api/v1/employees/export?search=&department_filter=&format=pdf|xlsx
func (h *ExportHandler) ExportEmployees(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10002, "Malformed query string.")
		return
	}

	var (
		render      func(context.Context, *dto.EmployeeListRequest) (*bytes.Buffer, string, error)
		contentType string
	)
	switch strings.ToLower(req.Format) {
	case "", "pdf":
		render, contentType = h.exportSvc.ExportPDF, contentTypePDF
	case "xlsx":
		render, contentType = h.exportSvc.ExportExcel, contentTypeXLSX
	default:
		response.BadRequest(c, 16101, "Unsupported export format.")
		return
	}

	buf, filename, err := render(c.Request.Context(), &req.EmployeeListRequest)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, filename, url.QueryEscape(filename)))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, 16102, "The export file could not be generated.")
	default:
		response.InternalError(c)
	}
}
