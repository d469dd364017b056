package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"staffdesk/internal/dto"
	"staffdesk/internal/repository"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("生成导出文件失败")

const (
	reportTitle        = "Employee List"
	reportDateLayout   = "2006-01-02 15:04:05"
	exportFileLayout   = "2006-01-02_150405"
	exportFilePrefix   = "employees_export_"
	noDepartmentLabel  = "N/A"
	excelSalaryNumFmt  = `"$"#,##0.00`
	excelSheetName     = "Employees"
	excelTableStartRow = 5
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 报表与员工列表共用筛选条件（search + department_filter）
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - Total 由 Rows 长度推导，不单独计数
type ExportService interface {
	BuildReport(ctx context.Context, req *dto.EmployeeListRequest) (*EmployeeReport, error)
	// ExportPDF 导出 A4 横向 PDF，返回内容与建议文件名
	ExportPDF(ctx context.Context, req *dto.EmployeeListRequest) (*bytes.Buffer, string, error)
	// ExportExcel 导出 xlsx，返回内容与建议文件名
	ExportExcel(ctx context.Context, req *dto.EmployeeListRequest) (*bytes.Buffer, string, error)
}

// EmployeeReport 导出报表
type EmployeeReport struct {
	Title       string
	GeneratedAt time.Time
	Rows        []ReportRow
}

// Total 报表中的员工数
func (r *EmployeeReport) Total() int {
	return len(r.Rows)
}

// ReportRow 报表行（已格式化的展示值）
type ReportRow struct {
	No           int
	Name         string
	Email        string
	Position     string
	SalaryAmount int64
	Salary       string
	Department   string
	CreatedAt    string
}

type exportService struct {
	repo     *repository.Repository
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportService 创建 ExportService 实例，loc 为导出时间戳所用时区
func NewExportService(repo *repository.Repository, loc *time.Location, logger *zap.Logger) ExportService {
	if loc == nil {
		loc = time.UTC
	}
	return &exportService{repo: repo, location: loc, logger: logger, now: time.Now}
}

// ────────────────────── BuildReport ──────────────────────

func (s *exportService) BuildReport(ctx context.Context, req *dto.EmployeeListRequest) (*EmployeeReport, error) {
	employees, err := listEmployees(ctx, s.repo, req)
	if err != nil {
		s.logger.Error("查询导出员工失败", zap.Error(err))
		return nil, err
	}

	report := &EmployeeReport{
		Title:       reportTitle,
		GeneratedAt: s.now().In(s.location),
		Rows:        make([]ReportRow, 0, len(employees)),
	}
	for i, emp := range employees {
		dept := noDepartmentLabel
		if emp.Department != nil {
			dept = emp.Department.DepartmentName
		}
		report.Rows = append(report.Rows, ReportRow{
			No:           i + 1,
			Name:         emp.Name,
			Email:        emp.Email,
			Position:     emp.Position,
			SalaryAmount: emp.Salary,
			Salary:       formatSalary(emp.Salary),
			Department:   dept,
			CreatedAt:    emp.CreatedAt.In(s.location).Format(reportDateLayout),
		})
	}
	return report, nil
}

// ═══════════════════════════════════════════════════════════
// ExportPDF — A4 横向员工列表
// ═══════════════════════════════════════════════════════════
//
// 版式：
//   - 首页：标题、导出时间、员工总数
//   - 每页：表头行（自动分页时重复）
//   - 页脚：页码 "Page n/N" 与总数

var pdfColumns = []struct {
	title string
	width float64
	align string
}{
	{"No.", 12, "C"},
	{"Name", 45, "L"},
	{"Email", 65, "L"},
	{"Position", 40, "L"},
	{"Salary", 30, "R"},
	{"Department", 45, "L"},
	{"Created At", 40, "C"},
}

func (s *exportService) ExportPDF(ctx context.Context, req *dto.EmployeeListRequest) (*bytes.Buffer, string, error) {
	report, err := s.BuildReport(ctx, req)
	if err != nil {
		return nil, "", err
	}

	buf, err := renderPDF(report)
	if err != nil {
		s.logger.Error("生成 PDF 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	s.logger.Info("员工列表已导出", zap.String("format", "pdf"), zap.Int("total", report.Total()))
	return buf, exportFilename(report.GeneratedAt, "pdf"), nil
}

func renderPDF(report *EmployeeReport) (*bytes.Buffer, error) {
	const (
		rowHeight  = 7.0
		lineHeight = 5.0
	)

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 18)
	pdf.AliasNbPages("")
	pdf.SetTitle(report.Title, false)

	generated := report.GeneratedAt.Format(reportDateLayout)

	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() == 1 {
			pdf.SetFont("Helvetica", "B", 16)
			pdf.CellFormat(0, 10, pdfText(report.Title), "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 10)
			pdf.CellFormat(0, 6, "Exported at: "+generated, "", 1, "L", false, 0, "")
			pdf.CellFormat(0, 6, fmt.Sprintf("Total employees: %d", report.Total()), "", 1, "L", false, 0, "")
			pdf.Ln(3)
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(68, 114, 196)
		pdf.SetTextColor(255, 255, 255)
		for _, col := range pdfColumns {
			pdf.CellFormat(col.width, rowHeight, col.title, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "", 9)
	})

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		left, _, _, _ := pdf.GetMargins()
		pdf.CellFormat(0, 5, fmt.Sprintf("Total employees: %d", report.Total()), "", 0, "L", false, 0, "")
		pdf.SetX(left)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()

	if len(report.Rows) == 0 {
		pdf.CellFormat(0, rowHeight, "No employees found.", "1", 1, "C", false, 0, "")
	}
	left, _, _, bottom := pdf.GetMargins()
	_, pageHeight := pdf.GetPageSize()
	padding := pdf.GetCellMargin()

	for _, row := range report.Rows {
		values := []string{
			fmt.Sprintf("%d", row.No),
			row.Name,
			row.Email,
			row.Position,
			row.Salary,
			row.Department,
			row.CreatedAt,
		}

		// 长文本按列宽折行，行高取最高的单元格
		cells := make([][]string, len(pdfColumns))
		lines := 1
		for i, col := range pdfColumns {
			cells[i] = wrapText(pdf, pdfText(values[i]), col.width-2*padding)
			if len(cells[i]) > lines {
				lines = len(cells[i])
			}
		}
		height := math.Max(rowHeight, float64(lines)*lineHeight)
		if pdf.GetY()+height > pageHeight-bottom {
			pdf.AddPage()
		}

		x, y := pdf.GetXY()
		for i, col := range pdfColumns {
			pdf.Rect(x, y, col.width, height, "D")
			top := y + (height-float64(len(cells[i]))*lineHeight)/2
			for j, line := range cells[i] {
				pdf.SetXY(x, top+float64(j)*lineHeight)
				pdf.CellFormat(col.width, lineHeight, line, "", 0, col.align, false, 0, "")
			}
			x += col.width
		}
		pdf.SetXY(left, y+height)
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ────────────────────── ExportExcel ──────────────────────

func (s *exportService) ExportExcel(ctx context.Context, req *dto.EmployeeListRequest) (*bytes.Buffer, string, error) {
	report, err := s.BuildReport(ctx, req)
	if err != nil {
		return nil, "", err
	}

	buf, err := renderExcel(report)
	if err != nil {
		s.logger.Error("生成 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	s.logger.Info("员工列表已导出", zap.String("format", "xlsx"), zap.Int("total", report.Total()))
	return buf, exportFilename(report.GeneratedAt, "xlsx"), nil
}

func renderExcel(report *EmployeeReport) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", excelSheetName); err != nil {
		return nil, err
	}

	widths := map[string]float64{"A": 8, "B": 28, "C": 36, "D": 24, "E": 16, "F": 28, "G": 22}
	for col, w := range widths {
		if err := f.SetColWidth(excelSheetName, col, col, w); err != nil {
			return nil, err
		}
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}
	numFmt := excelSalaryNumFmt
	salaryStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return nil, err
	}

	// 标题区
	f.SetCellValue(excelSheetName, "A1", report.Title)
	f.SetCellStyle(excelSheetName, "A1", "A1", titleStyle)
	f.SetCellValue(excelSheetName, "A2", "Exported at: "+report.GeneratedAt.Format(reportDateLayout))
	f.SetCellValue(excelSheetName, "A3", fmt.Sprintf("Total employees: %d", report.Total()))

	// 表头
	header := make([]interface{}, 0, len(pdfColumns))
	for _, col := range pdfColumns {
		header = append(header, col.title)
	}
	headerCell := cell("A", excelTableStartRow)
	if err := f.SetSheetRow(excelSheetName, headerCell, &header); err != nil {
		return nil, err
	}
	f.SetCellStyle(excelSheetName, headerCell, cell("G", excelTableStartRow), headerStyle)

	// 数据行
	for i, row := range report.Rows {
		r := excelTableStartRow + 1 + i
		values := []interface{}{
			row.No,
			stripControl(row.Name),
			stripControl(row.Email),
			stripControl(row.Position),
			row.SalaryAmount,
			stripControl(row.Department),
			row.CreatedAt,
		}
		if err := f.SetSheetRow(excelSheetName, cell("A", r), &values); err != nil {
			return nil, err
		}
		f.SetCellStyle(excelSheetName, cell("E", r), cell("E", r), salaryStyle)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ── 辅助函数 ──

var salaryPrinter = message.NewPrinter(language.English)

// formatSalary 整数金额格式化为 $1,234.00
func formatSalary(amount int64) string {
	return salaryPrinter.Sprintf("$%d.00", amount)
}

func exportFilename(at time.Time, ext string) string {
	return exportFilePrefix + at.Format(exportFileLayout) + "." + ext
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// stripControl 去除控制字符（换行、制表等统一替换为空格）
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
}

// pdfText 将文本转换为 PDF 核心字体所用的 cp1252 编码，无法编码的字符替换为 '?'
func pdfText(s string) string {
	s = stripControl(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if c, ok := charmap.Windows1252.EncodeRune(r); ok {
			b.WriteByte(c)
		} else {
			b.WriteByte('?')
		}
	}
	return b.String()
}

// wrapText 按宽度折行（s 为单字节 cp1252 文本），优先在空格处断开，
// 无空格的长串（如邮箱）按字符断开，不丢弃任何字符
func wrapText(pdf *fpdf.Fpdf, s string, width float64) []string {
	if s == "" {
		return []string{""}
	}
	var lines []string
	for len(s) > 0 {
		if pdf.GetStringWidth(s) <= width {
			lines = append(lines, s)
			break
		}
		n := 1
		for n < len(s) && pdf.GetStringWidth(s[:n+1]) <= width {
			n++
		}
		cut := n
		if n < len(s) && s[n] != ' ' {
			if sp := strings.LastIndexByte(s[:n], ' '); sp > 0 {
				cut = sp + 1
			}
		}
		lines = append(lines, strings.TrimRight(s[:cut], " "))
		s = strings.TrimLeft(s[cut:], " ")
	}
	return lines
}
