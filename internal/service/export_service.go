package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"lost-found/backend/internal/model"
	"lost-found/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoMatches    = errors.New("暂无可导出的匹配记录")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportMatches 导出候选匹配为 Excel，status 为空时导出全部
	ExportMatches(ctx context.Context, status string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

var statusLabels = map[string]string{
	model.MatchStatusPending:  "待审核",
	model.MatchStatusAccepted: "已确认",
	model.MatchStatusRejected: "已驳回",
}

var methodLabels = map[string]string{
	model.MatchMethodRerank:        "检索+大模型",
	model.MatchMethodRetrievalOnly: "检索+规则",
}

// ═══════════════════════════════════════════════════════════
// ExportMatches — 导出候选匹配为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "候选匹配"，第 1 行为标题，第 2 行为表头
//   - 按置信度降序，每行一条匹配

func (s *exportService) ExportMatches(ctx context.Context, status string) (*bytes.Buffer, string, error) {
	matches, _, err := s.repo.Match.ListByStatus(ctx, status, 0, 0)
	if err != nil {
		s.logger.Error("查询匹配记录失败", zap.Error(err))
		return nil, "", err
	}
	if len(matches) == 0 {
		return nil, "", ErrExportNoMatches
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "候选匹配"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"寻物帖", "招领帖", "物品类型", "检索得分", "置信度", "判断方式", "状态", "匹配理由", "创建时间", "审核时间"}
	widths := []float64{24, 24, 12, 10, 10, 14, 10, 48, 20, 20}
	for i, w := range widths {
		col := colName(i)
		f.SetColWidth(sheetName, col, col, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	title := "失物招领候选匹配"
	if label, ok := statusLabels[status]; ok {
		title += "（" + label + "）"
	}
	f.SetCellValue(sheetName, "A1", title)
	f.MergeCell(sheetName, "A1", cell(colName(len(headers)-1), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}
	f.SetCellStyle(sheetName, "A2", cell(colName(len(headers)-1), 2), headerStyle)

	// 数据行
	row := 3
	for i := range matches {
		m := &matches[i]
		lostTitle, foundTitle, category := "-", "-", "-"
		if m.LostPost != nil {
			lostTitle = m.LostPost.Title
			category = m.LostPost.Category
		}
		if m.FoundPost != nil {
			foundTitle = m.FoundPost.Title
		}
		reviewed := "-"
		if m.ReviewedAt != nil {
			reviewed = m.ReviewedAt.Format("2006-01-02 15:04")
		}
		confidence := "-"
		if m.RerankConfidence != nil {
			confidence = fmt.Sprintf("%d%%", confidencePct(m))
		}

		values := []interface{}{
			lostTitle,
			foundTitle,
			category,
			fmt.Sprintf("%.3f", m.Score),
			confidence,
			labelOr(methodLabels, m.Method),
			labelOr(statusLabels, m.Status),
			m.RerankReason,
			m.CreatedAt.Format("2006-01-02 15:04"),
			reviewed,
		}
		for j, v := range values {
			f.SetCellValue(sheetName, cell(colName(j), row), v)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("候选匹配_%s.xlsx", time.Now().Format("20060102"))
	return buf, filename, nil
}

// ── 辅助函数 ──

func labelOr(labels map[string]string, key string) string {
	if l, ok := labels[key]; ok {
		return l
	}
	return key
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
