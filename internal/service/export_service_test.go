package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"lost-found/backend/internal/model"
)

func TestExportService_NoMatches(t *testing.T) {
	env := setupTestEnv(t, nil)
	_, _, err := env.svc.Export.ExportMatches(context.Background(), "")
	if !errors.Is(err, ErrExportNoMatches) {
		t.Errorf("期望 ErrExportNoMatches，实际: %v", err)
	}
}

func TestExportService_ExportMatches(t *testing.T) {
	env := setupTestEnv(t, nil)
	_, _, m := seedPair(t, env, 0.85)

	buf, filename, err := env.svc.Export.ExportMatches(context.Background(), model.MatchStatusPending)
	if err != nil {
		t.Fatalf("ExportMatches 失败: %v", err)
	}
	if !strings.HasPrefix(filename, "候选匹配_") || !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("文件名错误: %s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("打开 Excel 失败: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("候选匹配")
	if err != nil {
		t.Fatalf("读取工作表失败: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("期望 3 行（标题+表头+1 条数据），实际 %d", len(rows))
	}
	if rows[0][0] != "失物招领候选匹配（待审核）" {
		t.Errorf("标题错误: %s", rows[0][0])
	}
	if rows[1][0] != "寻物帖" || rows[1][4] != "置信度" {
		t.Errorf("表头错误: %v", rows[1])
	}
	data := rows[2]
	if data[0] != m.LostPost.Title || data[1] != m.FoundPost.Title || data[4] != "85%" || data[6] != "待审核" {
		t.Errorf("数据行错误: %v", data)
	}

	// 状态过滤
	if _, _, err := env.svc.Export.ExportMatches(context.Background(), model.MatchStatusAccepted); !errors.Is(err, ErrExportNoMatches) {
		t.Errorf("无已确认匹配时期望 ErrExportNoMatches，实际: %v", err)
	}
}
