package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"lost-found/backend/internal/matcher"
	"lost-found/backend/internal/model"
)

// ── 端到端场景 ──

// 无大模型：黑色钱包候选排第一，规则兜底置信度不低于 0.6
func TestMatchingService_WalletScenarioWithoutLLM(t *testing.T) {
	env := setupTestEnv(t, nil)
	owner, finder := env.user(t, "张三"), env.user(t, "李四")

	lost := env.post(t, owner, model.DirectionLost, "black wallet", "lost my black wallet", "钱包", "C区 图书馆")
	wallet := env.post(t, finder, model.DirectionFound, "black wallet found near library", "found a black wallet", "钱包", "C区 图书馆")
	env.post(t, finder, model.DirectionFound, "red backpack found at gym", "red backpack", "鞋服包饰", "D区 体育馆")

	run, err := env.svc.Matching.ProcessPost(context.Background(), lost)
	if err != nil {
		t.Fatalf("ProcessPost 失败: %v", err)
	}
	if len(run.Matches) == 0 {
		t.Fatal("期望至少一条匹配")
	}

	top := run.Matches[0]
	if top.FoundPostID != wallet.PostID || top.LostPostID != lost.PostID {
		t.Errorf("期望钱包候选排第一，实际 lost=%s found=%s", top.LostPostID, top.FoundPostID)
	}
	if top.Confidence() < 0.6 {
		t.Errorf("期望置信度 >= 0.6，实际 %v", top.Confidence())
	}
	if !strings.Contains(top.RerankReason, "都是钱包") || !strings.Contains(top.RerankReason, "地点也吻合") {
		t.Errorf("理由应同时提到类型与地点: %s", top.RerankReason)
	}
	if top.Method != model.MatchMethodRetrievalOnly {
		t.Errorf("期望 method=%s，实际 %s", model.MatchMethodRetrievalOnly, top.Method)
	}
	if run.FallbackJudged != len(run.Matches) || run.LLMJudged != 0 {
		t.Errorf("判断来源统计错误: llm=%d fallback=%d", run.LLMJudged, run.FallbackJudged)
	}
	if run.ExtractionSource != matcher.SourceFallback {
		t.Errorf("期望抽取来源为 fallback，实际 %s", run.ExtractionSource)
	}

	cache, err := env.repo.Extraction.GetByPostID(context.Background(), lost.PostID)
	if err != nil {
		t.Fatalf("期望写入抽取缓存: %v", err)
	}
	if cache.ItemName != "black wallet" || cache.Source != "fallback" {
		t.Errorf("抽取缓存内容错误: %+v", cache)
	}
}

// 候选池为空：不产生匹配与通知，但仍写入抽取缓存
func TestMatchingService_EmptyPool(t *testing.T) {
	env := setupTestEnv(t, nil)
	owner := env.user(t, "张三")
	lost := env.post(t, owner, model.DirectionLost, "钥匙", "一串钥匙", "钥匙", "A区 食堂")
	// 同方向的帖子不进入候选池
	env.post(t, owner, model.DirectionLost, "钥匙", "另一串钥匙", "钥匙", "A区 食堂")

	run, err := env.svc.Matching.ProcessPost(context.Background(), lost)
	if err != nil {
		t.Fatalf("ProcessPost 失败: %v", err)
	}
	if len(run.Matches) != 0 || run.PoolSize != 0 {
		t.Errorf("期望空结果，实际 pool=%d matches=%d", run.PoolSize, len(run.Matches))
	}
	if n := env.countNotifications(t); n != 0 {
		t.Errorf("期望无通知，实际 %d 条", n)
	}
	if _, err := env.repo.Extraction.GetByPostID(context.Background(), lost.PostID); err != nil {
		t.Errorf("期望仍写入抽取缓存: %v", err)
	}
}

// 重复执行不产生重复匹配
func TestMatchingService_RerunIsIdempotent(t *testing.T) {
	env := setupTestEnv(t, nil)
	owner, finder := env.user(t, "张三"), env.user(t, "李四")

	lost := env.post(t, owner, model.DirectionLost, "黑色钱包", "图书馆丢失黑色钱包", "钱包", "C区 图书馆")
	env.post(t, finder, model.DirectionFound, "捡到黑色钱包", "图书馆捡到", "钱包", "C区 图书馆")
	env.post(t, finder, model.DirectionFound, "捡到钱包", "食堂捡到棕色钱包", "钱包", "A区 食堂")

	ctx := context.Background()
	first, err := env.svc.Matching.ProcessPost(ctx, lost)
	if err != nil {
		t.Fatalf("首次 ProcessPost 失败: %v", err)
	}
	before := env.countMatches(t)

	second, err := env.svc.Matching.ProcessPost(ctx, lost)
	if err != nil {
		t.Fatalf("再次 ProcessPost 失败: %v", err)
	}
	after := env.countMatches(t)

	if before != after || int(after) != len(first.Matches) {
		t.Errorf("期望行数不变: before=%d after=%d", before, after)
	}
	for i := range first.Matches {
		if first.Matches[i].MatchID != second.Matches[i].MatchID {
			t.Errorf("第 %d 条匹配 ID 变化", i)
		}
	}
}

// 高置信度匹配通知双方各一次，重复执行不再新增
func TestMatchingService_HighConfidenceNotifiesOncePerOwner(t *testing.T) {
	gw := &fakeGateway{available: true, reply: "```json\n{\"confidence\": 0.95, \"reason\": \"颜色和地点都一致\"}\n```"}
	env := setupTestEnv(t, gw)
	owner, finder := env.user(t, "张三"), env.user(t, "李四")

	lost := env.post(t, owner, model.DirectionLost, "黑色钱包", "图书馆丢失黑色钱包", "钱包", "C区 图书馆")
	found := env.post(t, finder, model.DirectionFound, "捡到黑色钱包", "图书馆捡到黑色钱包", "钱包", "C区 图书馆")

	ctx := context.Background()
	run, err := env.svc.Matching.ProcessPost(ctx, lost)
	if err != nil {
		t.Fatalf("ProcessPost 失败: %v", err)
	}
	if len(run.Matches) != 1 {
		t.Fatalf("期望 1 条匹配，实际 %d", len(run.Matches))
	}
	if run.Matches[0].Method != model.MatchMethodRerank || run.LLMJudged != 1 {
		t.Errorf("期望大模型重排: method=%s llm=%d", run.Matches[0].Method, run.LLMJudged)
	}
	if run.NotificationsSent != 2 {
		t.Errorf("期望发送 2 条通知，实际 %d", run.NotificationsSent)
	}

	// 招领方再次触发，结果相同
	if _, err := env.svc.Matching.ProcessPost(ctx, found); err != nil {
		t.Fatalf("再次 ProcessPost 失败: %v", err)
	}
	if n := env.countNotifications(t); n != 2 {
		t.Errorf("期望通知总数保持 2，实际 %d", n)
	}

	list, err := env.svc.Notification.List(ctx, owner.UserID, allNotifications())
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if len(list.List) != 1 || !strings.Contains(list.List[0].Content, "95%") {
		t.Errorf("寻物方通知内容错误: %+v", list.List)
	}
}

// 招领帖触发时，寻物帖仍落在 lost_post_id 一侧
func TestMatchingService_FoundTargetKeepsOrientation(t *testing.T) {
	env := setupTestEnv(t, nil)
	owner, finder := env.user(t, "张三"), env.user(t, "李四")

	lost := env.post(t, owner, model.DirectionLost, "蓝色雨伞", "B区食堂丢失", "其他", "B区 食堂")
	found := env.post(t, finder, model.DirectionFound, "捡到蓝色雨伞", "B区食堂门口", "其他", "B区 食堂")

	run, err := env.svc.Matching.ProcessPost(context.Background(), found)
	if err != nil {
		t.Fatalf("ProcessPost 失败: %v", err)
	}
	if len(run.Matches) != 1 {
		t.Fatalf("期望 1 条匹配，实际 %d", len(run.Matches))
	}
	m := run.Matches[0]
	if m.LostPostID != lost.PostID || m.FoundPostID != found.PostID {
		t.Errorf("方向错误: lost=%s found=%s", m.LostPostID, m.FoundPostID)
	}
}

func TestMatchingService_ResolvedPostsExcluded(t *testing.T) {
	env := setupTestEnv(t, nil)
	owner, finder := env.user(t, "张三"), env.user(t, "李四")

	lost := env.post(t, owner, model.DirectionLost, "校园卡", "丢了校园卡", "证件", "E区 校医院")
	p := env.post(t, finder, model.DirectionFound, "捡到校园卡", "校医院门口", "证件", "E区 校医院")
	if err := env.db.Model(p).Update("status", model.PostStatusResolved).Error; err != nil {
		t.Fatalf("更新状态失败: %v", err)
	}

	run, err := env.svc.Matching.ProcessPost(context.Background(), lost)
	if err != nil {
		t.Fatalf("ProcessPost 失败: %v", err)
	}
	if run.PoolSize != 0 {
		t.Errorf("已完成的帖子不应进入候选池，pool=%d", run.PoolSize)
	}
}

// 已审核通过的匹配在重新匹配后保持状态
func TestMatchingService_RerunKeepsAcceptedStatus(t *testing.T) {
	env := setupTestEnv(t, nil)
	owner, finder := env.user(t, "张三"), env.user(t, "李四")
	lost := env.post(t, owner, model.DirectionLost, "耳机", "白色耳机", "数码产品", "D区 体育馆")
	env.post(t, finder, model.DirectionFound, "捡到白色耳机", "体育馆看台", "数码产品", "D区 体育馆")

	ctx := context.Background()
	run, err := env.svc.Matching.ProcessPost(ctx, lost)
	if err != nil || len(run.Matches) != 1 {
		t.Fatalf("ProcessPost 失败: err=%v matches=%d", err, len(run.Matches))
	}
	if _, err := env.svc.Moderation.Accept(ctx, run.Matches[0].MatchID, "admin"); err != nil {
		t.Fatalf("Accept 失败: %v", err)
	}

	again, err := env.svc.Matching.ProcessPost(ctx, lost)
	if err != nil {
		t.Fatalf("再次 ProcessPost 失败: %v", err)
	}
	if again.Matches[0].Status != model.MatchStatusAccepted {
		t.Errorf("期望保持 accepted，实际 %s", again.Matches[0].Status)
	}
}

func TestMatchingService_ConcurrentRunRejected(t *testing.T) {
	env := setupTestEnv(t, nil)
	owner := env.user(t, "张三")
	lost := env.post(t, owner, model.DirectionLost, "钥匙", "一串钥匙", "钥匙", "A区 食堂")

	release, err := env.locker.TryLock(context.Background(), "matching:post:"+lost.PostID, 0)
	if err != nil {
		t.Fatalf("预先加锁失败: %v", err)
	}
	defer release()

	_, err = env.svc.Matching.ProcessPost(context.Background(), lost)
	if !errors.Is(err, ErrMatchingInProgress) {
		t.Errorf("期望 ErrMatchingInProgress，实际: %v", err)
	}
}

func TestMatchingService_TriggerOwnership(t *testing.T) {
	env := setupTestEnv(t, nil)
	owner, other := env.user(t, "张三"), env.user(t, "王五")
	lost := env.post(t, owner, model.DirectionLost, "钥匙", "一串钥匙", "钥匙", "A区 食堂")
	ctx := context.Background()

	if _, err := env.svc.Matching.Trigger(ctx, lost.PostID, other.UserID, false); !errors.Is(err, ErrNotPostOwner) {
		t.Errorf("期望 ErrNotPostOwner，实际: %v", err)
	}
	if _, err := env.svc.Matching.Trigger(ctx, lost.PostID, other.UserID, true); err != nil {
		t.Errorf("管理员触发应成功: %v", err)
	}
	resp, err := env.svc.Matching.Trigger(ctx, lost.PostID, owner.UserID, false)
	if err != nil {
		t.Fatalf("发帖人触发失败: %v", err)
	}
	if resp.PostID != lost.PostID || resp.ExtractionSource != "fallback" {
		t.Errorf("执行摘要错误: %+v", resp)
	}
	if _, err := env.svc.Matching.Trigger(ctx, "missing", owner.UserID, false); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("期望 ErrPostNotFound，实际: %v", err)
	}
}

func TestMatchingService_ExtractWithLLM(t *testing.T) {
	gw := &fakeGateway{available: true, reply: `{"item_name": "AirPods", "color": "白色", "brand": "Apple", "features": "左耳有划痕", "location_detail": "图书馆三楼", "time_info": "周一"}`}
	env := setupTestEnv(t, gw)
	owner := env.user(t, "张三")
	p := env.post(t, owner, model.DirectionLost, "耳机丢了", "白色 AirPods", "数码产品", "C区 图书馆")

	cache, err := env.svc.Matching.Extract(context.Background(), p.PostID)
	if err != nil {
		t.Fatalf("Extract 失败: %v", err)
	}
	if cache.Brand != "Apple" || cache.Source != "llm" {
		t.Errorf("抽取缓存错误: %+v", cache)
	}
	if !strings.Contains(string(cache.RawJSON), "左耳有划痕") {
		t.Errorf("原始 JSON 未保存: %s", cache.RawJSON)
	}
}

func TestMatchingService_ListForPost(t *testing.T) {
	env := setupTestEnv(t, nil)
	owner, finder := env.user(t, "张三"), env.user(t, "李四")
	lost := env.post(t, owner, model.DirectionLost, "黑色钱包", "图书馆", "钱包", "C区 图书馆")
	found := env.post(t, finder, model.DirectionFound, "黑色钱包", "图书馆", "钱包", "C区 图书馆")

	ctx := context.Background()
	if _, err := env.svc.Matching.ProcessPost(ctx, lost); err != nil {
		t.Fatalf("ProcessPost 失败: %v", err)
	}

	list, err := env.svc.Matching.ListForPost(ctx, found.PostID, 0)
	if err != nil {
		t.Fatalf("ListForPost 失败: %v", err)
	}
	if len(list) != 1 || list[0].LostPost == nil || list[0].LostPost.ID != lost.PostID {
		t.Errorf("招领帖一侧匹配错误: %+v", list)
	}
}
