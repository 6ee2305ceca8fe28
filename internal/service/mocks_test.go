package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"lost-found/backend/config"
	"lost-found/backend/internal/dto"
	"lost-found/backend/internal/model"
	"lost-found/backend/internal/repository"
	"lost-found/backend/internal/testutil"
	"lost-found/backend/pkg/llm"
)

// ── 测试辅助 ──

// fakeGateway 每次调用都返回同一段文本
type fakeGateway struct {
	available bool
	reply     string
	calls     int32
}

func (g *fakeGateway) Available() bool { return g.available }

func (g *fakeGateway) Complete(_ context.Context, _, _ string, _ float64) llm.Outcome {
	atomic.AddInt32(&g.calls, 1)
	if !g.available {
		return llm.Outcome{Status: llm.StatusUnavailable}
	}
	return llm.Outcome{Status: llm.StatusOK, Text: g.reply, Attempts: 1}
}

// failingMatching 总是返回错误的匹配服务
type failingMatching struct {
	MatchingService
	err error
}

func (f *failingMatching) ProcessPost(context.Context, *model.Post) (*MatchRun, error) {
	return nil, f.err
}

func testConfig() *config.Config {
	return &config.Config{
		Matching: config.MatchingConfig{
			TopK:              10,
			MinRetrievalScore: 0.05,
			NotifyThreshold:   0.7,
			DedupPrefixLen:    5,
			AutoMatchOnCreate: true,
			LockTTL:           time.Minute,
		},
	}
}

type testEnv struct {
	db     *gorm.DB
	repo   *repository.Repository
	svc    *Service
	locker *LocalLocker
	cfg    *config.Config
}

// setupTestEnv gateway 为 nil 时相当于未配置大模型
func setupTestEnv(t *testing.T, gateway llm.Gateway) *testEnv {
	t.Helper()
	db := testutil.DB(t)
	repo := repository.NewRepository(db)
	cfg := testConfig()
	locker := NewLocalLocker()
	return &testEnv{
		db:     db,
		repo:   repo,
		svc:    NewService(cfg, repo, gateway, locker, zap.NewNop()),
		locker: locker,
		cfg:    cfg,
	}
}

func (e *testEnv) user(t *testing.T, name string) *model.User {
	t.Helper()
	return testutil.SeedUser(t, e.db, name)
}

func (e *testEnv) post(t *testing.T, owner *model.User, direction, title, desc, category, location string) *model.Post {
	t.Helper()
	return testutil.SeedPost(t, e.db, owner.UserID, testutil.PostSpec{
		Direction: direction, Title: title, Description: desc, Category: category, Location: location,
	})
}

func (e *testEnv) countNotifications(t *testing.T) int64 {
	t.Helper()
	return testutil.Count(t, e.db, &model.Notification{})
}

func (e *testEnv) countMatches(t *testing.T) int64 {
	t.Helper()
	return testutil.Count(t, e.db, &model.CandidateMatch{})
}

func firstPage() dto.PaginationRequest {
	return dto.PaginationRequest{Page: 1, PageSize: 20}
}

func allNotifications() *dto.NotificationListRequest {
	return &dto.NotificationListRequest{PaginationRequest: firstPage()}
}
