package testutil

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"lost-found/backend/internal/model"
)

// SeedUser 创建用户
func SeedUser(tb testing.TB, db *gorm.DB, name string) *model.User {
	tb.Helper()
	u := &model.User{Name: name, Role: model.RoleMember}
	if err := db.WithContext(context.Background()).Create(u).Error; err != nil {
		tb.Fatalf("创建用户失败: %v", err)
	}
	return u
}

// PostSpec 帖子夹具参数
type PostSpec struct {
	Direction   string
	Title       string
	Description string
	Category    string
	Location    string
	Status      string
	CreatedAt   time.Time
}

// SeedPost 创建帖子，Status 为空时默认 open
func SeedPost(tb testing.TB, db *gorm.DB, ownerID string, spec PostSpec) *model.Post {
	tb.Helper()
	status := spec.Status
	if status == "" {
		status = model.PostStatusOpen
	}
	p := &model.Post{
		UserID:      ownerID,
		Direction:   spec.Direction,
		Title:       spec.Title,
		Description: spec.Description,
		Category:    spec.Category,
		Location:    spec.Location,
		Status:      status,
	}
	if !spec.CreatedAt.IsZero() {
		p.CreatedAt = spec.CreatedAt
		p.UpdatedAt = spec.CreatedAt
	}
	if err := db.WithContext(context.Background()).Create(p).Error; err != nil {
		tb.Fatalf("创建帖子失败: %v", err)
	}
	return p
}

// SeedMatch 直接写入一条匹配记录
func SeedMatch(tb testing.TB, db *gorm.DB, lostID, foundID string, confidence float64, status string) *model.CandidateMatch {
	tb.Helper()
	c := confidence
	m := &model.CandidateMatch{
		LostPostID:       lostID,
		FoundPostID:      foundID,
		Score:            0.5,
		Method:           model.MatchMethodRetrievalOnly,
		RerankConfidence: &c,
		RerankReason:     "测试",
		Status:           status,
	}
	if err := db.WithContext(context.Background()).Omit("LostPost", "FoundPost").Create(m).Error; err != nil {
		tb.Fatalf("创建匹配失败: %v", err)
	}
	return m
}

// Count 统计表行数
func Count(tb testing.TB, db *gorm.DB, value interface{}) int64 {
	tb.Helper()
	var n int64
	if err := db.Model(value).Count(&n).Error; err != nil {
		tb.Fatalf("统计失败: %v", err)
	}
	return n
}
