package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lost-found/backend/internal/model"
)

// MatchRepository 候选匹配数据访问接口
type MatchRepository interface {
	Upsert(ctx context.Context, m *model.CandidateMatch) (*model.CandidateMatch, error)
	GetByID(ctx context.Context, id string) (*model.CandidateMatch, error)
	GetByPair(ctx context.Context, lostPostID, foundPostID string) (*model.CandidateMatch, error)
	ListForPost(ctx context.Context, post *model.Post, limit int) ([]model.CandidateMatch, error)
	ListByStatus(ctx context.Context, status string, offset, limit int) ([]model.CandidateMatch, int64, error)
	CountForPost(ctx context.Context, postID string) (int64, error)
	MarkAccepted(ctx context.Context, id string, reviewedAt time.Time) (bool, error)
	DeleteByPost(ctx context.Context, postID string) (int64, error)
	Delete(ctx context.Context, id string) error
}

type matchRepo struct {
	db *gorm.DB
}

// NewMatchRepo 创建 MatchRepository 实例
func NewMatchRepo(db *gorm.DB) MatchRepository {
	return &matchRepo{db: db}
}

// confidenceOrder 置信度降序（未重排视为 0），其次检索得分降序
const confidenceOrder = "COALESCE(rerank_confidence, 0) DESC, score DESC"

// Upsert 以 (lost_post_id, found_post_id) 为键插入或原地更新
// 更新只覆盖得分、方法、置信度与理由，不改动审核状态
func (r *matchRepo) Upsert(ctx context.Context, m *model.CandidateMatch) (*model.CandidateMatch, error) {
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "lost_post_id"}, {Name: "found_post_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"score", "method", "rerank_confidence", "rerank_reason", "updated_at",
			}),
		}).
		Create(m).Error
	if err != nil {
		return nil, err
	}
	// 冲突时 m.MatchID 是新生成的 ID，需要按键回读
	return r.GetByPair(ctx, m.LostPostID, m.FoundPostID)
}

func (r *matchRepo) GetByID(ctx context.Context, id string) (*model.CandidateMatch, error) {
	var m model.CandidateMatch
	err := r.db.WithContext(ctx).
		Preload("LostPost").
		Preload("FoundPost").
		Where("match_id = ?", id).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *matchRepo) GetByPair(ctx context.Context, lostPostID, foundPostID string) (*model.CandidateMatch, error) {
	var m model.CandidateMatch
	err := r.db.WithContext(ctx).
		Where("lost_post_id = ? AND found_post_id = ?", lostPostID, foundPostID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListForPost 帖子所在一侧的全部匹配，limit<=0 表示不限
func (r *matchRepo) ListForPost(ctx context.Context, post *model.Post, limit int) ([]model.CandidateMatch, error) {
	column := "found_post_id"
	if post.IsLost() {
		column = "lost_post_id"
	}

	db := r.db.WithContext(ctx).
		Preload("LostPost").
		Preload("FoundPost").
		Where(column+" = ?", post.PostID).
		Order(confidenceOrder)
	if limit > 0 {
		db = db.Limit(limit)
	}

	var matches []model.CandidateMatch
	err := db.Find(&matches).Error
	return matches, err
}

func (r *matchRepo) ListByStatus(ctx context.Context, status string, offset, limit int) ([]model.CandidateMatch, int64, error) {
	var matches []model.CandidateMatch
	var total int64

	db := r.db.WithContext(ctx).Model(&model.CandidateMatch{})
	if status != "" {
		db = db.Where("status = ?", status)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := db.Preload("LostPost").Preload("FoundPost").Order(confidenceOrder + ", created_at DESC")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	err := q.Find(&matches).Error
	return matches, total, err
}

// CountForPost 帖子出现在任意一侧的匹配数
func (r *matchRepo) CountForPost(ctx context.Context, postID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.CandidateMatch{}).
		Where("lost_post_id = ? OR found_post_id = ?", postID, postID).
		Count(&n).Error
	return n, err
}

// MarkAccepted 仅当匹配尚未通过时改为 accepted，返回本次是否发生了状态变更
// 并发审核时只有一个调用方拿到 true
func (r *matchRepo) MarkAccepted(ctx context.Context, id string, reviewedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.CandidateMatch{}).
		Where("match_id = ? AND status <> ?", id, model.MatchStatusAccepted).
		Updates(map[string]interface{}{
			"status":      model.MatchStatusAccepted,
			"reviewed_at": reviewedAt,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteByPost 删除帖子出现在任意一侧的匹配
func (r *matchRepo) DeleteByPost(ctx context.Context, postID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("lost_post_id = ? OR found_post_id = ?", postID, postID).
		Delete(&model.CandidateMatch{})
	return result.RowsAffected, result.Error
}

func (r *matchRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("match_id = ?", id).
		Delete(&model.CandidateMatch{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
