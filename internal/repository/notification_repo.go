package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lost-found/backend/internal/model"
)

// NotificationRepository 通知数据访问接口
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	GetByID(ctx context.Context, id string) (*model.Notification, error)
	ExistsWithTitlePrefix(ctx context.Context, userID, matchID, prefix string) (bool, error)
	ListByUser(ctx context.Context, userID string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	CountByMatch(ctx context.Context, matchID string) (int64, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	DeleteByMatch(ctx context.Context, matchID string) (int64, error)
	DeleteByPost(ctx context.Context, postID string) (int64, error)
}

type notificationRepo struct {
	db *gorm.DB
}

// NewNotificationRepo 创建 NotificationRepository 实例
func NewNotificationRepo(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(n).Error
}

func (r *notificationRepo) GetByID(ctx context.Context, id string) (*model.Notification, error) {
	var n model.Notification
	err := r.db.WithContext(ctx).
		Preload("Match").
		Where("notification_id = ?", id).
		First(&n).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ExistsWithTitlePrefix 同一 (用户, 匹配) 下是否已有以 prefix 开头的通知
// SUBSTR 按字符截取，PostgreSQL 与 SQLite 行为一致
func (r *notificationRepo) ExistsWithTitlePrefix(ctx context.Context, userID, matchID, prefix string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND match_id = ?", userID, matchID).
		Where("SUBSTR(title, 1, ?) = ?", len([]rune(prefix)), prefix).
		Count(&n).Error
	return n > 0, err
}

func (r *notificationRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error) {
	var list []model.Notification
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		db = db.Where("is_read = ?", false)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&list).Error
	return list, total, err
}

func (r *notificationRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	return n, err
}

func (r *notificationRepo) CountByMatch(ctx context.Context, matchID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("match_id = ?", matchID).
		Count(&n).Error
	return n, err
}

func (r *notificationRepo) MarkRead(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("notification_id = ?", id).
		Updates(map[string]interface{}{"is_read": true, "updated_at": time.Now()}).Error
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "updated_at": time.Now()})
	return result.RowsAffected, result.Error
}

func (r *notificationRepo) DeleteByMatch(ctx context.Context, matchID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Delete(&model.Notification{})
	return result.RowsAffected, result.Error
}

// DeleteByPost 删除帖子相关匹配（任意一侧）下的全部通知
func (r *notificationRepo) DeleteByPost(ctx context.Context, postID string) (int64, error) {
	matchIDs := r.db.WithContext(ctx).
		Model(&model.CandidateMatch{}).
		Select("match_id").
		Where("lost_post_id = ? OR found_post_id = ?", postID, postID)

	result := r.db.WithContext(ctx).
		Where("match_id IN (?)", matchIDs).
		Delete(&model.Notification{})
	return result.RowsAffected, result.Error
}
