package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lost-found/backend/internal/model"
)

// ExtractionRepository 抽取缓存数据访问接口
type ExtractionRepository interface {
	Upsert(ctx context.Context, cache *model.ExtractionCache) error
	GetByPostID(ctx context.Context, postID string) (*model.ExtractionCache, error)
	DeleteByPost(ctx context.Context, postID string) error
}

type extractionRepo struct {
	db *gorm.DB
}

// NewExtractionRepo 创建 ExtractionRepository 实例
func NewExtractionRepo(db *gorm.DB) ExtractionRepository {
	return &extractionRepo{db: db}
}

// Upsert 以 post_id 为键插入或整体覆盖
func (r *extractionRepo) Upsert(ctx context.Context, cache *model.ExtractionCache) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "post_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"item_name", "color", "brand", "features", "location_detail",
				"time_info", "source", "raw_json", "updated_at",
			}),
		}).
		Create(cache).Error
}

func (r *extractionRepo) GetByPostID(ctx context.Context, postID string) (*model.ExtractionCache, error) {
	var cache model.ExtractionCache
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		First(&cache).Error
	if err != nil {
		return nil, err
	}
	return &cache, nil
}

func (r *extractionRepo) DeleteByPost(ctx context.Context, postID string) error {
	return r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Delete(&model.ExtractionCache{}).Error
}
