package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"lost-found/backend/internal/model"
)

// PostFilter 帖子检索条件，零值字段不参与过滤
type PostFilter struct {
	Keyword   string
	Direction string
	Category  string
	Location  string
	Status    string
	UserID    string
	DateFrom  *time.Time
	DateTo    *time.Time // 不含当天之后，调用方传入次日零点
	Limit     int
}

// PostRepository 帖子数据访问接口
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	ListOpenByDirection(ctx context.Context, direction, excludeID string) ([]*model.Post, error)
	ListOpen(ctx context.Context) ([]*model.Post, error)
	Search(ctx context.Context, f *PostFilter) ([]model.Post, error)
	Delete(ctx context.Context, id string) error
}

type postRepo struct {
	db *gorm.DB
}

// NewPostRepo 创建 PostRepository 实例
func NewPostRepo(db *gorm.DB) PostRepository {
	return &postRepo{db: db}
}

func (r *postRepo) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepo) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("post_id = ?", id).
		First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// ListOpenByDirection 指定方向的未完成帖子（候选池），排除 excludeID
func (r *postRepo) ListOpenByDirection(ctx context.Context, direction, excludeID string) ([]*model.Post, error) {
	var posts []*model.Post
	err := r.db.WithContext(ctx).
		Where("direction = ? AND status = ? AND post_id <> ?", direction, model.PostStatusOpen, excludeID).
		Order("created_at DESC").
		Find(&posts).Error
	return posts, err
}

// ListOpen 全部未完成帖子，按发布时间升序
func (r *postRepo) ListOpen(ctx context.Context) ([]*model.Post, error) {
	var posts []*model.Post
	err := r.db.WithContext(ctx).
		Where("status = ?", model.PostStatusOpen).
		Order("created_at ASC").
		Find(&posts).Error
	return posts, err
}

func (r *postRepo) Search(ctx context.Context, f *PostFilter) ([]model.Post, error) {
	db := r.db.WithContext(ctx).Model(&model.Post{}).Preload("Owner")

	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		like := "%" + strings.ToLower(kw) + "%"
		db = db.Where(
			"LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ? OR LOWER(location) LIKE ?",
			like, like, like, like,
		)
	}
	if f.Direction != "" {
		db = db.Where("direction = ?", f.Direction)
	}
	if f.Category != "" {
		db = db.Where("category = ?", f.Category)
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		db = db.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(loc)+"%")
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.UserID != "" {
		db = db.Where("user_id = ?", f.UserID)
	}
	if f.DateFrom != nil {
		db = db.Where("created_at >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		db = db.Where("created_at < ?", *f.DateTo)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}

	var posts []model.Post
	err := db.Order("created_at DESC").Limit(limit).Find(&posts).Error
	return posts, err
}

func (r *postRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("post_id = ?", id).
		Delete(&model.Post{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
