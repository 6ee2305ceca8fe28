package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"lost-found/backend/internal/dto"
	"lost-found/backend/internal/model"
	"lost-found/backend/internal/repository"
)

// ── 评论模块业务错误 ──

var (
	ErrEmptyComment = errors.New("评论内容不能为空")
)

// CommentService 帖子评论业务接口
type CommentService interface {
	List(ctx context.Context, postID string) ([]dto.CommentResponse, error)
	Create(ctx context.Context, postID string, req *dto.CreateCommentRequest, caller Caller) (*dto.CommentResponse, error)
}

type commentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCommentService 创建 CommentService 实例
func NewCommentService(repo *repository.Repository, logger *zap.Logger) CommentService {
	return &commentService{repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *commentService) List(ctx context.Context, postID string) ([]dto.CommentResponse, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}

	list, err := s.repo.Comment.ListByPost(ctx, postID)
	if err != nil {
		s.logger.Error("查询评论失败", zap.String("post_id", postID), zap.Error(err))
		return nil, err
	}
	return toCommentResponses(list), nil
}

// ────────────────────── Create ──────────────────────

func (s *commentService) Create(ctx context.Context, postID string, req *dto.CreateCommentRequest, caller Caller) (*dto.CommentResponse, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, ErrEmptyComment
	}
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}
	if err := ensureCaller(ctx, s.repo, caller); err != nil {
		s.logger.Error("同步评论用户失败", zap.String("user_id", caller.UserID), zap.Error(err))
		return nil, err
	}

	c := &model.Comment{PostID: postID, UserID: caller.UserID, Content: content}
	if err := s.repo.Comment.Create(ctx, c); err != nil {
		s.logger.Error("创建评论失败", zap.String("post_id", postID), zap.Error(err))
		return nil, err
	}
	if u, err := s.repo.User.GetByID(ctx, caller.UserID); err == nil {
		c.User = u
	}

	resp := toCommentResponse(c)
	return &resp, nil
}

func (s *commentService) requirePost(ctx context.Context, postID string) error {
	if _, err := s.repo.Post.GetByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		s.logger.Error("查询帖子失败", zap.String("id", postID), zap.Error(err))
		return err
	}
	return nil
}
