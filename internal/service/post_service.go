package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"lost-found/backend/config"
	"lost-found/backend/internal/dto"
	"lost-found/backend/internal/model"
	"lost-found/backend/internal/repository"
)

// ── 帖子模块业务错误 ──

var (
	ErrPostNotFound      = errors.New("帖子不存在")
	ErrInvalidCategory   = errors.New("物品类型不在可选范围内")
	ErrInvalidDateRange  = errors.New("日期范围无效")
	ErrOwnerFilterNeedID = errors.New("缺少当前用户信息")
	ErrPostForbidden     = errors.New("只有发帖人或管理员可以删除帖子")
)

// detailMatchLimit 详情页展示的候选匹配数
const detailMatchLimit = 5

// Caller 当前请求的用户身份（来自认证令牌）
type Caller struct {
	UserID string
	Name   string
	Role   string
}

// PostService 帖子业务接口
type PostService interface {
	// Create 发帖；开启自动匹配时尽力执行匹配，匹配失败不影响发帖结果
	Create(ctx context.Context, req *dto.CreatePostRequest, caller Caller) (*dto.CreatePostResponse, error)
	GetDetail(ctx context.Context, id string) (*dto.PostDetailResponse, error)
	Search(ctx context.Context, req *dto.PostSearchRequest, callerID string) ([]dto.PostResponse, error)
	Options() *dto.OptionsResponse
	// Delete 发帖人或管理员删除帖子，连同评论、抽取缓存、相关匹配及其通知
	Delete(ctx context.Context, id string, caller Caller) error
}

type postService struct {
	repo      *repository.Repository
	matching  MatchingService
	autoMatch bool
	logger    *zap.Logger
}

// NewPostService 创建 PostService 实例
func NewPostService(repo *repository.Repository, matching MatchingService, cfg *config.MatchingConfig, logger *zap.Logger) PostService {
	return &postService{
		repo:      repo,
		matching:  matching,
		autoMatch: cfg.AutoMatchOnCreate,
		logger:    logger,
	}
}

// ────────────────────── Create ──────────────────────

func (s *postService) Create(ctx context.Context, req *dto.CreatePostRequest, caller Caller) (*dto.CreatePostResponse, error) {
	category := strings.TrimSpace(req.Category)
	if !model.IsValidCategory(category) {
		return nil, ErrInvalidCategory
	}

	if err := ensureCaller(ctx, s.repo, caller); err != nil {
		s.logger.Error("同步发帖用户失败", zap.String("user_id", caller.UserID), zap.Error(err))
		return nil, err
	}

	post := &model.Post{
		UserID:      caller.UserID,
		Direction:   req.Direction,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Category:    category,
		Location:    strings.TrimSpace(req.Location),
		Status:      model.PostStatusOpen,
		ImageURL:    req.ImageURL,
	}
	if err := s.repo.Post.Create(ctx, post); err != nil {
		s.logger.Error("创建帖子失败", zap.Error(err))
		return nil, err
	}
	if owner, err := s.repo.User.GetByID(ctx, caller.UserID); err == nil {
		post.Owner = owner
	}

	resp := &dto.CreatePostResponse{Post: toPostResponse(post)}
	if !s.autoMatch {
		return resp, nil
	}

	// 匹配是尽力而为，任何失败只记录日志
	run, err := s.matching.ProcessPost(ctx, post)
	if err != nil {
		s.logger.Error("发帖后自动匹配失败", zap.String("post_id", post.PostID), zap.Error(err))
		return resp, nil
	}
	resp.Matching = toMatchRunResponse(run)
	return resp, nil
}

// ────────────────────── GetDetail ──────────────────────

func (s *postService) GetDetail(ctx context.Context, id string) (*dto.PostDetailResponse, error) {
	post, err := s.repo.Post.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		s.logger.Error("查询帖子失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	matches, err := s.repo.Match.ListForPost(ctx, post, detailMatchLimit)
	if err != nil {
		s.logger.Error("查询帖子匹配失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	comments, err := s.repo.Comment.ListByPost(ctx, id)
	if err != nil {
		s.logger.Error("查询帖子评论失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return &dto.PostDetailResponse{
		Post:     toPostResponse(post),
		Matches:  toMatchResponses(matches),
		Comments: toCommentResponses(comments),
	}, nil
}

// ────────────────────── Search ──────────────────────

func (s *postService) Search(ctx context.Context, req *dto.PostSearchRequest, callerID string) ([]dto.PostResponse, error) {
	filter := &repository.PostFilter{
		Keyword:   req.Keyword,
		Direction: req.Type,
		Category:  req.ItemType,
		Location:  req.Location,
		Status:    req.State,
		Limit:     req.Limit,
	}

	if req.Owner == "mine" {
		if callerID == "" {
			return nil, ErrOwnerFilterNeedID
		}
		filter.UserID = callerID
	}

	if req.DateFrom != "" {
		from, err := time.ParseInLocation("2006-01-02", req.DateFrom, time.Local)
		if err != nil {
			return nil, ErrInvalidDateRange
		}
		filter.DateFrom = &from
	}
	if req.DateTo != "" {
		to, err := time.ParseInLocation("2006-01-02", req.DateTo, time.Local)
		if err != nil {
			return nil, ErrInvalidDateRange
		}
		// 截止日期包含当天
		end := to.AddDate(0, 0, 1)
		filter.DateTo = &end
	}
	if filter.DateFrom != nil && filter.DateTo != nil && !filter.DateFrom.Before(*filter.DateTo) {
		return nil, ErrInvalidDateRange
	}

	posts, err := s.repo.Post.Search(ctx, filter)
	if err != nil {
		s.logger.Error("检索帖子失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.PostResponse, 0, len(posts))
	for i := range posts {
		result = append(result, toPostResponse(&posts[i]))
	}
	return result, nil
}

// ────────────────────── Delete ──────────────────────

func (s *postService) Delete(ctx context.Context, id string, caller Caller) error {
	post, err := s.repo.Post.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		s.logger.Error("查询帖子失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if post.UserID != caller.UserID && caller.Role != model.RoleAdmin {
		return ErrPostForbidden
	}

	// 依赖行在同一事务内显式删除，不依赖外键级联
	var removedMatches, removedNotifications int64
	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		n, err := txRepo.Notification.DeleteByPost(ctx, id)
		if err != nil {
			return err
		}
		removedNotifications = n

		if removedMatches, err = txRepo.Match.DeleteByPost(ctx, id); err != nil {
			return err
		}
		if err := txRepo.Extraction.DeleteByPost(ctx, id); err != nil {
			return err
		}
		if _, err := txRepo.Comment.DeleteByPost(ctx, id); err != nil {
			return err
		}
		return txRepo.Post.Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		s.logger.Error("删除帖子失败", zap.String("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("帖子已删除",
		zap.String("post_id", id),
		zap.String("operator_id", caller.UserID),
		zap.Int64("matches_removed", removedMatches),
		zap.Int64("notifications_removed", removedNotifications),
	)
	return nil
}

// ────────────────────── Options ──────────────────────

func (s *postService) Options() *dto.OptionsResponse {
	zones := make([]dto.ZoneOption, 0, len(model.Zones))
	for _, z := range model.Zones {
		zones = append(zones, dto.ZoneOption{Name: z.Name, Landmarks: z.Landmarks})
	}
	return &dto.OptionsResponse{
		Types: []dto.Option{
			{Value: model.DirectionLost, Label: model.DirectionLabel(model.DirectionLost)},
			{Value: model.DirectionFound, Label: model.DirectionLabel(model.DirectionFound)},
		},
		ItemTypes: append([]string(nil), model.Categories...),
		Zones:     zones,
		States: []dto.Option{
			{Value: model.PostStatusOpen, Label: "未完成"},
			{Value: model.PostStatusResolved, Label: "已完成"},
		},
	}
}

// ensureCaller 在本地镜像当前用户，展示名为空时用 ID 前缀代替
func ensureCaller(ctx context.Context, repo *repository.Repository, caller Caller) error {
	name := strings.TrimSpace(caller.Name)
	if name == "" {
		name = "用户" + runePrefix(caller.UserID, 8)
	}
	role := caller.Role
	if role == "" {
		role = model.RoleMember
	}
	return repo.User.Ensure(ctx, &model.User{UserID: caller.UserID, Name: name, Role: role})
}
