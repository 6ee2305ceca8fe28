package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"lost-found/backend/config"
	"lost-found/backend/internal/dto"
	"lost-found/backend/internal/model"
	"lost-found/backend/internal/repository"
)

// ── 通知模块业务错误 ──

var (
	ErrNotificationNotFound  = errors.New("通知不存在")
	ErrNotificationForbidden = errors.New("无权操作该通知")
	ErrMatchPostsNotLoaded   = errors.New("匹配记录缺少关联帖子")
)

// ── 通知文案 ──

const (
	titleAutoLost       = "🔥 极有可能是您丢失的物品！"
	titleAutoFound      = "🔥 极有可能有人在找这件物品！"
	titleConfirmedLost  = "✅ 已确认找到您的物品！"
	titleConfirmedFound = "✅ 已确认物品找到失主！"
)

// NotificationService 通知业务接口
type NotificationService interface {
	// DispatchAuto 为高置信度匹配通知双方，按标题前缀去重；返回新建条数
	DispatchAuto(ctx context.Context, matches []model.CandidateMatch) (int, error)
	// SendConfirmed 人工审核通过后通知双方，不去重
	SendConfirmed(ctx context.Context, m *model.CandidateMatch) error
	List(ctx context.Context, userID string, req *dto.NotificationListRequest) (*dto.NotificationListResult, error)
	MarkRead(ctx context.Context, id, userID string) (*dto.MarkReadResponse, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

type notificationService struct {
	repo      *repository.Repository
	threshold float64
	prefixLen int
	logger    *zap.Logger
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(repo *repository.Repository, cfg *config.MatchingConfig, logger *zap.Logger) NotificationService {
	prefixLen := cfg.DedupPrefixLen
	if prefixLen <= 0 {
		prefixLen = 5
	}
	return &notificationService{
		repo:      repo,
		threshold: cfg.NotifyThreshold,
		prefixLen: prefixLen,
		logger:    logger,
	}
}

// ────────────────────── DispatchAuto ──────────────────────

func (s *notificationService) DispatchAuto(ctx context.Context, matches []model.CandidateMatch) (int, error) {
	created := 0
	var errs []error

	for i := range matches {
		m := &matches[i]
		if m.RerankConfidence == nil || *m.RerankConfidence < s.threshold {
			continue
		}
		if m.LostPost == nil || m.FoundPost == nil {
			errs = append(errs, fmt.Errorf("match %s: %w", m.MatchID, ErrMatchPostsNotLoaded))
			continue
		}

		for _, n := range autoNotifications(m) {
			ok, err := s.createDeduped(ctx, n)
			if err != nil {
				s.logger.Error("创建自动通知失败",
					zap.String("match_id", m.MatchID),
					zap.String("user_id", n.UserID),
					zap.Error(err),
				)
				errs = append(errs, err)
				continue
			}
			if ok {
				created++
			}
		}
	}

	return created, errors.Join(errs...)
}

// createDeduped 同一 (用户, 匹配) 已有相同标题前缀的通知时跳过
func (s *notificationService) createDeduped(ctx context.Context, n *model.Notification) (bool, error) {
	prefix := runePrefix(n.Title, s.prefixLen)
	exists, err := s.repo.Notification.ExistsWithTitlePrefix(ctx, n.UserID, n.MatchID, prefix)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if err := s.repo.Notification.Create(ctx, n); err != nil {
		return false, err
	}
	return true, nil
}

func autoNotifications(m *model.CandidateMatch) []*model.Notification {
	pct := fmt.Sprintf("%.0f%%", m.Confidence()*100)
	return []*model.Notification{
		{
			UserID:  m.LostPost.UserID,
			MatchID: m.MatchID,
			Type:    model.NotificationTypeAuto,
			Title:   titleAutoLost,
			Content: fmt.Sprintf("您发布的寻物帖「%s」与招领帖「%s」高度匹配（%s）！%s",
				m.LostPost.Title, m.FoundPost.Title, pct, m.RerankReason),
		},
		{
			UserID:  m.FoundPost.UserID,
			MatchID: m.MatchID,
			Type:    model.NotificationTypeAuto,
			Title:   titleAutoFound,
			Content: fmt.Sprintf("您发布的招领帖「%s」与寻物帖「%s」高度匹配（%s）！%s",
				m.FoundPost.Title, m.LostPost.Title, pct, m.RerankReason),
		},
	}
}

// ────────────────────── SendConfirmed ──────────────────────

func (s *notificationService) SendConfirmed(ctx context.Context, m *model.CandidateMatch) error {
	if m.LostPost == nil || m.FoundPost == nil {
		return ErrMatchPostsNotLoaded
	}

	notifications := []*model.Notification{
		{
			UserID:  m.LostPost.UserID,
			MatchID: m.MatchID,
			Type:    model.NotificationTypeConfirmed,
			Title:   titleConfirmedLost,
			Content: fmt.Sprintf("经人工审核确认，招领帖「%s」就是您丢失的「%s」！请尽快联系对方取回。",
				m.FoundPost.Title, m.LostPost.Title),
		},
		{
			UserID:  m.FoundPost.UserID,
			MatchID: m.MatchID,
			Type:    model.NotificationTypeConfirmed,
			Title:   titleConfirmedFound,
			Content: fmt.Sprintf("经人工审核确认，您捡到的「%s」的失主已找到！对方正在寻找「%s」，请等待联系。",
				m.FoundPost.Title, m.LostPost.Title),
		},
	}

	for _, n := range notifications {
		if err := s.repo.Notification.Create(ctx, n); err != nil {
			s.logger.Error("创建确认通知失败", zap.String("match_id", m.MatchID), zap.Error(err))
			return err
		}
	}
	return nil
}

// ────────────────────── List ──────────────────────

func (s *notificationService) List(ctx context.Context, userID string, req *dto.NotificationListRequest) (*dto.NotificationListResult, error) {
	list, total, err := s.repo.Notification.ListByUser(ctx, userID, req.UnreadOnly, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询通知列表失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	unread, err := s.repo.Notification.CountUnread(ctx, userID)
	if err != nil {
		s.logger.Error("统计未读通知失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	result := &dto.NotificationListResult{
		List:        make([]dto.NotificationResponse, 0, len(list)),
		Total:       total,
		UnreadCount: unread,
	}
	for i := range list {
		result.List = append(result.List, toNotificationResponse(&list[i]))
	}
	return result, nil
}

// ────────────────────── MarkRead ──────────────────────

func (s *notificationService) MarkRead(ctx context.Context, id, userID string) (*dto.MarkReadResponse, error) {
	n, err := s.repo.Notification.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		s.logger.Error("查询通知失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if n.UserID != userID {
		return nil, ErrNotificationForbidden
	}

	if !n.IsRead {
		if err := s.repo.Notification.MarkRead(ctx, id); err != nil {
			s.logger.Error("标记通知已读失败", zap.String("id", id), zap.Error(err))
			return nil, err
		}
	}

	resp := &dto.MarkReadResponse{NotificationID: id}
	if m := n.Match; m != nil {
		// 跳转到对方的帖子：寻物帖主人看招领帖，反之亦然
		resp.TargetPostID = m.FoundPostID
		lost, err := s.repo.Post.GetByID(ctx, m.LostPostID)
		if err == nil && lost.UserID != userID {
			resp.TargetPostID = m.LostPostID
		}
	}
	return resp, nil
}

// ────────────────────── MarkAllRead ──────────────────────

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.Notification.MarkAllRead(ctx, userID)
	if err != nil {
		s.logger.Error("全部标记已读失败", zap.String("user_id", userID), zap.Error(err))
		return 0, err
	}
	return n, nil
}

// runePrefix 取前 n 个字符
func runePrefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
