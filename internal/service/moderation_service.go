package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"lost-found/backend/config"
	"lost-found/backend/internal/dto"
	"lost-found/backend/internal/model"
	"lost-found/backend/internal/repository"
)

// ── 审核模块业务错误 ──

var (
	ErrMatchNotFound = errors.New("匹配记录不存在")
)

// ModerationService 人工审核业务接口
//
// 审核通过：状态改为 accepted 并记录审核时间，随后给双方发送确认通知；
// 已通过的匹配重复审核不会再次通知。
// 驳回是破坏性的：先删该匹配的全部通知，再删匹配本身。
type ModerationService interface {
	List(ctx context.Context, req *dto.AdminMatchListRequest) ([]dto.MatchResponse, int64, error)
	Accept(ctx context.Context, id, reviewerID string) (*dto.MatchResponse, error)
	Reject(ctx context.Context, id, reviewerID string) error
}

type moderationService struct {
	repo   *repository.Repository
	cfg    config.MatchingConfig
	logger *zap.Logger
}

// NewModerationService 创建 ModerationService 实例
func NewModerationService(repo *repository.Repository, cfg *config.MatchingConfig, logger *zap.Logger) ModerationService {
	return &moderationService{repo: repo, cfg: *cfg, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *moderationService) List(ctx context.Context, req *dto.AdminMatchListRequest) ([]dto.MatchResponse, int64, error) {
	matches, total, err := s.repo.Match.ListByStatus(ctx, req.Status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询审核列表失败", zap.Error(err))
		return nil, 0, err
	}
	return toMatchResponses(matches), total, nil
}

// ────────────────────── Accept ──────────────────────

func (s *moderationService) Accept(ctx context.Context, id, reviewerID string) (*dto.MatchResponse, error) {
	m, err := s.getMatch(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.Status == model.MatchStatusAccepted {
		resp := toMatchResponse(m)
		return &resp, nil
	}

	now := time.Now()
	changed := false
	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		ok, err := txRepo.Match.MarkAccepted(ctx, id, now)
		if err != nil {
			return err
		}
		// 并发审核时其他请求已完成状态变更与通知
		if !ok {
			return nil
		}
		changed = true
		return NewNotificationService(txRepo, &s.cfg, s.logger).SendConfirmed(ctx, m)
	})
	if err != nil {
		s.logger.Error("审核通过匹配失败", zap.String("match_id", id), zap.Error(err))
		return nil, err
	}

	if !changed {
		latest, err := s.getMatch(ctx, id)
		if err != nil {
			return nil, err
		}
		resp := toMatchResponse(latest)
		return &resp, nil
	}

	s.logger.Info("匹配已审核通过", zap.String("match_id", id), zap.String("reviewer_id", reviewerID))

	m.Status = model.MatchStatusAccepted
	m.ReviewedAt = &now
	resp := toMatchResponse(m)
	return &resp, nil
}

// ────────────────────── Reject ──────────────────────

func (s *moderationService) Reject(ctx context.Context, id, reviewerID string) error {
	if _, err := s.getMatch(ctx, id); err != nil {
		return err
	}

	var removed int64
	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		n, err := txRepo.Notification.DeleteByMatch(ctx, id)
		if err != nil {
			return err
		}
		removed = n
		return txRepo.Match.Delete(ctx, id)
	})
	if err != nil {
		s.logger.Error("驳回匹配失败", zap.String("match_id", id), zap.Error(err))
		return err
	}

	s.logger.Info("匹配已驳回并删除",
		zap.String("match_id", id),
		zap.String("reviewer_id", reviewerID),
		zap.Int64("notifications_removed", removed),
	)
	return nil
}

func (s *moderationService) getMatch(ctx context.Context, id string) (*model.CandidateMatch, error) {
	m, err := s.repo.Match.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMatchNotFound
		}
		s.logger.Error("查询匹配失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return m, nil
}
