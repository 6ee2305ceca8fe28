package service

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"lost-found/backend/config"
	"lost-found/backend/internal/dto"
	"lost-found/backend/internal/matcher"
	"lost-found/backend/internal/model"
	"lost-found/backend/internal/repository"
	pkgerrors "lost-found/backend/pkg/errors"
	"lost-found/backend/pkg/llm"
)

// ── 匹配模块业务错误 ──

var (
	ErrMatchingInProgress = errors.New("该帖子正在匹配中，请稍后再试")
	ErrNotPostOwner       = errors.New("只能对自己发布的帖子触发匹配")
)

const defaultTopK = 10

// MatchRun 一次匹配流程的执行结果
type MatchRun struct {
	PostID            string
	PoolSize          int
	Retrieved         int
	LLMJudged         int
	FallbackJudged    int
	ExtractionSource  matcher.Source
	NotificationsSent int
	Matches           []model.CandidateMatch // 按置信度降序，已挂载双方帖子
}

// MatchingService 匹配编排业务接口
type MatchingService interface {
	// ProcessPost 对帖子执行完整匹配流程：抽取 → 检索 → 重排 → 落库 → 通知
	ProcessPost(ctx context.Context, post *model.Post) (*MatchRun, error)
	// Trigger 发帖人（或管理员）手动重新匹配
	Trigger(ctx context.Context, postID, callerID string, isAdmin bool) (*dto.MatchRunResponse, error)
	// Rematch 运维入口，不校验归属
	Rematch(ctx context.Context, postID string) (*MatchRun, error)
	ListForPost(ctx context.Context, postID string, limit int) ([]dto.MatchResponse, error)
	// Extract 仅执行信息抽取并写入缓存
	Extract(ctx context.Context, postID string) (*model.ExtractionCache, error)
}

type matchingService struct {
	repo      *repository.Repository
	retriever *matcher.Retriever
	reranker  *matcher.Reranker
	extractor *matcher.Extractor
	notifier  NotificationService
	locker    Locker
	cfg       config.MatchingConfig
	logger    *zap.Logger
}

// NewMatchingService 创建 MatchingService 实例
func NewMatchingService(
	repo *repository.Repository,
	gateway llm.Gateway,
	notifier NotificationService,
	locker Locker,
	cfg *config.MatchingConfig,
	logger *zap.Logger,
) MatchingService {
	c := *cfg
	if c.TopK <= 0 {
		c.TopK = defaultTopK
	}
	return &matchingService{
		repo:      repo,
		retriever: matcher.NewRetriever(),
		reranker:  matcher.NewReranker(gateway, logger),
		extractor: matcher.NewExtractor(gateway, logger),
		notifier:  notifier,
		locker:    locker,
		cfg:       c,
		logger:    logger,
	}
}

// ════════════════════════════════════════════════════════════
// ProcessPost
// ════════════════════════════════════════════════════════════
//
// 1. 同一帖子加锁，重复触发直接返回 ErrMatchingInProgress
// 2. 大模型调用（抽取、重排）全部在事务外完成
// 3. 抽取缓存与匹配记录在同一事务内 upsert
// 4. 提交后派发通知，通知失败只记日志

func (s *matchingService) ProcessPost(ctx context.Context, post *model.Post) (*MatchRun, error) {
	release, err := s.locker.TryLock(ctx, "matching:post:"+post.PostID, s.cfg.LockTTL)
	switch {
	case errors.Is(err, pkgerrors.ErrLockNotAcquired):
		return nil, ErrMatchingInProgress
	case err != nil:
		// 锁服务不可用时降级为无锁执行，依赖唯一约束兜底
		s.logger.Warn("获取匹配锁失败，降级为无锁执行", zap.String("post_id", post.PostID), zap.Error(err))
	default:
		defer release()
	}

	run := &MatchRun{PostID: post.PostID}

	extraction := s.extractor.Extract(ctx, post).Truncated()
	run.ExtractionSource = extraction.Source

	pool, err := s.repo.Post.ListOpenByDirection(ctx, post.OppositeDirection(), post.PostID)
	if err != nil {
		s.logger.Error("查询候选池失败", zap.String("post_id", post.PostID), zap.Error(err))
		return nil, err
	}
	pool = matcher.PrefilterByCategory(post, pool, s.cfg.StrictCategory)
	run.PoolSize = len(pool)

	var reranked []matcher.Reranked
	if len(pool) > 0 {
		candidates := s.retriever.Retrieve(post, pool, s.cfg.TopK)
		run.Retrieved = len(candidates)
		reranked = s.reranker.BatchRerank(ctx, post, candidates, s.cfg.MinRetrievalScore)
	}

	method := model.MatchMethodRetrievalOnly
	if s.reranker.Available() {
		method = model.MatchMethodRerank
	}

	cache, err := toExtractionCache(post.PostID, extraction)
	if err != nil {
		s.logger.Error("序列化抽取结果失败", zap.String("post_id", post.PostID), zap.Error(err))
		return nil, err
	}

	// ── 事务：抽取缓存 + 匹配记录 ──
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	if err := txRepo.Extraction.Upsert(ctx, cache); err != nil {
		tx.Rollback()
		s.logger.Error("写入抽取缓存失败", zap.String("post_id", post.PostID), zap.Error(err))
		return nil, err
	}

	for _, r := range reranked {
		lost, found := post, r.Post
		if !post.IsLost() {
			lost, found = r.Post, post
		}
		confidence := r.Result.Confidence

		m, err := txRepo.Match.Upsert(ctx, &model.CandidateMatch{
			LostPostID:       lost.PostID,
			FoundPostID:      found.PostID,
			Score:            r.Score,
			Method:           method,
			RerankConfidence: &confidence,
			RerankReason:     r.Result.Reason,
			Status:           model.MatchStatusPending,
		})
		if err != nil {
			tx.Rollback()
			s.logger.Error("写入候选匹配失败",
				zap.String("lost_post_id", lost.PostID),
				zap.String("found_post_id", found.PostID),
				zap.Error(err),
			)
			return nil, err
		}
		m.LostPost, m.FoundPost = lost, found
		run.Matches = append(run.Matches, *m)

		if r.Result.Source == matcher.SourceLLM {
			run.LLMJudged++
		} else {
			run.FallbackJudged++
		}
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("提交事务失败", zap.Error(err))
		return nil, err
	}

	sent, err := s.notifier.DispatchAuto(ctx, run.Matches)
	if err != nil {
		s.logger.Warn("部分匹配通知发送失败", zap.String("post_id", post.PostID), zap.Error(err))
	}
	run.NotificationsSent = sent

	s.logger.Info("匹配完成",
		zap.String("post_id", post.PostID),
		zap.String("direction", post.Direction),
		zap.Int("pool", run.PoolSize),
		zap.Int("matches", len(run.Matches)),
		zap.Int("llm_judged", run.LLMJudged),
		zap.Int("fallback_judged", run.FallbackJudged),
		zap.Int("notifications", run.NotificationsSent),
	)
	return run, nil
}

func toExtractionCache(postID string, x matcher.Extraction) (*model.ExtractionCache, error) {
	raw, err := json.Marshal(x.Raw)
	if err != nil {
		return nil, err
	}
	return &model.ExtractionCache{
		PostID:         postID,
		ItemName:       x.ItemName,
		Color:          x.Color,
		Brand:          x.Brand,
		Features:       x.Features,
		LocationDetail: x.LocationDetail,
		TimeInfo:       x.TimeInfo,
		Source:         string(x.Source),
		RawJSON:        datatypes.JSON(raw),
	}, nil
}

// ────────────────────── Trigger ──────────────────────

func (s *matchingService) Trigger(ctx context.Context, postID, callerID string, isAdmin bool) (*dto.MatchRunResponse, error) {
	post, err := s.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && post.UserID != callerID {
		return nil, ErrNotPostOwner
	}

	run, err := s.ProcessPost(ctx, post)
	if err != nil {
		return nil, err
	}
	return toMatchRunResponse(run), nil
}

// ────────────────────── Rematch ──────────────────────

func (s *matchingService) Rematch(ctx context.Context, postID string) (*MatchRun, error) {
	post, err := s.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return s.ProcessPost(ctx, post)
}

// ────────────────────── ListForPost ──────────────────────

func (s *matchingService) ListForPost(ctx context.Context, postID string, limit int) ([]dto.MatchResponse, error) {
	post, err := s.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	matches, err := s.repo.Match.ListForPost(ctx, post, limit)
	if err != nil {
		s.logger.Error("查询匹配列表失败", zap.String("post_id", postID), zap.Error(err))
		return nil, err
	}
	return toMatchResponses(matches), nil
}

// ────────────────────── Extract ──────────────────────

func (s *matchingService) Extract(ctx context.Context, postID string) (*model.ExtractionCache, error) {
	post, err := s.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	cache, err := toExtractionCache(post.PostID, s.extractor.Extract(ctx, post).Truncated())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Extraction.Upsert(ctx, cache); err != nil {
		s.logger.Error("写入抽取缓存失败", zap.String("post_id", postID), zap.Error(err))
		return nil, err
	}
	return s.repo.Extraction.GetByPostID(ctx, post.PostID)
}

func (s *matchingService) getPost(ctx context.Context, postID string) (*model.Post, error) {
	post, err := s.repo.Post.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		s.logger.Error("查询帖子失败", zap.String("id", postID), zap.Error(err))
		return nil, err
	}
	return post, nil
}

func toMatchRunResponse(run *MatchRun) *dto.MatchRunResponse {
	return &dto.MatchRunResponse{
		PostID:            run.PostID,
		PoolSize:          run.PoolSize,
		Retrieved:         run.Retrieved,
		LLMJudged:         run.LLMJudged,
		FallbackJudged:    run.FallbackJudged,
		ExtractionSource:  string(run.ExtractionSource),
		NotificationsSent: run.NotificationsSent,
		Matches:           toMatchResponses(run.Matches),
	}
}
