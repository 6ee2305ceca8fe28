package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"lost-found/backend/internal/dto"
	"lost-found/backend/internal/service"
	"lost-found/backend/pkg/response"
)

// MatchHandler 匹配模块 HTTP 处理器
type MatchHandler struct {
	matchingSvc service.MatchingService
}

// NewMatchHandler 创建 MatchHandler
func NewMatchHandler(matchingSvc service.MatchingService) *MatchHandler {
	return &MatchHandler{matchingSvc: matchingSvc}
}

// TriggerMatch 手动重新匹配（发帖人或管理员）
// POST /api/v1/posts/:id/match
func (h *MatchHandler) TriggerMatch(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "帖子ID不能为空")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	run, err := h.matchingSvc.Trigger(c.Request.Context(), id, caller.UserID, isAdmin(caller.Role))
	if err != nil {
		h.handleMatchError(c, err)
		return
	}

	response.OK(c, run)
}

// ListPostMatches 帖子的全部候选匹配
// GET /api/v1/posts/:id/matches?limit=
func (h *MatchHandler) ListPostMatches(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "帖子ID不能为空")
		return
	}

	var req dto.MatchListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	matches, err := h.matchingSvc.ListForPost(c.Request.Context(), id, req.Limit)
	if err != nil {
		h.handleMatchError(c, err)
		return
	}

	response.OK(c, gin.H{"list": matches})
}

func (h *MatchHandler) handleMatchError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		response.NotFound(c, 21001, "帖子不存在")
	case errors.Is(err, service.ErrMatchingInProgress):
		response.Conflict(c, 22001, "该帖子正在匹配中，请稍后再试")
	case errors.Is(err, service.ErrNotPostOwner):
		response.Forbidden(c, 22002, "只能对自己发布的帖子触发匹配")
	default:
		response.InternalError(c)
	}
}
