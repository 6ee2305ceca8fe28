package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"lost-found/backend/internal/dto"
	"lost-found/backend/internal/service"
	"lost-found/backend/pkg/response"
)

// AdminHandler 匹配审核 HTTP 处理器（仅管理员）
type AdminHandler struct {
	moderationSvc service.ModerationService
}

// NewAdminHandler 创建 AdminHandler
func NewAdminHandler(moderationSvc service.ModerationService) *AdminHandler {
	return &AdminHandler{moderationSvc: moderationSvc}
}

// ListMatches 按状态分页查询候选匹配
// GET /api/v1/admin/matches?status=&page=&page_size=
func (h *AdminHandler) ListMatches(c *gin.Context) {
	var req dto.AdminMatchListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.moderationSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize(), nil)
}

// AcceptMatch 审核通过并通知双方
// PUT /api/v1/admin/matches/:id/accept
func (h *AdminHandler) AcceptMatch(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "匹配ID不能为空")
		return
	}

	reviewerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	match, err := h.moderationSvc.Accept(c.Request.Context(), id, reviewerID)
	if err != nil {
		h.handleModerationError(c, err)
		return
	}

	response.OK(c, match)
}

// RejectMatch 驳回并删除匹配及其通知
// DELETE /api/v1/admin/matches/:id
func (h *AdminHandler) RejectMatch(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "匹配ID不能为空")
		return
	}

	reviewerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.moderationSvc.Reject(c.Request.Context(), id, reviewerID); err != nil {
		h.handleModerationError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *AdminHandler) handleModerationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMatchNotFound):
		response.NotFound(c, 22003, "匹配记录不存在")
	default:
		response.InternalError(c)
	}
}
