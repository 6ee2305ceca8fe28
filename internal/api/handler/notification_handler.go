package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"lost-found/backend/internal/dto"
	"lost-found/backend/internal/service"
	"lost-found/backend/pkg/response"
)

// NotificationHandler 通知模块 HTTP 处理器
type NotificationHandler struct {
	notificationSvc service.NotificationService
}

// NewNotificationHandler 创建 NotificationHandler
func NewNotificationHandler(notificationSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationSvc: notificationSvc}
}

// ListNotifications 当前用户的通知列表（附未读数）
// GET /api/v1/notifications?page=&page_size=&unread_only=
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	var req dto.NotificationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.notificationSvc.List(c.Request.Context(), userID, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, result.List, result.Total, req.GetPage(), req.GetPageSize(),
		dto.UnreadSummary{UnreadCount: result.UnreadCount})
}

// MarkRead 标记单条通知已读，返回对方帖子 ID
// PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "通知ID不能为空")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.notificationSvc.MarkRead(c.Request.Context(), id, userID)
	if err != nil {
		h.handleNotificationError(c, err)
		return
	}

	response.OK(c, resp)
}

// MarkAllRead 全部标记已读
// PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	n, err := h.notificationSvc.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, dto.MarkAllReadResponse{Updated: n})
}

func (h *NotificationHandler) handleNotificationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotificationNotFound):
		response.NotFound(c, 23001, "通知不存在")
	case errors.Is(err, service.ErrNotificationForbidden):
		response.Forbidden(c, 23002, "无权操作该通知")
	default:
		response.InternalError(c)
	}
}
