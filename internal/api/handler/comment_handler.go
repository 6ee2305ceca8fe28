package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"lost-found/backend/internal/dto"
	"lost-found/backend/internal/service"
	"lost-found/backend/pkg/response"
)

// CommentHandler 评论模块 HTTP 处理器
type CommentHandler struct {
	commentSvc service.CommentService
}

// NewCommentHandler 创建 CommentHandler
func NewCommentHandler(commentSvc service.CommentService) *CommentHandler {
	return &CommentHandler{commentSvc: commentSvc}
}

// ListComments 帖子评论列表
// GET /api/v1/posts/:id/comments
func (h *CommentHandler) ListComments(c *gin.Context) {
	list, err := h.commentSvc.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleCommentError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// CreateComment 发表评论
// POST /api/v1/posts/:id/comments
func (h *CommentHandler) CreateComment(c *gin.Context) {
	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	comment, err := h.commentSvc.Create(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		h.handleCommentError(c, err)
		return
	}

	response.Created(c, comment)
}

func (h *CommentHandler) handleCommentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		response.NotFound(c, 21001, "帖子不存在")
	case errors.Is(err, service.ErrEmptyComment):
		response.BadRequest(c, 25001, "评论内容不能为空")
	default:
		response.InternalError(c)
	}
}
