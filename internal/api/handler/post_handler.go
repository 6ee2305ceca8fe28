package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"lost-found/backend/internal/dto"
	"lost-found/backend/internal/service"
	"lost-found/backend/pkg/response"
)

// PostHandler 帖子模块 HTTP 处理器
type PostHandler struct {
	postSvc service.PostService
}

// NewPostHandler 创建 PostHandler
func NewPostHandler(postSvc service.PostService) *PostHandler {
	return &PostHandler{postSvc: postSvc}
}

// CreatePost 发帖
// POST /api/v1/posts
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req dto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	resp, err := h.postSvc.Create(c.Request.Context(), &req, caller)
	if err != nil {
		h.handlePostError(c, err)
		return
	}

	response.Created(c, resp)
}

// GetPost 帖子详情（含前 5 个候选匹配）
// GET /api/v1/posts/:id
func (h *PostHandler) GetPost(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "帖子ID不能为空")
		return
	}

	detail, err := h.postSvc.GetDetail(c.Request.Context(), id)
	if err != nil {
		h.handlePostError(c, err)
		return
	}

	response.OK(c, detail)
}

// SearchPosts 检索帖子
// GET /api/v1/posts?keyword=&type=&item_type=&location=&date_from=&date_to=&state=&owner=mine&limit=
func (h *PostHandler) SearchPosts(c *gin.Context) {
	var req dto.PostSearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	posts, err := h.postSvc.Search(c.Request.Context(), &req, c.GetString("user_id"))
	if err != nil {
		h.handlePostError(c, err)
		return
	}

	response.OK(c, gin.H{"list": posts})
}

// DeletePost 删除帖子（发帖人或管理员）
// DELETE /api/v1/posts/:id
func (h *PostHandler) DeletePost(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "帖子ID不能为空")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.postSvc.Delete(c.Request.Context(), id, caller); err != nil {
		h.handlePostError(c, err)
		return
	}

	response.OK(c, nil)
}

// GetOptions 发帖与检索可选项
// GET /api/v1/options
func (h *PostHandler) GetOptions(c *gin.Context) {
	response.OK(c, h.postSvc.Options())
}

func (h *PostHandler) handlePostError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		response.NotFound(c, 21001, "帖子不存在")
	case errors.Is(err, service.ErrInvalidCategory):
		response.BadRequest(c, 21002, "物品类型不在可选范围内")
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 21003, "日期范围无效")
	case errors.Is(err, service.ErrPostForbidden):
		response.Forbidden(c, 21004, "只有发帖人或管理员可以删除帖子")
	case errors.Is(err, service.ErrOwnerFilterNeedID):
		response.Unauthorized(c, 10002, "未认证")
	default:
		response.InternalError(c)
	}
}
