package dto

// ── 评论模块 DTO ──

// CreateCommentRequest 发表评论请求
type CreateCommentRequest struct {
	Content string `json:"content" binding:"required,min=1,max=1000"`
}

// CommentResponse 评论信息
type CommentResponse struct {
	ID        string     `json:"id"`
	PostID    string     `json:"post_id"`
	Content   string     `json:"content"`
	Author    *UserBrief `json:"author,omitempty"`
	CreatedAt string     `json:"created_at"`
}
