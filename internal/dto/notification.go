package dto

// ── 通知模块 DTO ──

// NotificationListRequest 通知列表参数
type NotificationListRequest struct {
	PaginationRequest
	UnreadOnly bool `form:"unread_only"`
}

// NotificationResponse 通知
type NotificationResponse struct {
	ID        string `json:"id"`
	MatchID   string `json:"match_id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
}

// NotificationListResult 通知分页结果
type NotificationListResult struct {
	List        []NotificationResponse
	Total       int64
	UnreadCount int64
}

// UnreadSummary 分页响应附带的未读统计
type UnreadSummary struct {
	UnreadCount int64 `json:"unread_count"`
}

// MarkReadResponse 标记已读结果，返回对方帖子 ID 便于跳转
type MarkReadResponse struct {
	NotificationID string `json:"notification_id"`
	TargetPostID   string `json:"target_post_id"`
}

// MarkAllReadResponse 全部已读结果
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
