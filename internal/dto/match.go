package dto

// ── 匹配模块 DTO ──

// MatchListRequest 匹配列表参数（帖子维度）
type MatchListRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// AdminMatchListRequest 审核列表参数
type AdminMatchListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=pending accepted rejected"`
}

// ExportMatchRequest 导出参数
type ExportMatchRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=pending accepted rejected"`
}

// MatchPostBrief 匹配中引用的帖子摘要
type MatchPostBrief struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Location string `json:"location"`
	UserID   string `json:"user_id"`
}

// MatchResponse 候选匹配
type MatchResponse struct {
	ID               string          `json:"id"`
	LostPost         *MatchPostBrief `json:"lost_post,omitempty"`
	FoundPost        *MatchPostBrief `json:"found_post,omitempty"`
	Score            float64         `json:"score"`
	Method           string          `json:"method"`
	RerankConfidence *float64        `json:"rerank_confidence"`
	ConfidencePct    int             `json:"confidence_pct"`
	RerankReason     string          `json:"rerank_reason"`
	Status           string          `json:"status"`
	CreatedAt        string          `json:"created_at"`
	ReviewedAt       *string         `json:"reviewed_at,omitempty"`
}

// MatchRunResponse 一次匹配流程的执行摘要
type MatchRunResponse struct {
	PostID            string          `json:"post_id"`
	PoolSize          int             `json:"pool_size"`
	Retrieved         int             `json:"retrieved"`
	LLMJudged         int             `json:"llm_judged"`
	FallbackJudged    int             `json:"fallback_judged"`
	ExtractionSource  string          `json:"extraction_source"`
	NotificationsSent int             `json:"notifications_sent"`
	Matches           []MatchResponse `json:"matches"`
}
