package dto

// ── 帖子模块 DTO ──

// CreatePostRequest 发帖请求
type CreatePostRequest struct {
	Direction   string  `json:"direction"   binding:"required,oneof=lost found"`
	Title       string  `json:"title"       binding:"required,min=1,max=100"`
	Description string  `json:"description" binding:"required,min=1,max=5000"`
	Category    string  `json:"category"    binding:"required,max=50"`
	Location    string  `json:"location"    binding:"required,min=1,max=500"`
	ImageURL    *string `json:"image_url"   binding:"omitempty,url,max=500"`
}

// PostSearchRequest 帖子检索参数
type PostSearchRequest struct {
	Keyword  string `form:"keyword"   binding:"omitempty,max=100"`
	Type     string `form:"type"      binding:"omitempty,oneof=lost found"`
	ItemType string `form:"item_type" binding:"omitempty,max=50"`
	Location string `form:"location"  binding:"omitempty,max=100"`
	DateFrom string `form:"date_from" binding:"omitempty,datetime=2006-01-02"`
	DateTo   string `form:"date_to"   binding:"omitempty,datetime=2006-01-02"`
	State    string `form:"state"     binding:"omitempty,oneof=open resolved"`
	Owner    string `form:"owner"     binding:"omitempty,oneof=mine"`
	Limit    int    `form:"limit"     binding:"omitempty,min=1,max=100"`
}

// PostResponse 帖子信息
type PostResponse struct {
	ID          string     `json:"id"`
	Direction   string     `json:"direction"`
	TypeLabel   string     `json:"type_label"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Location    string     `json:"location"`
	Zone        string     `json:"zone"`
	Status      string     `json:"status"`
	ImageURL    *string    `json:"image_url,omitempty"`
	Owner       *UserBrief `json:"owner,omitempty"`
	CreatedAt   string     `json:"created_at"`
}

// PostDetailResponse 帖子详情（含前 5 个候选匹配与全部评论）
type PostDetailResponse struct {
	Post     PostResponse      `json:"post"`
	Matches  []MatchResponse   `json:"matches"`
	Comments []CommentResponse `json:"comments"`
}

// CreatePostResponse 发帖结果
// Matching 为空表示未触发匹配或匹配失败（发帖本身仍然成功）
type CreatePostResponse struct {
	Post     PostResponse      `json:"post"`
	Matching *MatchRunResponse `json:"matching,omitempty"`
}

// ZoneOption 区域选项
type ZoneOption struct {
	Name      string   `json:"name"`
	Landmarks []string `json:"landmarks"`
}

// Option 通用键值选项
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// OptionsResponse 发帖与检索可用的选项集合
type OptionsResponse struct {
	Types     []Option     `json:"types"`
	ItemTypes []string     `json:"item_types"`
	Zones     []ZoneOption `json:"zones"`
	States    []Option     `json:"states"`
}
