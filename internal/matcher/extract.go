package matcher

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"lost-found/backend/internal/model"
	"lost-found/backend/pkg/llm"
)

const (
	extractTemperature    = 0.1
	fallbackFeaturesLen   = 200
	extractSystemPrompt   = "你是一个专业的信息抽取助手，只返回 JSON 格式的结果。"
	extractTimeInfoLayout = "2006-01-02 15:04:05"
)

const extractPromptTmpl = `请从以下失物/招领帖子中提取结构化信息。

帖子内容：
标题：%s
描述：%s
类型：%s
位置：%s

请以 JSON 格式返回以下字段（信息不存在时填空字符串）：
{
    "item_name": "物品名称",
    "color": "颜色",
    "brand": "品牌",
    "features": "特征描述（材质、大小、独特标记等）",
    "location_detail": "详细位置",
    "time_info": "时间信息"
}

只返回 JSON，不要其他内容。`

// Extraction 帖子的结构化属性
type Extraction struct {
	ItemName       string         `json:"item_name"`
	Color          string         `json:"color"`
	Brand          string         `json:"brand"`
	Features       string         `json:"features"`
	LocationDetail string         `json:"location_detail"`
	TimeInfo       string         `json:"time_info"`
	Raw            map[string]any `json:"raw"`
	Source         Source         `json:"source"`
	FallbackCause  FallbackCause  `json:"fallback_cause,omitempty"`
}

// Extractor 结构化信息抽取器
type Extractor struct {
	gateway llm.Gateway
	logger  *zap.Logger
}

// NewExtractor 创建抽取器；gateway 为 nil 时始终走规则兜底
func NewExtractor(gateway llm.Gateway, logger *zap.Logger) *Extractor {
	return &Extractor{gateway: gateway, logger: logger}
}

// Extract 抽取帖子属性，大模型不可用或解析为空时返回确定性的兜底结果
func (e *Extractor) Extract(ctx context.Context, post *model.Post) Extraction {
	if e.gateway == nil || !e.gateway.Available() {
		return fallbackExtraction(post, CauseUnavailable)
	}

	prompt := fmt.Sprintf(extractPromptTmpl, post.Title, post.Description, post.Category, post.Location)
	out := e.gateway.Complete(ctx, extractSystemPrompt, prompt, extractTemperature)

	obj := llm.ExtractJSON(out.Text)
	if len(obj) == 0 {
		cause := causeOf(out)
		e.logger.Warn("抽取结果不可用，使用规则兜底",
			zap.String("post_id", post.PostID),
			zap.String("cause", string(cause)),
		)
		return fallbackExtraction(post, cause)
	}

	return Extraction{
		ItemName:       stringField(obj, "item_name"),
		Color:          stringField(obj, "color"),
		Brand:          stringField(obj, "brand"),
		Features:       stringField(obj, "features"),
		LocationDetail: stringField(obj, "location_detail"),
		TimeInfo:       stringField(obj, "time_info"),
		Raw:            obj,
		Source:         SourceLLM,
	}
}

// FallbackExtraction 直接由帖子字段构造属性：标题作物品名，描述前 200 字作特征
func FallbackExtraction(post *model.Post) Extraction {
	return fallbackExtraction(post, CauseNone)
}

func fallbackExtraction(post *model.Post, cause FallbackCause) Extraction {
	timeInfo := ""
	if !post.CreatedAt.IsZero() {
		timeInfo = post.CreatedAt.Format(extractTimeInfoLayout)
	}
	x := Extraction{
		ItemName:       post.Title,
		Features:       truncateRunes(post.Description, fallbackFeaturesLen),
		LocationDetail: post.Location,
		TimeInfo:       timeInfo,
		Source:         SourceFallback,
		FallbackCause:  cause,
	}
	x.Raw = map[string]any{
		"item_name":       x.ItemName,
		"color":           x.Color,
		"brand":           x.Brand,
		"features":        x.Features,
		"location_detail": x.LocationDetail,
		"time_info":       x.TimeInfo,
	}
	return x
}

// Truncated 按存储上限截断各字段
func (x Extraction) Truncated() Extraction {
	x.ItemName = truncateRunes(x.ItemName, model.ItemNameMaxLen)
	x.Color = truncateRunes(x.Color, model.ColorMaxLen)
	x.Brand = truncateRunes(x.Brand, model.BrandMaxLen)
	x.LocationDetail = truncateRunes(x.LocationDetail, model.LocationDetailMaxLen)
	x.TimeInfo = truncateRunes(x.TimeInfo, model.TimeInfoMaxLen)
	return x
}

func stringField(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// truncateRunes 按字符数截断
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
