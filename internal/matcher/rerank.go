package matcher

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"lost-found/backend/internal/model"
	"lost-found/backend/pkg/llm"
)

// ── 结果来源 ──

// Source 判断结果的来源
type Source string

const (
	SourceLLM      Source = "llm"
	SourceFallback Source = "fallback"
)

// FallbackCause 走规则兜底的原因
type FallbackCause string

const (
	CauseNone        FallbackCause = ""
	CauseUnavailable FallbackCause = "unavailable" // 未配置大模型
	CauseCallFailed  FallbackCause = "call_failed" // 重试耗尽仍失败
	CauseUnparsable  FallbackCause = "unparsable"  // 返回内容无法解析出 JSON 对象
)

// causeOf 将网关结果映射为兜底原因
func causeOf(out llm.Outcome) FallbackCause {
	switch out.Status {
	case llm.StatusUnavailable:
		return CauseUnavailable
	case llm.StatusFailed:
		return CauseCallFailed
	default:
		return CauseUnparsable
	}
}

const (
	rerankTemperature   = 0.2
	rerankDescMaxLen    = 500
	defaultConfidence   = 0.5
	defaultRerankReason = "无法获取匹配理由"

	rerankSystemPrompt = "你是一个失物招领匹配专家，只返回 JSON 格式的结果。"
)

const rerankPromptTmpl = `你是一个热心帮助同学找回失物的志愿者。请判断下面两个帖子描述的是否可能是同一件物品。

【有人在找】
%s
%s
物品类型：%s
丢失地点：%s

【有人捡到】
%s
%s
物品类型：%s
捡到地点：%s

请用自然亲切的语气给出判断，返回 JSON：
{
    "confidence": 0.0 到 1.0 之间的数字（1.0 表示非常确定是同一件物品）,
    "reason": "用一两句话说明为什么可能是或不是同一件物品"
}

只返回 JSON，不要其他内容。`

// RerankResult 一对寻物/招领帖子的相关性判断
type RerankResult struct {
	Confidence    float64       `json:"confidence"`
	Reason        string        `json:"reason"`
	Source        Source        `json:"source"`
	FallbackCause FallbackCause `json:"fallback_cause,omitempty"`
}

// Reranked 经过重排的候选
type Reranked struct {
	Post   *model.Post
	Score  float64 // TF-IDF 检索得分
	Result RerankResult
}

// Reranker 相关性重排器
type Reranker struct {
	gateway llm.Gateway
	logger  *zap.Logger
}

// NewReranker 创建重排器；gateway 为 nil 时始终走规则兜底
func NewReranker(gateway llm.Gateway, logger *zap.Logger) *Reranker {
	return &Reranker{gateway: gateway, logger: logger}
}

// Available 大模型是否可用
func (r *Reranker) Available() bool {
	return r.gateway != nil && r.gateway.Available()
}

// Rerank 判断 lost 与 found 是否为同一物品，第一个参数必须是寻物帖
func (r *Reranker) Rerank(ctx context.Context, lost, found *model.Post) RerankResult {
	if !r.Available() {
		return fallbackWithCause(lost, found, CauseUnavailable)
	}

	prompt := fmt.Sprintf(rerankPromptTmpl,
		lost.Title, truncateRunes(lost.Description, rerankDescMaxLen), lost.Category, lost.Location,
		found.Title, truncateRunes(found.Description, rerankDescMaxLen), found.Category, found.Location,
	)
	out := r.gateway.Complete(ctx, rerankSystemPrompt, prompt, rerankTemperature)

	obj := llm.ExtractJSON(out.Text)
	if len(obj) == 0 {
		cause := causeOf(out)
		r.logger.Warn("重排结果不可用，使用规则兜底",
			zap.String("lost_post_id", lost.PostID),
			zap.String("found_post_id", found.PostID),
			zap.String("cause", string(cause)),
		)
		return fallbackWithCause(lost, found, cause)
	}

	return RerankResult{
		Confidence: clamp01(parseConfidence(obj["confidence"])),
		Reason:     parseReason(obj["reason"]),
		Source:     SourceLLM,
	}
}

// BatchRerank 对检索结果逐一重排
//
// 检索得分低于 minScore 的候选直接丢弃；每一对都以寻物帖作为第一个参数调用 Rerank。
// 返回按置信度降序排列（同分保持检索顺序）。
func (r *Reranker) BatchRerank(ctx context.Context, target *model.Post, candidates []Candidate, minScore float64) []Reranked {
	results := make([]Reranked, 0, len(candidates))
	for _, c := range candidates {
		if c.Score < minScore {
			continue
		}
		lost, found := target, c.Post
		if !target.IsLost() {
			lost, found = c.Post, target
		}
		results = append(results, Reranked{
			Post:   c.Post,
			Score:  c.Score,
			Result: r.Rerank(ctx, lost, found),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Result.Confidence > results[j].Result.Confidence
	})
	return results
}

// ── 规则兜底 ──

// titleIgnored 计算标题字符交集时忽略的符号
var titleIgnored = map[rune]struct{}{' ': {}, '，': {}, '。': {}, '、': {}}

// FallbackRerank 基于规则的置信度估计
//
// 基础分 0.30；类型一致 +0.30；地点一致 +0.20，否则同一区域 +0.10；
// 标题共有字符超过 3 个 +0.10。结果截断到 [0,1]。
func FallbackRerank(lost, found *model.Post) RerankResult {
	return fallbackWithCause(lost, found, CauseNone)
}

func fallbackWithCause(lost, found *model.Post, cause FallbackCause) RerankResult {
	confidence := 0.30
	var reasons []string

	if lost.Category != "" && found.Category != "" {
		if lost.Category == found.Category {
			confidence += 0.30
			reasons = append(reasons, "都是"+lost.Category)
		} else {
			reasons = append(reasons, "物品类型不太一样")
		}
	}

	if lost.Location != "" && found.Location != "" {
		switch {
		case lost.Location == found.Location:
			confidence += 0.20
			reasons = append(reasons, "地点也吻合")
		case lost.Zone() != "" && lost.Zone() == found.Zone():
			confidence += 0.10
			reasons = append(reasons, "在附近区域")
		}
	}

	if lost.Title != "" && found.Title != "" && commonRunes(lost.Title, found.Title) > 3 {
		confidence += 0.10
		reasons = append(reasons, "描述有些相似")
	}

	// 消除浮点累加误差，保证 0.3+0.3 落在 0.6 档
	confidence = clamp01(math.Round(confidence*100) / 100)

	return RerankResult{
		Confidence:    confidence,
		Reason:        fallbackReason(confidence, reasons),
		Source:        SourceFallback,
		FallbackCause: cause,
	}
}

func fallbackReason(confidence float64, reasons []string) string {
	head := reasons
	if len(head) > 2 {
		head = head[:2]
	}
	joined := strings.Join(head, "，")
	if joined == "" {
		joined = "信息有限"
	}

	switch {
	case confidence >= 0.6:
		return joined + "，可以去看看是不是你的！"
	case confidence >= 0.4:
		return joined + "，不确定是不是同一个，建议确认一下。"
	default:
		first := "信息有限"
		if len(reasons) > 0 {
			first = reasons[0]
		}
		return first + "，匹配度不高，仅供参考。"
	}
}

func commonRunes(a, b string) int {
	set := make(map[rune]struct{})
	for _, r := range a {
		if _, skip := titleIgnored[r]; !skip {
			set[r] = struct{}{}
		}
	}
	n := 0
	for _, r := range b {
		if _, ok := set[r]; ok {
			n++
			delete(set, r)
		}
	}
	return n
}

// ── 解析 ──

func parseConfidence(v any) float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return defaultConfidence
		}
		f = parsed
	default:
		return defaultConfidence
	}
	if math.IsNaN(f) {
		return defaultConfidence
	}
	return f
}

func parseReason(v any) string {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return defaultRerankReason
	}
	return s
}

func clamp01(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}
