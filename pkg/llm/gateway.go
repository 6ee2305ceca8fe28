// Package llm 封装大模型对话调用与结构化输出解析。
//
// 网关从不向调用方返回错误：未配置密钥、网络失败、重试耗尽都体现在
// Outcome.Status 中，调用方据此决定是否走规则降级。
package llm

import (
	"context"
	"strings"
)

// Status 单次 Complete 调用的结果类别
type Status string

const (
	StatusOK          Status = "ok"          // 拿到模型回复（内容可能为空）
	StatusUnavailable Status = "unavailable" // 未配置密钥，未发起网络请求
	StatusFailed      Status = "failed"      // 重试耗尽或 context 取消
)

// Outcome 网关调用结果
type Outcome struct {
	Status   Status
	Text     string
	Attempts int
	Err      error // 仅 StatusFailed 时为最后一次失败原因
}

// HasText 是否拿到了可解析的文本
func (o Outcome) HasText() bool {
	return o.Status == StatusOK && strings.TrimSpace(o.Text) != ""
}

// Gateway 大模型网关接口
// 由构造函数注入各个使用方，测试中可替换为脚本化的假实现
type Gateway interface {
	// Available 是否配置了调用凭证
	Available() bool
	// Complete 发送一轮 system + user 对话
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) Outcome
}
