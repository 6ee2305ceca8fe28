package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"lost-found/backend/config"
)

// RetryPause 两次尝试之间的固定间隔，测试中置 0
var RetryPause = 500 * time.Millisecond

const defaultMaxAttempts = 3

// Client OpenAI 兼容的 chat/completions 网关实现（默认指向 DeepSeek）
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	maxAttempts int
	httpClient  *http.Client
	logger      *zap.Logger
}

var _ Gateway = (*Client)(nil)

// NewClient 根据配置创建网关；api_key 为空时网关不可用，所有调用立即返回
func NewClient(cfg *config.LLMConfig, logger *zap.Logger) *Client {
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "deepseek-chat"
	}

	return &Client{
		baseURL:     strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:      strings.TrimSpace(cfg.APIKey),
		model:       model,
		maxAttempts: attempts,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

// Available 是否配置了 API Key
func (c *Client) Available() bool {
	return c != nil && c.apiKey != "" && c.baseURL != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("llm http %d: %s", e.StatusCode, e.Body)
}

// Complete 发送对话请求，最多尝试 maxAttempts 次
// 任何失败都会重试；重试耗尽后记录日志并返回 StatusFailed，不向上抛错
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) Outcome {
	if !c.Available() {
		return Outcome{Status: StatusUnavailable}
	}

	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: temperature,
		Stream:      false,
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return Outcome{Status: StatusFailed, Attempts: attempt - 1, Err: err}
		}

		text, err := c.doOnce(ctx, &req)
		if err == nil {
			return Outcome{Status: StatusOK, Text: text, Attempts: attempt}
		}
		lastErr = err

		if attempt < c.maxAttempts {
			c.logger.Debug("大模型调用失败，准备重试",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", c.maxAttempts),
				zap.Error(err),
			)
			if RetryPause > 0 {
				select {
				case <-ctx.Done():
					return Outcome{Status: StatusFailed, Attempts: attempt, Err: ctx.Err()}
				case <-time.After(RetryPause):
				}
			}
		}
	}

	c.logger.Warn("大模型调用失败，已放弃",
		zap.Int("attempts", c.maxAttempts),
		zap.Error(lastErr),
	)
	return Outcome{Status: StatusFailed, Attempts: c.maxAttempts, Err: lastErr}
}

func (c *Client) doOnce(ctx context.Context, body *chatRequest) (string, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return "", fmt.Errorf("编码请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &httpStatusError{StatusCode: resp.StatusCode, Body: truncate(string(raw), 512)}
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("解析响应失败: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("响应中没有 choices")
	}
	return out.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
