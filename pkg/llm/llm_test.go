package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lost-found/backend/config"
)

func init() {
	RetryPause = 0
}

func newTestClient(baseURL, key string) *Client {
	return NewClient(&config.LLMConfig{
		APIKey:      key,
		BaseURL:     baseURL,
		Model:       "deepseek-chat",
		MaxAttempts: 3,
		Timeout:     5 * time.Second,
	}, zap.NewNop())
}

func chatReply(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	})
}

func TestClient_UnavailableWithoutKey(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer ts.Close()

	c := newTestClient(ts.URL, "")
	assert.False(t, c.Available())

	out := c.Complete(context.Background(), "sys", "user", 0.2)
	assert.Equal(t, StatusUnavailable, out.Status)
	assert.Empty(t, out.Text)
	assert.False(t, out.HasText())
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestClient_SendsChatRequest(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "deepseek-chat", req.Model)
		assert.InDelta(t, 0.2, req.Temperature, 1e-9)
		assert.False(t, req.Stream)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "你是匹配专家", req.Messages[0].Content)
		assert.Equal(t, "user", req.Messages[1].Role)

		chatReply(w, `{"confidence": 0.9}`)
	}))
	defer ts.Close()

	out := newTestClient(ts.URL+"/", "sk-test").Complete(context.Background(), "你是匹配专家", "两个帖子", 0.2)
	assert.Equal(t, StatusOK, out.Status)
	assert.Equal(t, 1, out.Attempts)
	assert.Equal(t, `{"confidence": 0.9}`, out.Text)
}

func TestClient_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		chatReply(w, "ok")
	}))
	defer ts.Close()

	out := newTestClient(ts.URL, "sk-test").Complete(context.Background(), "s", "u", 0.1)
	assert.Equal(t, StatusOK, out.Status)
	assert.Equal(t, 3, out.Attempts)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_GivesUpAfterThreeAttempts(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	out := newTestClient(ts.URL, "sk-test").Complete(context.Background(), "s", "u", 0.1)
	assert.Equal(t, StatusFailed, out.Status)
	assert.Empty(t, out.Text)
	assert.Error(t, out.Err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_EmptyChoicesIsRetried(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer ts.Close()

	out := newTestClient(ts.URL, "sk-test").Complete(context.Background(), "s", "u", 0.1)
	assert.Equal(t, StatusFailed, out.Status)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_CancelledContext(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		chatReply(w, "ok")
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := newTestClient(ts.URL, "sk-test").Complete(ctx, "s", "u", 0.1)
	assert.Equal(t, StatusFailed, out.Status)
	assert.ErrorIs(t, out.Err, context.Canceled)
}

// ── ExtractJSON ──

func TestExtractJSON_WholeText(t *testing.T) {
	obj := ExtractJSON(`{"confidence": 0.8, "reason": "颜色一致"}`)
	assert.Equal(t, 0.8, obj["confidence"])
	assert.Equal(t, "颜色一致", obj["reason"])
}

func TestExtractJSON_FencedBlock(t *testing.T) {
	text := "好的，结果如下：\n```json\n{\"confidence\": \"0.8\", \"reason\": \"match\"}\n```\n以上。"
	obj := ExtractJSON(text)
	assert.Equal(t, "0.8", obj["confidence"])
	assert.Equal(t, "match", obj["reason"])
}

func TestExtractJSON_InlineFence(t *testing.T) {
	obj := ExtractJSON("```json {\"confidence\": \"0.8\", \"reason\": \"match\"} ```")
	assert.Equal(t, "0.8", obj["confidence"])
}

func TestExtractJSON_BraceSubstring(t *testing.T) {
	obj := ExtractJSON(`判断：{"item_name": "钱包", "color": "黑色"} 希望有帮助`)
	assert.Equal(t, "钱包", obj["item_name"])
	assert.Equal(t, "黑色", obj["color"])
}

func TestExtractJSON_Failures(t *testing.T) {
	for _, text := range []string{"", "   ", "no json here", "{broken", "[1, 2, 3]", "null", "```json\n{oops}\n```"} {
		obj := ExtractJSON(text)
		assert.NotNil(t, obj, "text=%q", text)
		assert.Empty(t, obj, "text=%q", text)
	}
}
