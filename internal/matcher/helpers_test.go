package matcher

import (
	"context"
	"sync"
	"time"

	"lost-found/backend/internal/model"
	"lost-found/backend/pkg/llm"
)

// scriptedGateway 按顺序返回预设结果的网关
type scriptedGateway struct {
	mu        sync.Mutex
	available bool
	replies   []llm.Outcome
	calls     int
	temps     []float64
	prompts   []string
}

func (g *scriptedGateway) Available() bool { return g.available }

func (g *scriptedGateway) Complete(_ context.Context, _, userPrompt string, temperature float64) llm.Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.temps = append(g.temps, temperature)
	g.prompts = append(g.prompts, userPrompt)
	if len(g.replies) == 0 {
		return llm.Outcome{Status: llm.StatusFailed}
	}
	out := g.replies[0]
	if len(g.replies) > 1 {
		g.replies = g.replies[1:]
	}
	return out
}

func okText(text string) llm.Outcome {
	return llm.Outcome{Status: llm.StatusOK, Text: text, Attempts: 1}
}

func newPost(id, direction, title, desc, category, location string) *model.Post {
	return &model.Post{
		PostID:      id,
		UserID:      "user-" + id,
		Direction:   direction,
		Title:       title,
		Description: desc,
		Category:    category,
		Location:    location,
		Status:      model.PostStatusOpen,
		BaseModel: model.BaseModel{
			CreatedAt: time.Date(2025, 3, 18, 9, 30, 0, 0, time.UTC),
		},
	}
}
