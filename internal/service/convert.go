package service

import (
	"math"
	"time"

	"lost-found/backend/internal/dto"
	"lost-found/backend/internal/model"
)

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func toPostResponse(p *model.Post) dto.PostResponse {
	resp := dto.PostResponse{
		ID:          p.PostID,
		Direction:   p.Direction,
		TypeLabel:   model.DirectionLabel(p.Direction),
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Location:    p.Location,
		Zone:        p.Zone(),
		Status:      p.Status,
		ImageURL:    p.ImageURL,
		CreatedAt:   formatTime(p.CreatedAt),
	}
	if p.Owner != nil {
		resp.Owner = &dto.UserBrief{ID: p.Owner.UserID, Name: p.Owner.Name}
	}
	return resp
}

func toMatchPostBrief(p *model.Post) *dto.MatchPostBrief {
	if p == nil {
		return nil
	}
	return &dto.MatchPostBrief{
		ID:       p.PostID,
		Title:    p.Title,
		Category: p.Category,
		Location: p.Location,
		UserID:   p.UserID,
	}
}

// confidencePct 置信度百分比（四舍五入）
func confidencePct(m *model.CandidateMatch) int {
	return int(math.Round(m.Confidence() * 100))
}

func toMatchResponse(m *model.CandidateMatch) dto.MatchResponse {
	resp := dto.MatchResponse{
		ID:               m.MatchID,
		LostPost:         toMatchPostBrief(m.LostPost),
		FoundPost:        toMatchPostBrief(m.FoundPost),
		Score:            m.Score,
		Method:           m.Method,
		RerankConfidence: m.RerankConfidence,
		ConfidencePct:    confidencePct(m),
		RerankReason:     m.RerankReason,
		Status:           m.Status,
		CreatedAt:        formatTime(m.CreatedAt),
	}
	if m.ReviewedAt != nil {
		s := formatTime(*m.ReviewedAt)
		resp.ReviewedAt = &s
	}
	return resp
}

func toMatchResponses(matches []model.CandidateMatch) []dto.MatchResponse {
	out := make([]dto.MatchResponse, 0, len(matches))
	for i := range matches {
		out = append(out, toMatchResponse(&matches[i]))
	}
	return out
}

func toNotificationResponse(n *model.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:        n.NotificationID,
		MatchID:   n.MatchID,
		Type:      n.Type,
		Title:     n.Title,
		Content:   n.Content,
		IsRead:    n.IsRead,
		CreatedAt: formatTime(n.CreatedAt),
	}
}

func toCommentResponse(c *model.Comment) dto.CommentResponse {
	resp := dto.CommentResponse{
		ID:        c.CommentID,
		PostID:    c.PostID,
		Content:   c.Content,
		CreatedAt: formatTime(c.CreatedAt),
	}
	if c.User != nil {
		resp.Author = &dto.UserBrief{ID: c.User.UserID, Name: c.User.Name}
	}
	return resp
}

func toCommentResponses(list []model.Comment) []dto.CommentResponse {
	out := make([]dto.CommentResponse, 0, len(list))
	for i := range list {
		out = append(out, toCommentResponse(&list[i]))
	}
	return out
}
