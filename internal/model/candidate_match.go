package model

import (
	"time"

	"gorm.io/gorm"
)

// ── 匹配状态与方法 ──

const (
	MatchStatusPending  = "pending"
	MatchStatusAccepted = "accepted"
	MatchStatusRejected = "rejected"

	MatchMethodRerank        = "retrieval+rerank" // 检索 + 大模型重排
	MatchMethodRetrievalOnly = "retrieval-only"   // 检索 + 规则打分
)

// CandidateMatch 候选匹配表 — 对应 candidate_matches
// LostPostID 恒为寻物帖，FoundPostID 恒为招领帖；(lost, found) 唯一
type CandidateMatch struct {
	MatchID          string     `gorm:"type:uuid;primaryKey"                                       json:"match_id"`
	LostPostID       string     `gorm:"type:uuid;not null;uniqueIndex:uk_match_pair,priority:1"    json:"lost_post_id"`
	FoundPostID      string     `gorm:"type:uuid;not null;uniqueIndex:uk_match_pair,priority:2"    json:"found_post_id"`
	Score            float64    `gorm:"not null"                                                   json:"score"`
	Method           string     `gorm:"type:varchar(50);not null"                                  json:"method"`
	RerankConfidence *float64   `                                                                  json:"rerank_confidence"`
	RerankReason     string     `gorm:"type:text;not null"                                         json:"rerank_reason"`
	Status           string     `gorm:"type:varchar(20);not null;default:'pending';index"          json:"status"`
	ReviewedAt       *time.Time `                                                                  json:"reviewed_at,omitempty"`

	LostPost  *Post `gorm:"foreignKey:LostPostID;references:PostID"  json:"lost_post,omitempty"`
	FoundPost *Post `gorm:"foreignKey:FoundPostID;references:PostID" json:"found_post,omitempty"`
	BaseModel
}

// TableName 指定表名
func (CandidateMatch) TableName() string { return "candidate_matches" }

// BeforeCreate 生成主键
func (m *CandidateMatch) BeforeCreate(_ *gorm.DB) error {
	if m.MatchID == "" {
		m.MatchID = newID()
	}
	return nil
}

// Confidence 置信度，未重排时为 0
func (m *CandidateMatch) Confidence() float64 {
	if m.RerankConfidence == nil {
		return 0
	}
	return *m.RerankConfidence
}
