package model

import "gorm.io/gorm"

// ── 通知类型 ──

const (
	NotificationTypeAuto      = "auto"      // 高置信度自动通知
	NotificationTypeConfirmed = "confirmed" // 人工审核确认通知
)

// Notification 通知消息表 — 对应 notifications
type Notification struct {
	NotificationID string `gorm:"type:uuid;primaryKey"                                              json:"notification_id"`
	UserID         string `gorm:"type:uuid;not null;index:idx_notifications_user_match,priority:1" json:"user_id"`
	MatchID        string `gorm:"type:uuid;not null;index:idx_notifications_user_match,priority:2" json:"match_id"`
	Type           string `gorm:"type:varchar(20);not null"                                         json:"type"`
	Title          string `gorm:"type:varchar(200);not null"                                        json:"title"`
	Content        string `gorm:"type:text;not null"                                                json:"content"`
	IsRead         bool   `gorm:"not null;default:false"                                            json:"is_read"`

	Match *CandidateMatch `gorm:"foreignKey:MatchID;references:MatchID;constraint:OnDelete:CASCADE" json:"-"`
	BaseModel
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }

// BeforeCreate 生成主键
func (n *Notification) BeforeCreate(_ *gorm.DB) error {
	if n.NotificationID == "" {
		n.NotificationID = newID()
	}
	return nil
}
