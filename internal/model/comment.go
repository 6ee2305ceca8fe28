package model

import "gorm.io/gorm"

// Comment 帖子评论表 — 对应 comments
// 帖子删除时一并删除
type Comment struct {
	CommentID string `gorm:"type:uuid;primaryKey"       json:"comment_id"`
	PostID    string `gorm:"type:uuid;not null;index"   json:"post_id"`
	UserID    string `gorm:"type:uuid;not null"         json:"user_id"`
	Content   string `gorm:"type:text;not null"         json:"content"`

	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Comment) TableName() string { return "comments" }

// BeforeCreate 生成主键
func (c *Comment) BeforeCreate(_ *gorm.DB) error {
	if c.CommentID == "" {
		c.CommentID = newID()
	}
	return nil
}
