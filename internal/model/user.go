package model

import "gorm.io/gorm"

// ── 用户角色 ──

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// User 用户表 — 对应 users
// 账号由外部认证服务维护，匹配流程只读取 ID 与展示名
type User struct {
	UserID string  `gorm:"type:uuid;primaryKey"                       json:"user_id"`
	Name   string  `gorm:"type:varchar(100);not null"                 json:"name"`
	Email  *string `gorm:"type:varchar(100);uniqueIndex"              json:"email,omitempty"`
	Role   string  `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// BeforeCreate 生成主键
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.UserID == "" {
		u.UserID = newID()
	}
	return nil
}
