package model

import (
	"strings"

	"gorm.io/gorm"
)

// ── 帖子方向与状态 ──

const (
	DirectionLost  = "lost"  // 寻物启事
	DirectionFound = "found" // 失物招领

	PostStatusOpen     = "open"     // 未完成
	PostStatusResolved = "resolved" // 已完成
)

// Categories 物品类型（封闭集合）
var Categories = []string{"手机", "数码产品", "鞋服包饰", "钱包", "书籍", "证件", "钥匙", "快递", "其他"}

// Zones 校园区域及其主要地标，位置字段的首个词约定为区域
var Zones = []Zone{
	{Name: "A区", Landmarks: []string{"食堂", "宿舍（南区）", "健康与环境工程学院"}},
	{Name: "B区", Landmarks: []string{"食堂", "创意设计学院", "外国语学院"}},
	{Name: "C区", Landmarks: []string{"湖景食堂", "大数据与互联网学院", "图书馆"}},
	{Name: "D区", Landmarks: []string{"城市交通与物流学院", "体育馆", "中德智能制造学院"}},
	{Name: "E区", Landmarks: []string{"食堂", "宿舍（北区）", "校医院"}},
	{Name: "F区", Landmarks: []string{"鑫福佳", "地铁站"}},
	{Name: "校外", Landmarks: []string{"竹韵食堂", "临时运动场", "社康中心"}},
}

// Zone 校园区域
type Zone struct {
	Name      string   `json:"name"`
	Landmarks []string `json:"landmarks"`
}

// IsValidCategory 判断物品类型是否在封闭集合内
func IsValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// DirectionLabel 方向的中文展示名
func DirectionLabel(direction string) string {
	if direction == DirectionLost {
		return "寻物启事"
	}
	return "失物招领"
}

// Post 失物/招领帖子表 — 对应 posts
// 方向与状态只由发帖/编辑流程修改，匹配流程只读
type Post struct {
	PostID      string  `gorm:"type:uuid;primaryKey"                     json:"post_id"`
	UserID      string  `gorm:"type:uuid;not null;index"                 json:"user_id"`
	Direction   string  `gorm:"type:varchar(10);not null"                json:"direction"` // lost | found
	Title       string  `gorm:"type:varchar(100);not null"               json:"title"`
	Description string  `gorm:"type:text;not null"                       json:"description"`
	Category    string  `gorm:"type:varchar(50);not null"                json:"category"`
	Location    string  `gorm:"type:varchar(500);not null"               json:"location"`
	Status      string  `gorm:"type:varchar(20);not null;default:'open'" json:"status"` // open | resolved
	ImageURL    *string `gorm:"type:varchar(500)"                        json:"image_url,omitempty"`

	Owner *User `gorm:"foreignKey:UserID;references:UserID" json:"owner,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Post) TableName() string { return "posts" }

// BeforeCreate 生成主键
func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.PostID == "" {
		p.PostID = newID()
	}
	return nil
}

// IsLost 是否为寻物帖
func (p *Post) IsLost() bool { return p.Direction == DirectionLost }

// OppositeDirection 匹配时候选池的方向
func (p *Post) OppositeDirection() string {
	if p.IsLost() {
		return DirectionFound
	}
	return DirectionLost
}

// Zone 位置字段的首个词，如 "C区 图书馆" → "C区"
func (p *Post) Zone() string {
	fields := strings.Fields(p.Location)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
