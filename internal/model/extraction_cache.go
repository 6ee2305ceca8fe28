package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ── 抽取字段长度上限（写入时截断） ──

const (
	ItemNameMaxLen       = 100
	ColorMaxLen          = 50
	BrandMaxLen          = 100
	LocationDetailMaxLen = 200
	TimeInfoMaxLen       = 100
)

// ExtractionCache 实体抽取缓存表 — 对应 extraction_caches（与 posts 1:1）
type ExtractionCache struct {
	ExtractionID   string         `gorm:"type:uuid;primaryKey"          json:"extraction_id"`
	PostID         string         `gorm:"type:uuid;not null;uniqueIndex" json:"post_id"`
	ItemName       string         `gorm:"type:varchar(100);not null"    json:"item_name"`
	Color          string         `gorm:"type:varchar(50);not null"     json:"color"`
	Brand          string         `gorm:"type:varchar(100);not null"    json:"brand"`
	Features       string         `gorm:"type:text;not null"            json:"features"`
	LocationDetail string         `gorm:"type:varchar(200);not null"    json:"location_detail"`
	TimeInfo       string         `gorm:"type:varchar(100);not null"    json:"time_info"`
	Source         string         `gorm:"type:varchar(20);not null"     json:"source"` // llm | fallback
	RawJSON        datatypes.JSON `gorm:"column:raw_json"               json:"raw_json"`
	BaseModel
}

// TableName 指定表名
func (ExtractionCache) TableName() string { return "extraction_caches" }

// BeforeCreate 生成主键
func (e *ExtractionCache) BeforeCreate(_ *gorm.DB) error {
	if e.ExtractionID == "" {
		e.ExtractionID = newID()
	}
	return nil
}
