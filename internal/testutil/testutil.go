// Package testutil 提供仓储与服务测试共用的内存数据库和数据夹具
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"lost-found/backend/internal/model"
)

// DB 为每个测试创建独立的内存 SQLite 库并完成表结构迁移
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	name := strings.ReplaceAll(uuid.New().String(), "-", "")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("打开测试数据库失败: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("获取连接池失败: %v", err)
	}
	// 内存库只在单连接内共享，同时避免 SQLite 写锁冲突
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := AutoMigrate(db); err != nil {
		tb.Fatalf("AutoMigrate 失败: %v", err)
	}
	return db
}

// AutoMigrate 迁移全部业务表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Post{},
		&model.ExtractionCache{},
		&model.CandidateMatch{},
		&model.Notification{},
		&model.Comment{},
	)
}
