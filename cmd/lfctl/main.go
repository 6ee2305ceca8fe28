// Package main 运维命令行：迁移、重新匹配、信息抽取
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"lost-found/backend/config"
	"lost-found/backend/internal/repository"
	"lost-found/backend/internal/service"
	"lost-found/backend/pkg/database"
	"lost-found/backend/pkg/llm"
	applogger "lost-found/backend/pkg/logger"
	"lost-found/backend/pkg/redis"
)

var (
	okMark   = color.New(color.FgGreen, color.Bold).SprintFunc()
	warnMark = color.New(color.FgYellow, color.Bold).SprintFunc()
	errMark  = color.New(color.FgRed, color.Bold).SprintFunc()
	label    = color.New(color.FgCyan).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:           "lfctl",
	Short:         "失物招领后端运维工具",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "配置文件路径（默认查找 ./config/config.yaml）")
}

// app 子命令共享的运行时依赖
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	rdb    *redis.Client
	repo   *repository.Repository
	svc    *service.Service
}

func bootstrap(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, err
	}

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return nil, err
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		if rdb, err = redis.NewClient(&cfg.Redis, logger); err != nil {
			logger.Warn("Redis 连接失败，使用进程内锁", zap.Error(err))
			rdb = nil
		}
	}

	repo := repository.NewRepository(db)
	gateway := llm.NewClient(&cfg.LLM, logger)
	return &app{
		cfg:    cfg,
		logger: logger,
		db:     db,
		rdb:    rdb,
		repo:   repo,
		svc:    service.NewService(cfg, repo, gateway, service.NewLocker(rdb), logger),
	}, nil
}

func (a *app) close() {
	if sqlDB, _ := a.db.DB(); sqlDB != nil {
		sqlDB.Close()
	}
	if a.rdb != nil {
		a.rdb.Close()
	}
	a.logger.Sync()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errMark("✗"), err)
		os.Exit(1)
	}
}
