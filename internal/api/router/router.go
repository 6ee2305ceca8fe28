package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lost-found/backend/config"
	"lost-found/backend/internal/api/handler"
	"lost-found/backend/internal/api/middleware"
	"lost-found/backend/pkg/jwt"
	"lost-found/backend/pkg/redis"
)

// maxBodyBytes 请求体上限（帖子描述最长 5000 字）
const maxBodyBytes = 1 << 20

// HealthChecks /health 使用的依赖检查
type HealthChecks struct {
	DB           func(ctx context.Context) error
	LLMAvailable func() bool
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, checks HealthChecks, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		dbOK := checks.DB == nil || checks.DB(ctx) == nil
		llmOK := checks.LLMAvailable != nil && checks.LLMAvailable()

		status, code := "ok", http.StatusOK
		if !dbOK {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":        status,
			"database":      dbOK,
			"llm_available": llmOK,
			"redis_enabled": rdb != nil,
		})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	authorized := v1.Group("")
	authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
	{
		authorized.GET("/options", h.Post.GetOptions)

		// 帖子模块
		posts := authorized.Group("/posts")
		{
			posts.GET("", h.Post.SearchPosts)
			posts.POST("",
				middleware.RateLimit(rdb, cfg.Matching.CreateRateLimit, cfg.Matching.CreateRateWindow),
				h.Post.CreatePost,
			)
			posts.GET("/:id", h.Post.GetPost)
			posts.DELETE("/:id", h.Post.DeletePost)
			posts.GET("/:id/comments", h.Comment.ListComments)
			posts.POST("/:id/comments", h.Comment.CreateComment)
			posts.GET("/:id/matches", h.Match.ListPostMatches)
			posts.POST("/:id/match",
				middleware.UserRateLimit(rdb, cfg.Matching.TriggerRateLimit, cfg.Matching.TriggerRateWindow),
				h.Match.TriggerMatch,
			)
		}

		// 通知模块
		notifications := authorized.Group("/notifications")
		{
			notifications.GET("", h.Notification.ListNotifications)
			notifications.PUT("/read-all", h.Notification.MarkAllRead)
			notifications.PUT("/:id/read", h.Notification.MarkRead)
		}

		// 审核模块（仅管理员）
		admin := authorized.Group("/admin")
		admin.Use(middleware.RoleAuth("admin"))
		{
			admin.GET("/matches", h.Admin.ListMatches)
			admin.GET("/matches/export", h.Export.ExportMatches)
			admin.PUT("/matches/:id/accept", h.Admin.AcceptMatch)
			admin.DELETE("/matches/:id", h.Admin.RejectMatch)
		}
	}

	return r
}
