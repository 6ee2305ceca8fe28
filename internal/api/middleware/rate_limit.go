package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lost-found/backend/pkg/redis"
	"lost-found/backend/pkg/response"
)

// rateChecker 滑动窗口计数器，由 *redis.Client 实现
type rateChecker interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit 基于 Redis 滑动窗口的速率限制中间件，按 (客户端 IP, 路由) 计数
// 用于发帖接口：每次发帖都会同步执行一次匹配流水线
// rdb 为 nil 时降级放行（与 JWTAuth 策略一致）
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return limitBy(checkerOf(rdb), limit, window, ipKey)
}

// UserRateLimit 按 (用户, 路由, 路径参数 id) 计数，用于手动触发匹配
// 必须挂在 JWTAuth 之后
func UserRateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return limitBy(checkerOf(rdb), limit, window, userKey)
}

func ipKey(c *gin.Context) string {
	return fmt.Sprintf("rate_limit:%s:%s", c.ClientIP(), c.FullPath())
}

func userKey(c *gin.Context) string {
	return fmt.Sprintf("rate_limit:user:%s:%s:%s", c.GetString("user_id"), c.FullPath(), c.Param("id"))
}

// checkerOf 避免把 nil 指针包装成非 nil 接口
func checkerOf(rdb *redis.Client) rateChecker {
	if rdb == nil {
		return nil
	}
	return rdb
}

func limitBy(checker rateChecker, limit int, window time.Duration, keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if checker == nil || limit <= 0 {
			c.Next()
			return
		}

		allowed, err := checker.CheckRateLimit(c.Request.Context(), keyFn(c), limit, window)
		if err != nil {
			// Redis 出错时降级放行
			c.Next()
			return
		}

		if !allowed {
			response.Error(c, http.StatusTooManyRequests, 10004, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}
