package config

import (
	"strings"
	"testing"
	"time"
)

// 无配置文件时仅依赖默认值与环境变量
func TestLoad_EnvOnly(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LF_AUTH_JWT_SECRET", "env-secret-0123456789")
	t.Setenv("LF_MATCHING_CREATE_RATE_LIMIT", "3")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}
	if cfg.Auth.JWTSecret != "env-secret-0123456789" {
		t.Errorf("期望从环境变量读取 jwt_secret，实际=%q", cfg.Auth.JWTSecret)
	}
	if cfg.Matching.CreateRateLimit != 3 {
		t.Errorf("期望 CreateRateLimit=3，实际=%d", cfg.Matching.CreateRateLimit)
	}
	if cfg.Matching.CreateRateWindow != time.Minute {
		t.Errorf("期望 CreateRateWindow=1m，实际=%v", cfg.Matching.CreateRateWindow)
	}
	if cfg.Matching.TopK != 10 || cfg.LLM.MaxAttempts != 3 {
		t.Errorf("默认值未生效: top_k=%d max_attempts=%d", cfg.Matching.TopK, cfg.LLM.MaxAttempts)
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LF_AUTH_JWT_SECRET", "")

	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), "jwt_secret") {
		t.Fatalf("期望 jwt_secret 校验错误，实际: %v", err)
	}
}
