package service

import (
	"context"
	"errors"
	"testing"

	pkgerrors "lost-found/backend/pkg/errors"
)

func TestLocalLocker(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	release, err := l.TryLock(ctx, "k", 0)
	if err != nil {
		t.Fatalf("首次加锁失败: %v", err)
	}
	if _, err := l.TryLock(ctx, "k", 0); !errors.Is(err, pkgerrors.ErrLockNotAcquired) {
		t.Errorf("重复加锁期望 ErrLockNotAcquired，实际: %v", err)
	}
	if _, err := l.TryLock(ctx, "other", 0); err != nil {
		t.Errorf("不同键应互不影响: %v", err)
	}

	release()
	release() // 重复释放无副作用
	if _, err := l.TryLock(ctx, "k", 0); err != nil {
		t.Errorf("释放后应可再次加锁: %v", err)
	}
}

func TestNewLocker_FallsBackToLocal(t *testing.T) {
	if _, ok := NewLocker(nil).(*LocalLocker); !ok {
		t.Error("未配置 Redis 时应使用进程内锁")
	}
}
