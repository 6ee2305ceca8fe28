package service

import (
	"context"
	"sync"
	"time"

	pkgerrors "lost-found/backend/pkg/errors"
	"lost-found/backend/pkg/redis"
)

// Locker 按键互斥，TryLock 不阻塞
// 锁已被持有时返回 pkgerrors.ErrLockNotAcquired
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// NewLocker 配置了 Redis 时使用分布式锁，否则退化为进程内锁
func NewLocker(rdb *redis.Client) Locker {
	if rdb != nil {
		return rdb
	}
	return NewLocalLocker()
}

// LocalLocker 进程内的键锁，单实例部署时使用
type LocalLocker struct {
	held sync.Map // key → struct{}
}

// NewLocalLocker 创建进程内锁
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{}
}

// TryLock ttl 在进程内不生效，锁随释放函数解除
func (l *LocalLocker) TryLock(_ context.Context, key string, _ time.Duration) (func(), error) {
	if _, loaded := l.held.LoadOrStore(key, struct{}{}); loaded {
		return nil, pkgerrors.ErrLockNotAcquired
	}
	var once sync.Once
	return func() {
		once.Do(func() { l.held.Delete(key) })
	}, nil
}
