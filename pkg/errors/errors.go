package errors

import "errors"

// ErrLockNotAcquired 分布式锁已被其他流程持有
var ErrLockNotAcquired = errors.New("资源正在被其他流程处理，请稍后再试")
