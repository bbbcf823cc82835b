package lifecycle

import (
	"context"
	"sync"
	"time"
)

// Handle 是分发给每个后台服务的生命周期句柄。
// 服务在退出前必须调用一次 Close，通常通过 defer。
type Handle struct {
	name      string
	ctx       context.Context
	closeOnce sync.Once
	onClose   func()
}

// Name 返回服务注册时使用的名字
func (h *Handle) Name() string {
	return h.name
}

// Ctx 返回随停机信号取消的上下文
func (h *Handle) Ctx() context.Context {
	return h.ctx
}

// Done 在管理器广播停机信号时关闭
func (h *Handle) Done() <-chan struct{} {
	return h.ctx.Done()
}

// Err 在 Done 关闭后返回取消原因
func (h *Handle) Err() error {
	return h.ctx.Err()
}

// Close 通知管理器该服务已经退出，重复调用是安全的
func (h *Handle) Close() {
	h.closeOnce.Do(h.onClose)
}

// Sleep 暂停指定的时长，如果期间收到停机信号则提前返回错误。
// 后台循环应该用它代替 time.Sleep。
func (h *Handle) Sleep(duration time.Duration) error {
	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-h.Done():
		return h.Err()
	case <-timer.C:
		return nil
	}
}
