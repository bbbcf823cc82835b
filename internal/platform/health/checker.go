package health

import (
	"context"
	"fmt"
	"time"

	"github.com/SlpAus/coffee-vote-backend/pkg/lifecycle"
	"github.com/redis/go-redis/v9"
)

const (
	checkInterval = 5 * time.Second
	pingTimeout   = 2 * time.Second
)

// Pinger 是健康检查需要的Redis能力
type Pinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// Checker 定期Ping Redis并更新 Status
type Checker struct {
	rdb    Pinger
	status *Status
}

func NewChecker(rdb Pinger, status *Status) *Checker {
	return &Checker{rdb: rdb, status: status}
}

// PerformCheck 执行一次健康检查
func (c *Checker) PerformCheck(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	err := c.rdb.Ping(pingCtx).Err()
	if err != nil && ctx.Err() != nil {
		// 停机过程中被取消，不算作Redis故障
		return
	}
	c.status.Assess(err == nil)
}

// Run 阻塞式地定期执行健康检查，直到生命周期句柄发出停机信号
func (c *Checker) Run(handle *lifecycle.Handle) {
	defer handle.Close()
	fmt.Println("Redis健康检查器已启动。")

	for {
		if err := handle.Sleep(checkInterval); err != nil {
			fmt.Println("Redis健康检查器: 收到停机信号，正在关闭...")
			return
		}
		c.PerformCheck(handle.Ctx())
	}
}
