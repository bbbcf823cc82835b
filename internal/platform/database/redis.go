package database

import (
	"context"
	"fmt"
	"time"

	"github.com/SlpAus/coffee-vote-backend/internal/platform/config"
	"github.com/redis/go-redis/v9"
)

const pingTimeout = 2 * time.Second

// InitRedis 初始化与Redis数据库的连接
// 使用从配置文件加载的参数，并用Ping命令测试连接是否成功。
// Ping失败时仍然返回客户端，调用方可以在降级状态下启动并等待健康检查器发现恢复。
func InitRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return rdb, fmt.Errorf("无法连接到Redis: %w", err)
	}

	fmt.Println("Redis 连接成功！")
	return rdb, nil
}
