package tally

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// 定义与导出缓存相关的Redis键名
const (
	// VersionKey 是一个Redis String (计数器)，每次写入投票或品种后加一
	VersionKey = "coffee:export:version"
	// dataKeyPrefix 后接版本号，存放该版本下导出数据的JSON
	dataKeyPrefix = "coffee:export:"

	defaultTTL = 10 * time.Minute
)

// Source 是导出数据的真实来源 (投票账本)
type Source interface {
	Export(ctx context.Context) (map[string]map[string]string, error)
}

// HealthReporter 报告Redis当前是否可用
type HealthReporter interface {
	IsHealthy() bool
}

// Cache 是带版本号的导出缓存。
// 写入方只递增版本号；读取方按读到的版本号存取数据，
// 所以迟到的旧数据只会落在已经没人读的旧版本键上。
type Cache struct {
	rdb    *redis.Client
	source Source
	health HealthReporter
	ttl    time.Duration

	group singleflight.Group

	// pendingBump 表示有一次失效操作未能写入Redis，恢复之前不能信任缓存
	pendingBump atomic.Bool
}

// NewCache 创建导出缓存。rdb 为 nil 时缓存被停用，所有读取直接落到 source。
func NewCache(rdb *redis.Client, source Source, health HealthReporter) *Cache {
	return &Cache{
		rdb:    rdb,
		source: source,
		health: health,
		ttl:    defaultTTL,
	}
}

func (c *Cache) enabled() bool {
	return c.rdb != nil && (c.health == nil || c.health.IsHealthy())
}

func dataKey(version int64) string {
	return dataKeyPrefix + strconv.FormatInt(version, 10)
}

// Invalidate 让当前缓存的导出数据失效。失败时只记录日志并推迟到下一次读取。
func (c *Cache) Invalidate(ctx context.Context) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Incr(ctx, VersionKey).Err(); err != nil {
		c.pendingBump.Store(true)
		fmt.Printf("警告: 导出缓存失效失败，将在Redis恢复后重试: %v\n", err)
	}
}

// flushPending 补做之前失败的失效操作，成功返回 true
func (c *Cache) flushPending(ctx context.Context) bool {
	if !c.pendingBump.Load() {
		return true
	}
	if err := c.rdb.Incr(ctx, VersionKey).Err(); err != nil {
		return false
	}
	c.pendingBump.Store(false)
	return true
}

// Export 返回导出数据，优先读取缓存。
// 返回的映射可能被多个调用方共享，调用方不得修改。
func (c *Cache) Export(ctx context.Context) (map[string]map[string]string, error) {
	if !c.enabled() || !c.flushPending(ctx) {
		return c.source.Export(ctx)
	}

	// 1. 读取当前版本号
	version, err := c.rdb.Get(ctx, VersionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		fmt.Printf("警告: 读取导出缓存版本失败，直接查询数据库: %v\n", err)
		return c.source.Export(ctx)
	}
	key := dataKey(version)

	// 2. 命中缓存则直接返回
	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached map[string]map[string]string
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return cached, nil
		}
		fmt.Printf("警告: 导出缓存 %s 内容损坏，将重新生成\n", key)
	case !errors.Is(err, redis.Nil):
		fmt.Printf("警告: 读取导出缓存失败，直接查询数据库: %v\n", err)
		return c.source.Export(ctx)
	}

	// 3. 未命中时合并同一版本的并发重算
	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		export, err := c.source.Export(ctx)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(export)
		if err == nil {
			err = c.rdb.Set(ctx, key, data, c.ttl).Err()
		}
		if err != nil {
			fmt.Printf("警告: 写入导出缓存失败: %v\n", err)
		}
		return export, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(map[string]map[string]string), nil
}
