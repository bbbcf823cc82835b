package startup

import (
	"context"
	"errors"
	"fmt"

	"github.com/SlpAus/coffee-vote-backend/internal/platform/config"
	"github.com/SlpAus/coffee-vote-backend/internal/platform/database"
	"github.com/SlpAus/coffee-vote-backend/internal/platform/health"
	"github.com/SlpAus/coffee-vote-backend/internal/tally"
	"github.com/SlpAus/coffee-vote-backend/internal/variant"
	"github.com/SlpAus/coffee-vote-backend/internal/vote"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// App 持有应用运行期间的所有资源
type App struct {
	Config *config.Config

	// DB 在内存模式下为 nil
	DB *gorm.DB
	// Redis 在未启用缓存时为 nil
	Redis *redis.Client

	Status   *health.Status
	Registry *variant.Registry
	Ledger   *vote.Ledger
	Cache    *tally.Cache
}

// InitializeApplication 是应用启动时执行的总入口
func InitializeApplication(ctx context.Context, cfg *config.Config) (*App, error) {
	fmt.Println("开始应用初始化...")
	app := &App{Config: cfg}

	// 1. 存储层
	variantRepo, voteRepo, err := app.openRepositories(cfg.Storage)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Registry = variant.NewRegistry(variantRepo)
	app.Ledger = vote.NewLedger(app.Registry, voteRepo)

	// 2. 缓存层。Redis 连接失败不阻止启动，以降级状态运行
	app.Status = health.NewStatus(cfg.Redis.Enabled)
	if cfg.Redis.Enabled {
		rdb, err := database.InitRedis(ctx, cfg.Redis)
		if err != nil {
			fmt.Printf("警告: %v，导出缓存以降级状态启动\n", err)
			app.Status.Assess(false)
		}
		app.Redis = rdb
	}
	app.Cache = tally.NewCache(app.Redis, app.Ledger, app.Status)
	app.Registry.SetNotifier(app.Cache)
	app.Ledger.SetNotifier(app.Cache)

	// 3. 初始品种
	if len(cfg.Storage.SeedVariants) > 0 {
		created, err := app.Registry.Seed(ctx, cfg.Storage.SeedVariants)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("无法写入初始品种: %w", err)
		}
		fmt.Printf("初始品种写入完成，新增 %d 个。\n", created)
	}

	fmt.Println("应用初始化完成！")
	return app, nil
}

func (a *App) openRepositories(cfg config.StorageConfig) (variant.Repository, vote.Repository, error) {
	if cfg.Driver == config.DriverMemory {
		fmt.Println("使用内存存储，重启后数据不会保留。")
		return variant.NewMemoryRepository(), vote.NewMemoryRepository(), nil
	}

	db, err := database.OpenDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	a.DB = db

	// 投票表引用品种表，必须先迁移品种
	variantRepo := variant.NewGormRepository(db)
	if err := variantRepo.Migrate(); err != nil {
		return nil, nil, err
	}
	voteRepo := vote.NewGormRepository(db)
	if err := voteRepo.Migrate(); err != nil {
		return nil, nil, err
	}
	return variantRepo, voteRepo, nil
}

// Close 释放数据库和Redis连接，可以重复调用
func (a *App) Close() error {
	var errs []error
	if a.DB != nil {
		if err := database.CloseDB(a.DB); err != nil {
			errs = append(errs, fmt.Errorf("关闭数据库失败: %w", err))
		}
		a.DB = nil
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("关闭Redis失败: %w", err))
		}
		a.Redis = nil
	}
	return errors.Join(errs...)
}
