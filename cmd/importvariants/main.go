package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/SlpAus/coffee-vote-backend/internal/platform/config"
	"github.com/SlpAus/coffee-vote-backend/internal/platform/startup"
)

var errMemoryDriver = errors.New("内存存储不能导入品种，请配置 sqlite 或 postgres")

// 从JSON文件批量导入咖啡品种，文件内容是字符串数组，例如 ["Espresso", "Latte"]。
// 已存在的品种会被跳过，可以重复执行。
func main() {
	file := flag.String("file", "variants.json", "品种列表的JSON文件")
	flag.Parse()

	names, err := readNames(*file)
	if err != nil {
		log.Fatalf("读取品种列表失败: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("无法加载配置: %v", err)
	}

	created, err := importVariants(context.Background(), cfg, names)
	if err != nil {
		log.Fatalf("导入中断，已新增 %d 个品种: %v", created, err)
	}
	fmt.Printf("导入完成: 共 %d 个，新增 %d 个，跳过 %d 个。\n", len(names), created, len(names)-created)
}

// importVariants 通过与服务器相同的启动流程写入品种。
// Redis 保持配置中的设置，每个新品种都会让正在运行的服务器的导出缓存失效。
func importVariants(ctx context.Context, cfg *config.Config, names []string) (int, error) {
	if cfg.Storage.Driver == config.DriverMemory {
		return 0, errMemoryDriver
	}
	// 不重复写入配置里的初始品种
	cfg.Storage.SeedVariants = nil

	app, err := startup.InitializeApplication(ctx, cfg)
	if err != nil {
		return 0, fmt.Errorf("应用初始化失败: %w", err)
	}

	created, seedErr := app.Registry.Seed(ctx, names)
	if app.Redis != nil && !app.Status.IsHealthy() {
		fmt.Println("警告: Redis不可用，正在运行的服务器可能在缓存过期前看不到新品种。")
	}
	if err := app.Close(); err != nil {
		fmt.Printf("释放资源失败: %v\n", err)
	}
	return created, seedErr
}

func readNames(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("文件 %s 不是字符串数组: %w", path, err)
	}
	return names, nil
}
