package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/SlpAus/coffee-vote-backend/internal/api"
	"github.com/SlpAus/coffee-vote-backend/internal/platform/config"
	"github.com/SlpAus/coffee-vote-backend/internal/platform/health"
	"github.com/SlpAus/coffee-vote-backend/internal/platform/shutdown"
	"github.com/SlpAus/coffee-vote-backend/internal/platform/startup"
	"github.com/SlpAus/coffee-vote-backend/internal/variant"
	"github.com/SlpAus/coffee-vote-backend/internal/vote"
	"github.com/SlpAus/coffee-vote-backend/internal/web"
	"github.com/SlpAus/coffee-vote-backend/pkg/lifecycle"
	"github.com/SlpAus/coffee-vote-backend/pkg/token"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("无法加载配置: %v", err))
	}
	gin.SetMode(cfg.Server.Mode)

	// 1. 执行应用启动初始化流程
	app, err := startup.InitializeApplication(context.Background(), cfg)
	if err != nil {
		panic(fmt.Sprintf("应用初始化失败，无法启动: %v", err))
	}

	adminToken := token.NewAdminToken(cfg.Admin.Token)

	// 2. 异步启动后台的持续健康检查器
	manager := lifecycle.NewManager()
	if app.Redis != nil {
		checker := health.NewChecker(app.Redis, app.Status)
		if err := manager.Go("redis-health", checker.Run); err != nil {
			panic(err)
		}
	}

	// 3. 路由
	router, err := api.NewRouter(cfg.Server, api.Handlers{
		Variant: variant.NewHandler(app.Registry, adminToken),
		Vote:    vote.NewHandler(app.Ledger, app.Cache),
		Web:     web.NewHandler(app.Ledger),
		Health:  app.Status,
	})
	if err != nil {
		panic(fmt.Sprintf("无法创建路由: %v", err))
	}

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}
	go func() {
		fmt.Printf("服务器已准备就绪，开始监听 %s\n", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic("Failed to start server: " + err.Error())
		}
	}()

	// 4. 阻塞直到收到停机信号
	coordinator := shutdown.NewCoordinator(manager, app)
	coordinator.ListenForSignalsAndShutdown(server)
}
