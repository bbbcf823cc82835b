package api

import (
	"time"

	"github.com/SlpAus/coffee-vote-backend/internal/platform/config"
	"github.com/SlpAus/coffee-vote-backend/internal/platform/health"
	"github.com/SlpAus/coffee-vote-backend/internal/variant"
	"github.com/SlpAus/coffee-vote-backend/internal/vote"
	"github.com/SlpAus/coffee-vote-backend/internal/web"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers 汇总了各模块的HTTP处理器
type Handlers struct {
	Variant *variant.Handler
	Vote    *vote.Handler
	Web     *web.Handler
	Health  *health.Status
}

// NewRouter 创建gin引擎，挂载中间件、页面模板和全部路由
func NewRouter(cfg config.ServerConfig, h Handlers) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	if len(cfg.Cors.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.Cors.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	sessionMiddleware, err := web.Sessions(cfg.SecretKey)
	if err != nil {
		return nil, err
	}
	r.Use(sessionMiddleware)

	tmpl, err := web.LoadTemplates()
	if err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(tmpl)

	SetupRoutes(r, cfg, h)
	return r, nil
}

// SetupRoutes 注册项目的所有路由
func SetupRoutes(router *gin.Engine, cfg config.ServerConfig, h Handlers) {
	// 页面
	router.GET("/", h.Web.Overview)
	router.GET("/vote/:variant", h.Web.VoteForm)
	router.POST("/vote/:variant", h.Web.SubmitVoteForm)

	router.GET("/health", h.Health.Report)

	api := router.Group("/api")
	{
		api.GET("/export", h.Vote.Export)
		api.POST("/vote", h.Vote.SubmitVote)

		// 精简部署可以关闭品种管理接口
		if cfg.AdminAPI {
			api.POST("/variants", h.Variant.CreateVariant)
		}
	}
}
