package shutdown

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SlpAus/coffee-vote-backend/pkg/lifecycle"
)

const (
	httpTimeout    = 15 * time.Second
	serviceTimeout = 10 * time.Second
)

// Closer 是停机最后阶段需要释放的资源
type Closer interface {
	Close() error
}

// Coordinator 负责编排应用程序的优雅停机流程。
type Coordinator struct {
	Manager   *lifecycle.Manager
	Resources Closer
}

// NewCoordinator 创建一个新的停机协调器。
func NewCoordinator(manager *lifecycle.Manager, resources Closer) *Coordinator {
	return &Coordinator{
		Manager:   manager,
		Resources: resources,
	}
}

// ListenForSignalsAndShutdown 启动信号监听并阻塞，直到停机流程完成。
func (c *Coordinator) ListenForSignalsAndShutdown(server *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// 阻塞直到接收到停机信号
	<-sigChan
	fmt.Println("\n收到关闭信号，开始优雅停机...")
	c.Shutdown(server)
}

// Shutdown 依次关闭HTTP服务器、后台服务和底层连接
func (c *Coordinator) Shutdown(server *http.Server) {
	// 关闭HTTP服务器，允许正在进行的请求完成
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), httpTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		fmt.Printf("Gin服务器关闭错误: %v\n", err)
	} else {
		fmt.Println("Gin服务器已关闭。")
	}

	// 广播停机信号并等待后台服务退出
	c.Manager.Shutdown()
	remaining := c.Manager.WaitWithTimeout(serviceTimeout)
	if len(remaining) == 0 {
		fmt.Println("所有后台服务已关闭。")
	} else {
		fmt.Printf("等待超时，以下服务未能按时退出: %v\n", remaining)
	}

	// --- 最终步骤 ---
	if c.Resources != nil {
		if err := c.Resources.Close(); err != nil {
			fmt.Printf("释放资源失败: %v\n", err)
		} else {
			fmt.Println("数据库和Redis连接已关闭。")
		}
	}

	fmt.Println("优雅停机完成。")
}
