package lifecycle

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Manager 管理所有后台服务的生命周期。
// 它向每个服务分发 Handle，并在停机时等待它们全部退出。
type Manager struct {
	wg       sync.WaitGroup
	mu       sync.Mutex
	services map[string]struct{}

	ctx    context.Context
	cancel context.CancelFunc
}

func NewManager() *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		services: make(map[string]struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// NewServiceHandle 为一个服务注册并创建句柄，同名服务只能注册一次
func (m *Manager) NewServiceHandle(name string) (*Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.services[name]; exists {
		return nil, fmt.Errorf("生命周期管理器: 服务 '%s' 已被注册", name)
	}
	m.services[name] = struct{}{}
	m.wg.Add(1)
	fmt.Printf("生命周期管理器: 服务 [%s] 已注册。\n", name)

	return &Handle{
		name: name,
		ctx:  m.ctx,
		onClose: func() {
			m.mu.Lock()
			delete(m.services, name)
			m.mu.Unlock()
			m.wg.Done()
		},
	}, nil
}

// Go 注册服务并在新的goroutine中运行它。run 负责在退出前关闭句柄。
func (m *Manager) Go(name string, run func(*Handle)) error {
	handle, err := m.NewServiceHandle(name)
	if err != nil {
		return err
	}
	go run(handle)
	return nil
}

// Shutdown 向所有服务广播停机信号
func (m *Manager) Shutdown() {
	fmt.Println("生命周期管理器: 广播停机信号...")
	m.cancel()
}

// WaitWithTimeout 等待所有服务退出，超时后返回仍未退出的服务名
func (m *Manager) WaitWithTimeout(timeout time.Duration) []string {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		m.mu.Lock()
		defer m.mu.Unlock()
		remaining := make([]string, 0, len(m.services))
		for name := range m.services {
			remaining = append(remaining, name)
		}
		sort.Strings(remaining)
		return remaining
	}
}
