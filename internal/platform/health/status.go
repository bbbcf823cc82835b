package health

import (
	"fmt"
	"sync"
)

// State 定义了Redis缓存的健康状态
type State int

const (
	StateHealthy State = iota
	StateDegraded
	StateDisabled
)

func (s State) String() string {
	switch s {
	case StateHealthy:
		return "healthy"
	case StateDegraded:
		return "degraded"
	default:
		return "disabled"
	}
}

// Status 负责线程安全地管理和提供Redis的健康状态。
// 缓存层只在状态为 Healthy 时读写Redis。
type Status struct {
	mu           sync.RWMutex
	currentState State
}

// NewStatus 创建状态管理器。未启用Redis时状态固定为 Disabled。
func NewStatus(redisEnabled bool) *Status {
	state := StateHealthy // 默认启动时是健康的
	if !redisEnabled {
		state = StateDisabled
	}
	return &Status{currentState: state}
}

// State 返回当前的健康状态
func (s *Status) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentState
}

// IsHealthy 返回Redis当前是否可用
func (s *Status) IsHealthy() bool {
	return s.State() == StateHealthy
}

// Assess 根据一次检查的结果更新状态，只有状态变化时才打印日志
func (s *Status) Assess(isConnected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.currentState {
	case StateHealthy:
		if !isConnected {
			s.currentState = StateDegraded
			fmt.Println("健康检查: Redis连接丢失，系统状态 -> [降级]，导出缓存已停用")
		}
	case StateDegraded:
		if isConnected {
			s.currentState = StateHealthy
			fmt.Println("健康检查: Redis连接已恢复，系统状态 -> [健康]")
		}
	case StateDisabled:
		// 未启用Redis时不接受任何状态变化
	}
}
