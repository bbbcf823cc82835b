package token

import (
	"crypto/hmac"
	"fmt"

	"github.com/google/uuid"
)

// AdminToken 是进程级的管理员共享密钥，用于创建新品种
type AdminToken struct {
	value string
}

// NewAdminToken 使用配置中的管理员令牌。
// 如果配置为空，则生成一个随机的UUID作为本次运行的令牌，并打印出来供管理员使用。
func NewAdminToken(configured string) *AdminToken {
	if configured != "" {
		return &AdminToken{value: configured}
	}
	generated := uuid.NewString()
	fmt.Printf("admin token: %s\n", generated)
	return &AdminToken{value: generated}
}

// Verify 使用时间恒定的比较来校验候选令牌，防止时序攻击
func (t *AdminToken) Verify(candidate string) bool {
	return hmac.Equal([]byte(candidate), []byte(t.value))
}
