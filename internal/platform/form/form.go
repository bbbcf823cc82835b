package form

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// Value 读取请求中的一个字段，优先取表单值，其次取查询参数。
// 第二个返回值表示该字段是否出现在请求中。
func Value(c *gin.Context, key string) (string, bool) {
	if value, ok := c.GetPostForm(key); ok {
		return value, true
	}
	return c.GetQuery(key)
}

// MissingMessage 返回缺少必填字段时给前端的提示
func MissingMessage(key string) string {
	return fmt.Sprintf("missing the required value for '%s'", key)
}
