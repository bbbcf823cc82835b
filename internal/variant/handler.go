package variant

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/SlpAus/coffee-vote-backend/internal/platform/form"
	"github.com/SlpAus/coffee-vote-backend/pkg/token"
	"github.com/gin-gonic/gin"
)

// Handler 提供管理员创建品种的JSON接口
type Handler struct {
	registry *Registry
	token    *token.AdminToken
}

func NewHandler(registry *Registry, adminToken *token.AdminToken) *Handler {
	return &Handler{registry: registry, token: adminToken}
}

// CreateVariant 处理 POST /api/variants
func (h *Handler) CreateVariant(c *gin.Context) {
	// 1. 校验管理员令牌
	candidate, ok := form.Value(c, "token")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "token required!"})
		return
	}
	if !h.token.Verify(candidate) {
		c.JSON(http.StatusForbidden, gin.H{"message": "unrecognized token!"})
		return
	}

	// 2. 读取品种名称
	name, ok := form.Value(c, "name")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": form.MissingMessage("name")})
		return
	}

	// 3. 注册品种
	err := h.registry.Create(c.Request.Context(), name)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "added variant!"})
	case errors.Is(err, ErrDuplicateVariant):
		c.JSON(http.StatusForbidden, gin.H{"message": "variant already exists!"})
	case errors.Is(err, ErrInvalidName):
		c.JSON(http.StatusBadRequest, gin.H{"message": "variant name must not be empty"})
	default:
		fmt.Printf("创建品种 %q 失败: %v\n", name, err)
		c.JSON(http.StatusBadRequest, gin.H{"message": "unexpected error"})
	}
}
