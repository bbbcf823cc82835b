package vote

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/SlpAus/coffee-vote-backend/internal/platform/form"
	"github.com/gin-gonic/gin"
)

// Exporter 提供导出数据，可以是账本本身，也可以是带缓存的包装
type Exporter interface {
	Export(ctx context.Context) (map[string]map[string]string, error)
}

// Handler 提供投票相关的JSON接口
type Handler struct {
	ledger   *Ledger
	exporter Exporter
}

func NewHandler(ledger *Ledger, exporter Exporter) *Handler {
	if exporter == nil {
		exporter = ledger
	}
	return &Handler{ledger: ledger, exporter: exporter}
}

// Submission 是从请求中解析出的一次投票
type Submission struct {
	Variant string
	Name    string
	Choice  Choice
}

// ParseSubmission 从请求中读取投票字段。variantName 为空时从表单的 variant 字段读取。
// 解析失败时返回给用户的提示，成功时提示为空。
func ParseSubmission(c *gin.Context, variantName string) (Submission, string) {
	if variantName == "" {
		value, ok := form.Value(c, "variant")
		if !ok {
			return Submission{}, form.MissingMessage("variant")
		}
		variantName = value
	}

	rawVote, ok := form.Value(c, "vote")
	if !ok {
		return Submission{}, form.MissingMessage("vote")
	}
	name, ok := form.Value(c, "name")
	if !ok {
		return Submission{}, form.MissingMessage("name")
	}

	choice, err := ParseChoice(rawVote)
	if err != nil {
		return Submission{}, Message(err)
	}
	return Submission{Variant: variantName, Name: name, Choice: choice}, ""
}

// SubmitVote 处理 POST /api/vote
func (h *Handler) SubmitVote(c *gin.Context) {
	sub, problem := ParseSubmission(c, "")
	if problem != "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": problem})
		return
	}

	err := h.ledger.Submit(c.Request.Context(), sub.Variant, sub.Name, sub.Choice)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": Message(nil)})
	case IsMalformed(err):
		c.JSON(http.StatusBadRequest, gin.H{"message": Message(err)})
	case errors.Is(err, ErrDuplicateVote), errors.Is(err, ErrVariantNotFound):
		c.JSON(http.StatusForbidden, gin.H{"message": Message(err)})
	default:
		fmt.Printf("处理投票失败 (品种: %s): %v\n", sub.Variant, err)
		c.JSON(http.StatusForbidden, gin.H{"message": Message(err)})
	}
}

// Export 处理 GET /api/export
func (h *Handler) Export(c *gin.Context) {
	export, err := h.exporter.Export(c.Request.Context())
	if err != nil {
		fmt.Printf("导出投票数据失败: %v\n", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "unexpected error"})
		return
	}
	c.JSON(http.StatusOK, export)
}
