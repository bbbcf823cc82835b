package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/SlpAus/coffee-vote-backend/internal/platform/form"
	"github.com/SlpAus/coffee-vote-backend/internal/vote"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// SessionCookie 是保存flash消息的会话cookie名
const SessionCookie = "coffee_session"

// flash 的两种类别
const (
	flashMessage = "message"
	flashError   = "error"
)

// ErrMissingSecret 表示没有配置用于签名会话cookie的密钥
var ErrMissingSecret = errors.New("the application config has no secret key value")

// Flash 是跨一次重定向显示的提示消息
type Flash struct {
	Kind string
	Text string
}

// Sessions 返回基于签名cookie的会话中间件，密钥来自 server.secretKey
func Sessions(secretKey string) (gin.HandlerFunc, error) {
	if secretKey == "" {
		return nil, ErrMissingSecret
	}
	store := cookie.NewStore([]byte(secretKey))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sessions.Sessions(SessionCookie, store), nil
}

// LoadTemplates 解析内嵌的页面模板
func LoadTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		"summarize": vote.Summarize,
		"voteLabel": func(c vote.Choice) string { return c.Label() },
	}
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("解析页面模板失败: %w", err)
	}
	return tmpl, nil
}

// Handler 提供面向浏览器的HTML页面，依赖 Sessions 中间件
type Handler struct {
	ledger *vote.Ledger
}

func NewHandler(ledger *vote.Ledger) *Handler {
	return &Handler{ledger: ledger}
}

// Overview 处理 GET /，展示所有品种的投票和统计
func (h *Handler) Overview(c *gin.Context) {
	variants, err := h.ledger.Aggregate(c.Request.Context())
	if err != nil {
		fmt.Printf("读取投票概览失败: %v\n", err)
		c.String(http.StatusInternalServerError, "unexpected error")
		return
	}

	c.HTML(http.StatusOK, "overview.tmpl", gin.H{
		"Variants": variants,
		"Flashes":  popFlashes(c),
	})
}

// VoteForm 处理 GET /vote/:variant
func (h *Handler) VoteForm(c *gin.Context) {
	h.renderForm(c, http.StatusOK, "", "")
}

// SubmitVoteForm 处理 POST /vote/:variant。
// 成功时写入flash并重定向到概览页；失败时带着错误重新渲染表单。
func (h *Handler) SubmitVoteForm(c *gin.Context) {
	variantName := c.Param("variant")
	name, _ := form.Value(c, "name")

	sub, problem := vote.ParseSubmission(c, variantName)
	if problem != "" {
		h.renderForm(c, http.StatusBadRequest, name, problem)
		return
	}

	err := h.ledger.Submit(c.Request.Context(), sub.Variant, sub.Name, sub.Choice)
	if err != nil {
		if !vote.IsMalformed(err) &&
			!errors.Is(err, vote.ErrDuplicateVote) &&
			!errors.Is(err, vote.ErrVariantNotFound) {
			fmt.Printf("处理投票表单失败 (品种: %s): %v\n", sub.Variant, err)
		}
		h.renderForm(c, http.StatusBadRequest, name, vote.Message(err))
		return
	}

	addFlash(c, flashMessage, vote.Message(nil))
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) renderForm(c *gin.Context, status int, name, problem string) {
	c.HTML(status, "vote_form.tmpl", gin.H{
		"Variant": c.Param("variant"),
		"Name":    name,
		"Error":   problem,
	})
}

func addFlash(c *gin.Context, kind, text string) {
	session := sessions.Default(c)
	session.AddFlash(text, kind)
	if err := session.Save(); err != nil {
		fmt.Printf("保存flash消息失败: %v\n", err)
	}
}

// popFlashes 读取并清除所有类别的flash，必须在写响应体之前调用
func popFlashes(c *gin.Context) []Flash {
	session := sessions.Default(c)
	var flashes []Flash
	for _, kind := range []string{flashMessage, flashError} {
		for _, raw := range session.Flashes(kind) {
			if text, ok := raw.(string); ok {
				flashes = append(flashes, Flash{Kind: kind, Text: text})
			}
		}
	}
	if len(flashes) > 0 {
		if err := session.Save(); err != nil {
			fmt.Printf("清除flash消息失败: %v\n", err)
		}
	}
	return flashes
}
