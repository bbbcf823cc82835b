package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Report 处理 GET /health
func (s *Status) Report(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"redis":  s.State().String(),
	})
}
