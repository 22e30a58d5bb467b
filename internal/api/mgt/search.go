package mgt

import (
	"forum_go/internal/pkg/response"
	"forum_go/internal/service"

	"github.com/gin-gonic/gin"
)

// SearchHandler Search Management API Handler
type SearchHandler struct {
	svc *service.SearchService
}

// NewSearchHandler 创建SearchHandler
func NewSearchHandler(svc *service.SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

// Rebuild POST /api/mgt/search/rebuild
//
// 索引疑似失步时的兜底；重建期间搜索结果可能短暂不完整。
func (h *SearchHandler) Rebuild(c *gin.Context) {
	count, err := h.svc.RebuildIndex(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, gin.H{"entries": count})
}
