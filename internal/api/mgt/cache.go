package mgt

import (
	"forum_go/internal/pkg/response"
	"forum_go/internal/service"

	"github.com/gin-gonic/gin"
)

// CacheHandler Cache Management API Handler
type CacheHandler struct {
	thread   *service.ThreadService
	category *service.CategoryService
	stats    *service.StatsService
}

// NewCacheHandler 创建CacheHandler
func NewCacheHandler(thread *service.ThreadService, category *service.CategoryService, stats *service.StatsService) *CacheHandler {
	return &CacheHandler{thread: thread, category: category, stats: stats}
}

// Flush POST /api/mgt/cache/flush
func (h *CacheHandler) Flush(c *gin.Context) {
	_ = h.thread.FlushCache(c.Request.Context())
	_ = h.category.FlushCache(c.Request.Context())
	h.stats.Invalidate()

	response.Success(c, nil)
}
