package v1

import (
	"strconv"

	"forum_go/internal/pkg/response"
	"forum_go/internal/service"

	"github.com/gin-gonic/gin"
)

// StatsHandler Stats API Handler
type StatsHandler struct {
	svc *service.StatsService
}

// NewStatsHandler 创建StatsHandler
func NewStatsHandler(svc *service.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// Overview GET /api/v1/stats
func (h *StatsHandler) Overview(c *gin.Context) {
	stats, err := h.svc.Overview(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, stats)
}

// Category GET /api/v1/stats/category/:cid
func (h *StatsHandler) Category(c *gin.Context) {
	cid, err := strconv.ParseInt(c.Param("cid"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid cid")
		return
	}

	stats, err := h.svc.Category(c.Request.Context(), cid)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, stats)
}

// Trending GET /api/v1/stats/trending
func (h *StatsHandler) Trending(c *gin.Context) {
	windowDays := intQuery(c, "window_days", service.TrendingWindowDays)
	limit := intQuery(c, "limit", service.TrendingLimit)

	list, err := h.svc.Trending(c.Request.Context(), windowDays, limit)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"list": list})
}

// Popular GET /api/v1/stats/popular
func (h *StatsHandler) Popular(c *gin.Context) {
	limit := intQuery(c, "limit", service.TrendingLimit)

	list, err := h.svc.Popular(c.Request.Context(), limit)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"list": list})
}

func intQuery(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}
