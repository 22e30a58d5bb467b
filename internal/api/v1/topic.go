package v1

import (
	"strconv"

	"forum_go/internal/pkg/response"
	"forum_go/internal/service"

	"github.com/gin-gonic/gin"
)

// TopicHandler Topic API Handler
type TopicHandler struct {
	svc *service.ThreadService
}

// NewTopicHandler 创建TopicHandler
func NewTopicHandler(svc *service.ThreadService) *TopicHandler {
	return &TopicHandler{svc: svc}
}

// List GET /api/v1/topics
func (h *TopicHandler) List(c *gin.Context) {
	categoryStr := c.Query("category_id")
	if categoryStr == "" {
		response.BadRequest(c, "category_id is required")
		return
	}

	categoryID, err := strconv.ParseInt(categoryStr, 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid category_id")
		return
	}

	page, pageSize := pagination(c)

	list, total, err := h.svc.ListTopics(c.Request.Context(), categoryID, page, pageSize)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, gin.H{
		"list":      list,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// Recent GET /api/v1/topics/recent
func (h *TopicHandler) Recent(c *gin.Context) {
	page, pageSize := pagination(c)

	list, err := h.svc.ListRecent(c.Request.Context(), page, pageSize)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, gin.H{
		"list":      list,
		"page":      page,
		"page_size": pageSize,
	})
}

// Get GET /api/v1/topic/:tid
//
// 每次读取记一次浏览量。
func (h *TopicHandler) Get(c *gin.Context) {
	tid, err := strconv.ParseInt(c.Param("tid"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid tid")
		return
	}

	dto, err := h.svc.ViewTopic(c.Request.Context(), tid)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, dto)
}

// Replies GET /api/v1/topic/:tid/replies
func (h *TopicHandler) Replies(c *gin.Context) {
	tid, err := strconv.ParseInt(c.Param("tid"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid tid")
		return
	}

	page, pageSize := pagination(c)

	list, total, err := h.svc.GetReplies(c.Request.Context(), tid, page, pageSize)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, gin.H{
		"list":      list,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// Subtree GET /api/v1/reply/:rid/subtree
func (h *TopicHandler) Subtree(c *gin.Context) {
	rid, err := strconv.ParseInt(c.Param("rid"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid rid")
		return
	}

	list, err := h.svc.GetSubtree(c.Request.Context(), rid)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, gin.H{"list": list})
}

// pagination 解析分页参数
func pagination(c *gin.Context) (int, int) {
	page := 1
	pageSize := 20

	if p := c.Query("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if ps := c.Query("page_size"); ps != "" {
		if parsed, err := strconv.Atoi(ps); err == nil && parsed > 0 && parsed <= 100 {
			pageSize = parsed
		}
	}
	return page, pageSize
}
