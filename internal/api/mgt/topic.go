package mgt

import (
	"strconv"

	"forum_go/internal/pkg/response"
	"forum_go/internal/service"

	"github.com/gin-gonic/gin"
)

// TopicHandler Topic Management API Handler
type TopicHandler struct {
	svc *service.ThreadService
}

// NewTopicHandler 创建TopicHandler
func NewTopicHandler(svc *service.ThreadService) *TopicHandler {
	return &TopicHandler{svc: svc}
}

// CreateTopicRequest 创建主题请求
type CreateTopicRequest struct {
	CategoryID int64  `json:"category_id" binding:"required"`
	Title      string `json:"title" binding:"required"`
	Content    string `json:"content" binding:"required"`
}

// Create POST /api/mgt/topic
func (h *TopicHandler) Create(c *gin.Context) {
	var req CreateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	actor, ok := actorFrom(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	dto, err := h.svc.CreateTopic(c.Request.Context(), actor, req.CategoryID, req.Title, req.Content)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, dto)
}

// UpdateTopicRequest 更新主题请求
type UpdateTopicRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// Update PUT /api/mgt/topic/:tid
func (h *TopicHandler) Update(c *gin.Context) {
	tid, err := strconv.ParseInt(c.Param("tid"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid tid")
		return
	}

	var req UpdateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	actor, ok := actorFrom(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	if err := h.svc.UpdateTopic(c.Request.Context(), actor, tid, req.Title, req.Content); err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, nil)
}

// Delete DELETE /api/mgt/topic/:tid
func (h *TopicHandler) Delete(c *gin.Context) {
	tid, err := strconv.ParseInt(c.Param("tid"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid tid")
		return
	}

	actor, ok := actorFrom(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	if err := h.svc.DeleteTopic(c.Request.Context(), actor, tid); err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, nil)
}
