package mgt

import (
	"strconv"

	"forum_go/internal/pkg/response"
	"forum_go/internal/service"

	"github.com/gin-gonic/gin"
)

// ReplyHandler Reply Management API Handler
type ReplyHandler struct {
	svc *service.ThreadService
}

// NewReplyHandler 创建ReplyHandler
func NewReplyHandler(svc *service.ThreadService) *ReplyHandler {
	return &ReplyHandler{svc: svc}
}

// CreateReplyRequest 创建回复请求
//
// parent_id 缺省为顶层回复。
type CreateReplyRequest struct {
	TopicID  int64  `json:"topic_id" binding:"required"`
	ParentID *int64 `json:"parent_id"`
	Content  string `json:"content" binding:"required"`
}

// Create POST /api/mgt/reply
func (h *ReplyHandler) Create(c *gin.Context) {
	var req CreateReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	actor, ok := actorFrom(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	dto, err := h.svc.CreateReply(c.Request.Context(), actor, req.TopicID, req.ParentID, req.Content)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, dto)
}

// UpdateReplyRequest 更新回复请求
type UpdateReplyRequest struct {
	Content string `json:"content" binding:"required"`
}

// Update PUT /api/mgt/reply/:rid
func (h *ReplyHandler) Update(c *gin.Context) {
	rid, err := strconv.ParseInt(c.Param("rid"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid rid")
		return
	}

	var req UpdateReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	actor, ok := actorFrom(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	if err := h.svc.UpdateReply(c.Request.Context(), actor, rid, req.Content); err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, nil)
}

// Delete DELETE /api/mgt/reply/:rid
func (h *ReplyHandler) Delete(c *gin.Context) {
	rid, err := strconv.ParseInt(c.Param("rid"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid rid")
		return
	}

	actor, ok := actorFrom(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	if err := h.svc.DeleteReply(c.Request.Context(), actor, rid); err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, nil)
}
