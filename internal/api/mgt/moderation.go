package mgt

import (
	"strconv"

	"forum_go/internal/pkg/response"
	"forum_go/internal/service"

	"github.com/gin-gonic/gin"
)

// ModerationHandler 版务 Management API Handler
type ModerationHandler struct {
	svc *service.ModerationService
}

// NewModerationHandler 创建ModerationHandler
func NewModerationHandler(svc *service.ModerationService) *ModerationHandler {
	return &ModerationHandler{svc: svc}
}

// ReasonRequest 带原因的版务请求
type ReasonRequest struct {
	Reason string `json:"reason"`
}

// Pin POST /api/mgt/topic/:tid/pin
func (h *ModerationHandler) Pin(c *gin.Context) {
	h.topicAction(c, func(actor *service.Actor, tid int64, _ string) error {
		return h.svc.Pin(c.Request.Context(), actor, tid)
	})
}

// Unpin POST /api/mgt/topic/:tid/unpin
func (h *ModerationHandler) Unpin(c *gin.Context) {
	h.topicAction(c, func(actor *service.Actor, tid int64, _ string) error {
		return h.svc.Unpin(c.Request.Context(), actor, tid)
	})
}

// Lock POST /api/mgt/topic/:tid/lock
func (h *ModerationHandler) Lock(c *gin.Context) {
	h.topicAction(c, func(actor *service.Actor, tid int64, reason string) error {
		return h.svc.Lock(c.Request.Context(), actor, tid, reason)
	})
}

// Unlock POST /api/mgt/topic/:tid/unlock
func (h *ModerationHandler) Unlock(c *gin.Context) {
	h.topicAction(c, func(actor *service.Actor, tid int64, _ string) error {
		return h.svc.Unlock(c.Request.Context(), actor, tid)
	})
}

// MarkSolved POST /api/mgt/topic/:tid/solved
func (h *ModerationHandler) MarkSolved(c *gin.Context) {
	h.topicAction(c, func(actor *service.Actor, tid int64, _ string) error {
		return h.svc.MarkSolved(c.Request.Context(), actor, tid)
	})
}

// MarkSolution POST /api/mgt/topic/:tid/solution/:rid
func (h *ModerationHandler) MarkSolution(c *gin.Context) {
	tid, err := strconv.ParseInt(c.Param("tid"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid tid")
		return
	}
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

	if err := h.svc.MarkSolution(c.Request.Context(), actor, tid, rid); err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, nil)
}

// DeleteTopic DELETE /api/mgt/moderation/topic/:tid
func (h *ModerationHandler) DeleteTopic(c *gin.Context) {
	h.topicAction(c, func(actor *service.Actor, tid int64, reason string) error {
		return h.svc.DeleteTopic(c.Request.Context(), actor, tid, reason)
	})
}

// DeleteReply DELETE /api/mgt/moderation/reply/:rid
func (h *ModerationHandler) DeleteReply(c *gin.Context) {
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

	var req ReasonRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.svc.DeleteReply(c.Request.Context(), actor, rid, req.Reason); err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, nil)
}

// History GET /api/mgt/moderation/history/:type/:id
func (h *ModerationHandler) History(c *gin.Context) {
	entityType := c.Param("type")
	entityID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid id")
		return
	}

	limit := 50
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	list, err := h.svc.History(c.Request.Context(), entityType, entityID, limit)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, gin.H{"list": list})
}

// Recent GET /api/mgt/moderation/history
//
// 全站维度的版务流水，给后台审计页用。
func (h *ModerationHandler) Recent(c *gin.Context) {
	page := 1
	if v := c.Query("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			page = parsed
		}
	}
	limit := 50
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	list, err := h.svc.RecentHistory(c.Request.Context(), page, limit)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, gin.H{"list": list, "page": page})
}

func (h *ModerationHandler) topicAction(c *gin.Context, fn func(actor *service.Actor, tid int64, reason string) error) {
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

	var req ReasonRequest
	_ = c.ShouldBindJSON(&req)

	if err := fn(actor, tid, req.Reason); err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, nil)
}
