package mgt

import (
	"forum_go/internal/model"
	"forum_go/internal/pkg/response"
	"forum_go/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler 认证 API Handler
type AuthHandler struct {
	svc *service.UserService
}

// NewAuthHandler 创建AuthHandler
func NewAuthHandler(svc *service.UserService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login POST /api/mgt/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, resp)
}

// Register POST /api/mgt/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.svc.Register(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, dto)
}

// actorFrom 从 JWT 中间件写入的上下文键组装 Actor
func actorFrom(c *gin.Context) (*service.Actor, bool) {
	uid, ok := c.Get("uid")
	if !ok {
		return nil, false
	}
	actor := &service.Actor{ID: uid.(int64)}
	if name, ok := c.Get("username"); ok {
		actor.Name, _ = name.(string)
	}
	if role, ok := c.Get("role"); ok {
		actor.Role, _ = role.(int)
	}
	return actor, true
}
