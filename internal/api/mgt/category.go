package mgt

import (
	"strconv"

	"forum_go/internal/pkg/response"
	"forum_go/internal/service"

	"github.com/gin-gonic/gin"
)

// CategoryHandler Category Management API Handler
type CategoryHandler struct {
	svc *service.CategoryService
}

// NewCategoryHandler 创建CategoryHandler
func NewCategoryHandler(svc *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

// CreateCategoryRequest 创建版块请求
type CreateCategoryRequest struct {
	Slug  string `json:"slug" binding:"required"`
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
}

// Create POST /api/mgt/category
func (h *CategoryHandler) Create(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	actor, ok := actorFrom(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	dto, err := h.svc.Create(c.Request.Context(), actor, req.Slug, req.Name, req.Color)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, dto)
}

// UpdateCategoryRequest 更新版块请求
type UpdateCategoryRequest struct {
	Name     string `json:"name" binding:"required"`
	Color    string `json:"color"`
	Archived int    `json:"archived"`
}

// Update PUT /api/mgt/category/:cid
func (h *CategoryHandler) Update(c *gin.Context) {
	cid, err := strconv.ParseInt(c.Param("cid"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid cid")
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	actor, ok := actorFrom(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	if err := h.svc.Update(c.Request.Context(), actor, cid, req.Name, req.Color, req.Archived); err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, nil)
}
