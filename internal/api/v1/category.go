package v1

import (
	"strconv"

	"forum_go/internal/pkg/response"
	"forum_go/internal/service"

	"github.com/gin-gonic/gin"
)

// CategoryHandler Category API Handler
type CategoryHandler struct {
	svc *service.CategoryService
}

// NewCategoryHandler 创建CategoryHandler
func NewCategoryHandler(svc *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

// List GET /api/v1/categories
func (h *CategoryHandler) List(c *gin.Context) {
	list, err := h.svc.GetAll(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"list": list})
}

// Get GET /api/v1/category/:cid
func (h *CategoryHandler) Get(c *gin.Context) {
	cid, err := strconv.ParseInt(c.Param("cid"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid cid")
		return
	}

	dto, err := h.svc.Get(c.Request.Context(), cid)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, dto)
}

// GetBySlug GET /api/v1/category/slug/:slug
func (h *CategoryHandler) GetBySlug(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		response.BadRequest(c, "slug is required")
		return
	}

	dto, err := h.svc.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, dto)
}
