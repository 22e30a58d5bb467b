package v1

import (
	"forum_go/internal/pkg/response"
	"forum_go/internal/service"

	"github.com/gin-gonic/gin"
)

// SearchHandler Search API Handler
type SearchHandler struct {
	svc *service.SearchService
}

// NewSearchHandler 创建SearchHandler
func NewSearchHandler(svc *service.SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

// Search GET /api/v1/search
func (h *SearchHandler) Search(c *gin.Context) {
	query := c.Query("q")
	scope := c.DefaultQuery("scope", service.SearchScopeAll)
	category := c.Query("category")
	page, pageSize := pagination(c)

	result, err := h.svc.Search(c.Request.Context(), query, scope, category, page, pageSize)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, result)
}
