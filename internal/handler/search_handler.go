// Package handler 包含了所有 Gin 的 HTTP 请求处理函数。
package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"know-law-go/internal/middleware"
	"know-law-go/internal/service"
)

// SearchHandler 负责处理消息全文检索的 HTTP 请求。
type SearchHandler struct {
	searchService service.SearchService
}

// NewSearchHandler 创建一个新的 SearchHandler 实例。
func NewSearchHandler(searchService service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// Messages 在调用方归属范围内检索消息内容。
// 查询参数：q（必填）、size（可选，默认 10）。
func (h *SearchHandler) Messages(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c)

	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "查询关键词不能为空"})
		return
	}
	size := 10
	if raw := c.Query("size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			size = n
		}
	}

	hits, err := h.searchService.Search(c.Request.Context(), identity.Owner, query, size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "hits": hits})
}
