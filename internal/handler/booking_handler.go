// Package handler 包含了所有 Gin 的 HTTP 请求处理函数。
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"know-law-go/internal/middleware"
	"know-law-go/internal/service"
)

// BookingHandler 负责处理律师预约相关的 HTTP 请求。
type BookingHandler struct {
	bookingService service.BookingService
}

// NewBookingHandler 创建一个新的 BookingHandler 实例。
func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// Create 创建一条预约。预约创建即返回，确认在后台异步完成。
func (h *BookingHandler) Create(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c)

	var req service.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "无效的请求体"})
		return
	}

	booking, err := h.bookingService.Create(c.Request.Context(), identity.Owner, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "booking": booking})
}

// List 返回调用方的全部预约，按预约日期、时间降序排列。
func (h *BookingHandler) List(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c)
	bookings, err := h.bookingService.List(c.Request.Context(), identity.Owner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "bookings": bookings})
}

// Lawyers 返回可预约的律师名录。
func (h *BookingHandler) Lawyers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "lawyers": service.ListLawyers()})
}
