// Package handler 包含了所有 Gin 的 HTTP 请求处理函数。
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"know-law-go/internal/service"
	"know-law-go/pkg/log"
)

// respondError 把业务错误映射为 HTTP 状态码与统一的 JSON 错误结构。
// 客户端只会看到业务消息，内部错误细节不外泄。
func respondError(c *gin.Context, err error) {
	var uploadErr *service.UploadError
	if errors.As(err, &uploadErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":  false,
			"message":  uploadErr.Error(),
			"reason":   uploadErr.Reason,
			"fileName": uploadErr.FileName,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrEmptyTitle),
		errors.Is(err, service.ErrEmptyContent),
		errors.Is(err, service.ErrPastDate),
		errors.Is(err, service.ErrUnknownLawyer):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": err.Error()})
	// 不可编辑与不存在一样返回 404，不确认资源存在性
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrNotEditable):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": err.Error()})
	default:
		log.Errorf("[Handler] 内部错误: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "服务器内部错误"})
	}
}
