// Package service 包含了应用的业务逻辑层。
package service

import (
	"errors"
	"fmt"
)

// 业务错误哨兵值。handler 层据此映射 HTTP 状态码，
// 统一以 {"success":false,"message":...} 的形式返回给客户端。
var (
	// ErrValidation 表示请求字段缺失或格式错误。
	ErrValidation = errors.New("请求参数无效")
	// ErrEmailTaken 表示邮箱已被注册。
	ErrEmailTaken = errors.New("该邮箱已被注册")
	// ErrInvalidCredentials 表示邮箱或密码错误。
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	// ErrNotFound 表示资源不存在，或不属于调用方。
	// 跨归属者访问刻意返回 NotFound 而非 Forbidden，避免泄露资源存在性。
	ErrNotFound = errors.New("资源不存在")
	// ErrEmptyTitle 表示会话标题去除空白后为空。
	ErrEmptyTitle = errors.New("标题不能为空")
	// ErrEmptyContent 表示消息内容去除空白后为空。
	ErrEmptyContent = errors.New("消息内容不能为空")
	// ErrNotEditable 表示目标消息不是 user 角色，不允许编辑。
	ErrNotEditable = errors.New("该消息不可编辑")
	// ErrPastDate 表示预约日期早于今天。
	ErrPastDate = errors.New("预约日期不能早于今天")
	// ErrUnknownLawyer 表示律师 ID 不在目录中。
	ErrUnknownLawyer = errors.New("无效的律师 ID")
)

// UploadError 是附件校验失败的错误，携带违规文件名。
type UploadError struct {
	Reason   string // FileTooLarge / TooManyFiles / UnsupportedType
	FileName string
}

func (e *UploadError) Error() string {
	switch e.Reason {
	case "FileTooLarge":
		return fmt.Sprintf("文件 '%s' 超过大小限制", e.FileName)
	case "TooManyFiles":
		return fmt.Sprintf("文件数量超过限制（起自 '%s'）", e.FileName)
	case "UnsupportedType":
		return fmt.Sprintf("文件 '%s' 类型不受支持", e.FileName)
	}
	return fmt.Sprintf("文件 '%s' 校验失败", e.FileName)
}

// NewUploadError 构造一个附件校验错误。
func NewUploadError(reason, fileName string) *UploadError {
	return &UploadError{Reason: reason, FileName: fileName}
}
