// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"know-law-go/internal/config"
	"know-law-go/internal/model"
	"know-law-go/pkg/log"
	"know-law-go/pkg/storage"
)

// 允许的扩展名与 MIME 类型。二者取并集：任一匹配即放行，
// 这是刻意宽松的校验（浏览器对 mimetype 的上报并不可靠）。
var (
	allowedExtensions = map[string]bool{
		".pdf":  true,
		".doc":  true,
		".docx": true,
		".txt":  true,
		".jpg":  true,
		".jpeg": true,
		".png":  true,
	}
	allowedMimetypes = map[string]bool{
		"application/pdf":    true,
		"application/msword": true,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
		"text/plain": true,
		"image/jpeg": true,
		"image/png":  true,
	}
)

// UploadService 接口定义了聊天附件的校验与临时存储操作。
// 文件内容只在单次请求的处理窗口内存在；消息记录里只保留元数据。
type UploadService interface {
	Validate(files []*multipart.FileHeader) error
	Store(ctx context.Context, files []*multipart.FileHeader) ([]model.FileInfo, []string, error)
	Discard(objectNames []string)
}

type uploadService struct {
	uploadCfg config.UploadConfig
	minioCfg  config.MinIOConfig
}

// NewUploadService 创建一个新的 UploadService 实例。
func NewUploadService(uploadCfg config.UploadConfig, minioCfg config.MinIOConfig) UploadService {
	return &uploadService{uploadCfg: uploadCfg, minioCfg: minioCfg}
}

// Validate 校验附件的数量、大小与类型。
// 恰好等于大小上限的文件是允许的；超出一个字节即拒绝。
func (s *uploadService) Validate(files []*multipart.FileHeader) error {
	maxSize := s.uploadCfg.MaxFileSizeMB * 1024 * 1024

	if len(files) > s.uploadCfg.MaxFiles {
		return NewUploadError("TooManyFiles", files[s.uploadCfg.MaxFiles].Filename)
	}

	for _, fh := range files {
		if fh.Size > maxSize {
			return NewUploadError("FileTooLarge", fh.Filename)
		}
		ext := strings.ToLower(filepath.Ext(fh.Filename))
		mimetype := fh.Header.Get("Content-Type")
		if !allowedExtensions[ext] && !allowedMimetypes[mimetype] {
			return NewUploadError("UnsupportedType", fh.Filename)
		}
	}
	return nil
}

// Store 将校验通过的附件写入临时对象存储，并返回其元数据与对象名。
// 元数据随消息持久化；对象在应答生成后由 Discard 删除。
func (s *uploadService) Store(ctx context.Context, files []*multipart.FileHeader) ([]model.FileInfo, []string, error) {
	infos := make([]model.FileInfo, 0, len(files))
	objectNames := make([]string, 0, len(files))

	for i, fh := range files {
		f, err := fh.Open()
		if err != nil {
			s.Discard(objectNames)
			return nil, nil, fmt.Errorf("failed to open uploaded file %s: %w", fh.Filename, err)
		}

		objectName := fmt.Sprintf("chat/%d-%d/%s", time.Now().UnixNano(), i, fh.Filename)
		contentType := fh.Header.Get("Content-Type")
		err = storage.PutTransient(ctx, s.minioCfg.BucketName, objectName, f, fh.Size, contentType)
		_ = f.Close()
		if err != nil {
			s.Discard(objectNames)
			return nil, nil, fmt.Errorf("failed to store uploaded file %s: %w", fh.Filename, err)
		}

		infos = append(infos, model.FileInfo{
			Name:     fh.Filename,
			Size:     fh.Size,
			Mimetype: contentType,
		})
		objectNames = append(objectNames, objectName)
	}
	return infos, objectNames, nil
}

// Discard 删除临时附件对象。失败只记录日志。
func (s *uploadService) Discard(objectNames []string) {
	if len(objectNames) == 0 {
		return
	}
	ctx := context.Background()
	for _, objectName := range objectNames {
		storage.RemoveTransient(ctx, s.minioCfg.BucketName, objectName)
	}
	log.Infof("[UploadService] 已清理 %d 个临时附件对象", len(objectNames))
}
