package service

import (
	"fmt"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"know-law-go/internal/config"
)

func newUploadServiceForTest() UploadService {
	return NewUploadService(
		config.UploadConfig{MaxFiles: 10, MaxFileSizeMB: 10},
		config.MinIOConfig{BucketName: "test-bucket"},
	)
}

func fileHeader(name string, size int64, contentType string) *multipart.FileHeader {
	h := textproto.MIMEHeader{}
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return &multipart.FileHeader{Filename: name, Size: size, Header: h}
}

func TestUploadValidateSizeBoundary(t *testing.T) {
	s := newUploadServiceForTest()
	const tenMB = 10 * 1024 * 1024

	// 恰好 10MB 放行
	err := s.Validate([]*multipart.FileHeader{fileHeader("exact.pdf", tenMB, "application/pdf")})
	assert.NoError(t, err)

	// 超出一个字节即拒绝
	err = s.Validate([]*multipart.FileHeader{fileHeader("big.pdf", tenMB+1, "application/pdf")})
	var uploadErr *UploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.Equal(t, "FileTooLarge", uploadErr.Reason)
	assert.Equal(t, "big.pdf", uploadErr.FileName)
}

func TestUploadValidateCount(t *testing.T) {
	s := newUploadServiceForTest()

	files := make([]*multipart.FileHeader, 0, 11)
	for i := 0; i < 11; i++ {
		files = append(files, fileHeader(fmt.Sprintf("doc%d.pdf", i), 100, "application/pdf"))
	}

	// 10 个以内放行
	assert.NoError(t, s.Validate(files[:10]))

	// 第 11 个触发拒绝，错误携带首个超额文件名
	err := s.Validate(files)
	var uploadErr *UploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.Equal(t, "TooManyFiles", uploadErr.Reason)
	assert.Equal(t, "doc10.pdf", uploadErr.FileName)
}

func TestUploadValidateTypeUnion(t *testing.T) {
	s := newUploadServiceForTest()

	// 扩展名合法、mimetype 陌生：放行（并集校验）
	assert.NoError(t, s.Validate([]*multipart.FileHeader{
		fileHeader("scan.pdf", 100, "application/octet-stream"),
	}))

	// 扩展名陌生、mimetype 合法：放行
	assert.NoError(t, s.Validate([]*multipart.FileHeader{
		fileHeader("export.dat", 100, "application/pdf"),
	}))

	// 两者都不合法：拒绝
	err := s.Validate([]*multipart.FileHeader{
		fileHeader("malware.exe", 100, "application/x-msdownload"),
	})
	var uploadErr *UploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.Equal(t, "UnsupportedType", uploadErr.Reason)
	assert.Equal(t, "malware.exe", uploadErr.FileName)
}

func TestUploadValidateExtensionCaseInsensitive(t *testing.T) {
	s := newUploadServiceForTest()
	assert.NoError(t, s.Validate([]*multipart.FileHeader{
		fileHeader("PHOTO.JPG", 100, ""),
	}))
}
