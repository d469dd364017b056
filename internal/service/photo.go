package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"staffdesk/internal/dto"
	apperrors "staffdesk/pkg/errors"
)

const (
	// MaxPhotoBytes 照片大小上限 2048 KB
	MaxPhotoBytes = 2 << 20
	// PhotoNamespace 照片在存储中的前缀
	PhotoNamespace = "employees/photos"
)

// 允许的图片格式（image.DecodeConfig 返回的格式名）→ 存储扩展名与 MIME
var allowedPhotoFormats = map[string]struct {
	ext         string
	contentType string
}{
	"jpeg": {ext: "jpg", contentType: "image/jpeg"},
	"png":  {ext: "png", contentType: "image/png"},
}

// preparedPhoto 通过校验、待写入存储的照片
type preparedPhoto struct {
	data        []byte
	ext         string
	contentType string
}

func photoError(msgs ...string) *apperrors.ValidationError {
	ve := apperrors.NewValidationError()
	for _, m := range msgs {
		ve.Add("photo", m)
	}
	return ve
}

func (p *preparedPhoto) newKey() string {
	return path.Join(PhotoNamespace, uuid.NewString()+"."+p.ext)
}

// preparePhoto 读取并校验上传的照片，失败时返回 photo 字段的错误
func preparePhoto(upload *dto.PhotoUpload) (*preparedPhoto, *apperrors.ValidationError) {
	const tooLarge = "The photo field must not be greater than 2048 kilobytes."

	if upload.Size > MaxPhotoBytes {
		return nil, photoError(tooLarge)
	}

	data, err := io.ReadAll(io.LimitReader(upload.Content, MaxPhotoBytes+1))
	if err != nil {
		return nil, photoError("The photo failed to upload.")
	}
	if len(data) > MaxPhotoBytes {
		return nil, photoError(tooLarge)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, photoError(
			"The photo field must be an image.",
			"The photo field must be a file of type: jpeg, png, jpg.",
		)
	}

	allowed, ok := allowedPhotoFormats[format]
	if !ok {
		return nil, photoError("The photo field must be a file of type: jpeg, png, jpg.")
	}

	return &preparedPhoto{data: data, ext: allowed.ext, contentType: allowed.contentType}, nil
}

// photoContentType 根据存储 key 的扩展名推断 MIME
func photoContentType(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}

func (p *preparedPhoto) String() string {
	return fmt.Sprintf("%s (%d bytes)", p.contentType, len(p.data))
}
