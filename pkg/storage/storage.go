// Package storage 员工照片等二进制文件的存储后端。
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"staffdesk/config"
)

// ErrObjectNotFound 指定 key 的文件不存在
var ErrObjectNotFound = errors.New("object not found")

// Storage 文件存储接口
//
// Put 返回 nil 时文件必须已持久化；Delete 对不存在的 key 视为成功。
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// New 根据配置创建存储后端
func New(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (Storage, error) {
	switch cfg.Driver {
	case "local":
		s, err := NewLocal(cfg.Local.Root)
		if err != nil {
			return nil, err
		}
		logger.Info("使用本地磁盘存储", zap.String("root", cfg.Local.Root))
		return s, nil
	case "s3":
		s, err := NewS3(ctx, &cfg.S3)
		if err != nil {
			return nil, err
		}
		logger.Info("使用 S3 存储", zap.String("bucket", cfg.S3.Bucket))
		return s, nil
	default:
		return nil, fmt.Errorf("不支持的存储驱动 %q", cfg.Driver)
	}
}
