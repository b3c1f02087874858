package storage

import (
	"context"
	"io"
)

// Storage 是上传文件（视频、封面、频道头像）的存放位置
type Storage interface {
	// Put 写入对象并返回可访问的URL
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}
